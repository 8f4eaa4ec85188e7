package alert

import (
	"context"

	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/domain"
	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/ports"
)

// Dispatcher routes alert directives through an ordered provider chain:
// primary first, fallback next. Overall success is the OR of the attempts.
// Delivery is best effort; failures are logged and swallowed so alerting can
// never block or fail ingestion.
type Dispatcher struct {
	numbers   []string
	providers []ports.SMSProvider
	obs       ports.Observability
}

func NewDispatcher(numbers []string, obs ports.Observability, providers ...ports.SMSProvider) *Dispatcher {
	return &Dispatcher{
		numbers:   numbers,
		providers: providers,
		obs:       obs,
	}
}

// Dispatch sends every directive's message.
func (d *Dispatcher) Dispatch(ctx context.Context, directives []domain.AlertDirective) {
	for _, dir := range directives {
		if d.Send(ctx, dir.Message) {
			d.obs.IncCounter("stormeye_alerts_sent_total", 1)
		}
	}
}

// Send delivers one message through the provider chain, stopping at the
// first provider that reports success.
func (d *Dispatcher) Send(ctx context.Context, message string) bool {
	if len(d.numbers) == 0 {
		return false
	}
	for _, p := range d.providers {
		if !p.Configured() {
			continue
		}
		ok, err := p.Send(ctx, message, d.numbers)
		if err != nil {
			d.obs.LogError("sms_send_failed", err, ports.Field{Key: "provider", Value: p.Name()})
		}
		if ok {
			return true
		}
	}
	return false
}
