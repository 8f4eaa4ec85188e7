// Package alert holds outbound SMS providers. Each provider is an
// independent delivery path; the dispatcher tries them in order until
// one reports success.
package alert

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/ports"
)

const sendTimeout = 6 * time.Second

// TwilioConfig carries the credentials for the Twilio REST API.
type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	From       string `yaml:"from"`
	// BaseURL overrides the API host, used by tests.
	BaseURL string `yaml:"base_url"`
}

// Twilio sends SMS through the Twilio Messages endpoint.
type Twilio struct {
	cfg    TwilioConfig
	client *http.Client
}

func NewTwilio(cfg TwilioConfig) *Twilio {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.twilio.com"
	}
	return &Twilio{
		cfg:    cfg,
		client: &http.Client{Timeout: sendTimeout},
	}
}

func (t *Twilio) Name() string { return "twilio" }

func (t *Twilio) Configured() bool {
	return t.cfg.AccountSID != "" && t.cfg.AuthToken != "" && t.cfg.From != ""
}

// Send posts the message to every number. It reports success if at least
// one delivery was accepted by the API.
func (t *Twilio) Send(ctx context.Context, message string, numbers []string) (bool, error) {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json",
		strings.TrimRight(t.cfg.BaseURL, "/"), t.cfg.AccountSID)

	var (
		sent    bool
		lastErr error
	)
	for _, number := range numbers {
		form := url.Values{}
		form.Set("To", number)
		form.Set("From", t.cfg.From)
		form.Set("Body", message)

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
			strings.NewReader(form.Encode()))
		if err != nil {
			lastErr = err
			continue
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.SetBasicAuth(t.cfg.AccountSID, t.cfg.AuthToken)

		resp, err := t.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			sent = true
		} else {
			lastErr = fmt.Errorf("twilio: status %d for %s", resp.StatusCode, number)
		}
	}
	if sent {
		return true, nil
	}
	return false, lastErr
}

var _ ports.SMSProvider = (*Twilio)(nil)
