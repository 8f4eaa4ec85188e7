package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Shreya280506-byte/SIH-STORMEYE/internal/ports"
)

// TextbeltConfig configures the Textbelt fallback provider. The public
// "textbelt" key allows one free message per day, enough for a smoke test.
type TextbeltConfig struct {
	Key     string `yaml:"key"`
	BaseURL string `yaml:"base_url"`
}

// Textbelt is the fallback SMS path when Twilio is unavailable.
type Textbelt struct {
	cfg    TextbeltConfig
	client *http.Client
}

func NewTextbelt(cfg TextbeltConfig) *Textbelt {
	if cfg.Key == "" {
		cfg.Key = "textbelt"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://textbelt.com/text"
	}
	return &Textbelt{
		cfg:    cfg,
		client: &http.Client{Timeout: sendTimeout},
	}
}

func (t *Textbelt) Name() string { return "textbelt" }

func (t *Textbelt) Configured() bool { return t.cfg.Key != "" }

func (t *Textbelt) Send(ctx context.Context, message string, numbers []string) (bool, error) {
	var (
		sent    bool
		lastErr error
	)
	for _, number := range numbers {
		form := url.Values{}
		form.Set("phone", number)
		form.Set("message", message)
		form.Set("key", t.cfg.Key)

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.BaseURL,
			strings.NewReader(form.Encode()))
		if err != nil {
			lastErr = err
			continue
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := t.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		var body struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}
		decodeErr := json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()

		switch {
		case decodeErr != nil:
			lastErr = decodeErr
		case body.Success:
			sent = true
		default:
			lastErr = fmt.Errorf("textbelt: rejected %s: %s", number, body.Error)
		}
	}
	if sent {
		return true, nil
	}
	return false, lastErr
}

var _ ports.SMSProvider = (*Textbelt)(nil)
