package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/utafrali/socialgraph/pkg/httpclient"
)

// PostmarkConfig holds the Postmark server API settings.
type PostmarkConfig struct {
	ServerToken string
	From        string
	BaseURL     string
	Timeout     time.Duration
}

type postmarkEmail struct {
	From          string `json:"From"`
	To            string `json:"To"`
	Subject       string `json:"Subject"`
	TextBody      string `json:"TextBody"`
	MessageStream string `json:"MessageStream"`
}

// PostmarkMailer sends mail through the Postmark HTTP API. Requests are not
// retried; repeated failures open a circuit breaker.
type PostmarkMailer struct {
	cfg    PostmarkConfig
	client *httpclient.CircuitBreakerClient
}

// NewPostmarkMailer creates a PostmarkMailer.
func NewPostmarkMailer(cfg PostmarkConfig, logger *slog.Logger) *PostmarkMailer {
	httpCfg := httpclient.DefaultConfig()
	httpCfg.MaxRetries = 0
	if cfg.Timeout > 0 {
		httpCfg.Timeout = cfg.Timeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &PostmarkMailer{
		cfg: cfg,
		client: httpclient.NewCircuitBreakerClient(
			httpclient.New(httpCfg),
			httpclient.DefaultCircuitBreakerConfig("postmark"),
			logger,
		),
	}
}

// SendMail posts msg to /email.
func (m *PostmarkMailer) SendMail(ctx context.Context, msg Message) error {
	body, err := json.Marshal(postmarkEmail{
		From:          m.cfg.From,
		To:            msg.To,
		Subject:       msg.Subject,
		TextBody:      msg.Text,
		MessageStream: "outbound",
	})
	if err != nil {
		return deliveryError("postmark", fmt.Errorf("marshal email: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.BaseURL+"/email", bytes.NewReader(body))
	if err != nil {
		return deliveryError("postmark", fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", m.cfg.ServerToken)

	resp, err := m.client.Do(ctx, req)
	if err != nil {
		return deliveryError("postmark", err)
	}
	if resp.StatusCode >= 300 {
		return deliveryError("postmark", httpclient.ParseResponseError(resp, "postmark"))
	}
	_ = resp.Body.Close()
	return nil
}
