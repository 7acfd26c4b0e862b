package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kwameboadi/adepa-backend/pkg/config"
	pkgerrors "github.com/kwameboadi/adepa-backend/pkg/errors"
	"github.com/kwameboadi/adepa-backend/pkg/logger"
)

var errLoggerRequired = errors.New("mail logger is required")

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers notification emails.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Client delivers mail through the provider's v3 send endpoint. When no API
// key is configured it logs and drops messages, which keeps local
// environments working without credentials.
type Client struct {
	http        *http.Client
	baseURL     string
	apiKey      string
	defaultFrom string
	logger      *logger.Logger
}

func NewClient(cfg config.MailConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.sendgrid.com"
	}
	return &Client{
		http:        &http.Client{Timeout: 10 * time.Second},
		baseURL:     baseURL,
		apiKey:      strings.TrimSpace(cfg.APIKey),
		defaultFrom: strings.TrimSpace(cfg.DefaultFrom),
		logger:      logg,
	}, nil
}

type sendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             emailAddress      `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

type personalization struct {
	To []emailAddress `json:"to"`
}

type emailAddress struct {
	Email string `json:"email"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Send delivers one message. Recipient and subject are required.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "mail recipient is required")
	}
	if strings.TrimSpace(msg.Subject) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "mail subject is required")
	}

	if c.apiKey == "" {
		lctx := c.logger.WithFields(ctx, map[string]any{"subject": msg.Subject})
		c.logger.Warn(lctx, "mail api key not configured, dropping message")
		return nil
	}

	payload := sendRequest{
		Personalizations: []personalization{{To: []emailAddress{{Email: msg.To}}}},
		From:             emailAddress{Email: c.defaultFrom},
		Subject:          msg.Subject,
		Content:          []content{{Type: "text/plain", Value: msg.Body}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode mail request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v3/mail/send", bytes.NewReader(body))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build mail request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call mail provider")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("mail provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))))
	}

	lctx := c.logger.WithFields(ctx, map[string]any{"subject": msg.Subject})
	c.logger.Info(lctx, "mail delivered")
	return nil
}
