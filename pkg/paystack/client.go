package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/kwameboadi/adepa-backend/pkg/config"
	pkgerrors "github.com/kwameboadi/adepa-backend/pkg/errors"
	"github.com/kwameboadi/adepa-backend/pkg/logger"
)

var (
	errSecretKeyRequired = errors.New("paystack secret key is required")
	errLoggerRequired    = errors.New("paystack logger is required")
)

// Client exposes gateway primitives with centralized auth, logging, and error mapping.
type Client struct {
	http      *http.Client
	baseURL   string
	secretKey string
	logger    *logger.Logger
}

// NewClient initializes the gateway wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.PaystackConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	secret := strings.TrimSpace(cfg.SecretKey)
	if secret == "" {
		return nil, errSecretKeyRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}

	c := &Client{
		http:      &http.Client{Timeout: cfg.Timeout},
		baseURL:   baseURL,
		secretKey: secret,
		logger:    logg,
	}

	logg.Info(ctx, "paystack client initialized")
	return c, nil
}

// SigningSecret returns the key used to verify webhook signatures.
func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.secretKey
}

// Initialize creates a hosted checkout session for the given charge.
func (c *Client) Initialize(ctx context.Context, params InitializeParams) (*Authorization, error) {
	if params.AmountMinor <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "charge amount must be positive")
	}
	req := initializeRequest{
		Email:       params.Email,
		Amount:      params.AmountMinor,
		Currency:    params.Currency,
		Reference:   params.Reference,
		CallbackURL: params.CallbackURL,
		Metadata:    params.Metadata,
	}
	c.log(ctx, "request", "initialize_transaction", map[string]any{
		"reference": params.Reference,
		"amount":    params.AmountMinor,
		"currency":  params.Currency,
		"email":     params.Email,
	})

	var out envelope[Authorization]
	if err := c.do(ctx, http.MethodPost, "/transaction/initialize", req, &out); err != nil {
		c.log(ctx, "error", "initialize_transaction", map[string]any{"error": err.Error()})
		return nil, err
	}
	if !out.Status {
		err := pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("paystack initialize failed: %s", out.Message))
		c.log(ctx, "error", "initialize_transaction", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "initialize_transaction", map[string]any{
		"reference": out.Data.Reference,
	})
	return &out.Data, nil
}

// Verify fetches the settled state of a transaction by reference.
func (c *Client) Verify(ctx context.Context, reference string) (*Transaction, error) {
	ref := strings.TrimSpace(reference)
	if ref == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction reference is required")
	}
	c.log(ctx, "request", "verify_transaction", map[string]any{"reference": ref})

	var out envelope[Transaction]
	path := "/transaction/verify/" + url.PathEscape(ref)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		c.log(ctx, "error", "verify_transaction", map[string]any{"error": err.Error()})
		return nil, err
	}
	if !out.Status {
		err := pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("paystack verify failed: %s", out.Message))
		c.log(ctx, "error", "verify_transaction", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "verify_transaction", map[string]any{
		"reference": out.Data.Reference,
		"status":    out.Data.Status,
		"amount":    out.Data.AmountMinor,
	})
	return &out.Data, nil
}

// ValidSignature checks the webhook body against the X-Paystack-Signature header.
// The gateway signs the raw body with HMAC-SHA512 keyed by the secret key.
func (c *Client) ValidSignature(body []byte, signature string) bool {
	sig := strings.TrimSpace(signature)
	if c == nil || sig == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(c.secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(sig)))
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode paystack request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build paystack request")
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call paystack")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read paystack response")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return c.mapStatusError(resp.StatusCode, raw)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode paystack response")
	}
	return nil
}

func (c *Client) mapStatusError(status int, raw []byte) error {
	message := "paystack request failed"
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Message != "" {
		message = payload.Message
	}

	code := pkgerrors.CodeDependency
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		code = pkgerrors.CodeUnauthorized
	case status == http.StatusNotFound:
		code = pkgerrors.CodeNotFound
	case status == http.StatusTooManyRequests:
		code = pkgerrors.CodeRateLimit
	case status >= http.StatusBadRequest && status < http.StatusInternalServerError:
		code = pkgerrors.CodeValidation
	}
	return pkgerrors.New(code, message)
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("paystack %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("paystack %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"card", "token", "cvv", "secret", "email", "phone"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}
