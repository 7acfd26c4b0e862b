package paystack

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwameboadi/adepa-backend/pkg/config"
	pkgerrors "github.com/kwameboadi/adepa-backend/pkg/errors"
	"github.com/kwameboadi/adepa-backend/pkg/logger"
)

const testSecret = "sk_test_abc123"

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	client, err := NewClient(context.Background(), config.PaystackConfig{
		SecretKey: testSecret,
		BaseURL:   baseURL,
		Timeout:   5 * time.Second,
	}, logg)
	require.NoError(t, err)
	return client
}

func sign(body []byte, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestNewClientRequiresSecret(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	_, err := NewClient(context.Background(), config.PaystackConfig{SecretKey: "  "}, logg)
	require.Error(t, err)

	_, err = NewClient(context.Background(), config.PaystackConfig{SecretKey: testSecret}, nil)
	require.Error(t, err)
}

func TestValidSignature(t *testing.T) {
	client := newTestClient(t, "https://api.paystack.co")
	body := []byte(`{"event":"charge.success","data":{"reference":"order_abc"}}`)

	assert.True(t, client.ValidSignature(body, sign(body, testSecret)))
	assert.True(t, client.ValidSignature(body, strings.ToUpper(sign(body, testSecret))), "header casing must not matter")

	assert.False(t, client.ValidSignature(body, sign(body, "sk_test_other")))
	assert.False(t, client.ValidSignature([]byte("tampered"), sign(body, testSecret)))
	assert.False(t, client.ValidSignature(body, ""))
}

func TestInitialize(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/transaction/initialize", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"status":true,"message":"Authorization URL created","data":{
			"authorization_url":"https://checkout.paystack.com/abc",
			"access_code":"abc",
			"reference":"order_ref_1"
		}}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	auth, err := client.Initialize(context.Background(), InitializeParams{
		Email:       "ama@example.com",
		AmountMinor: 10000,
		Currency:    "GHS",
		Reference:   "order_ref_1",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer "+testSecret, gotAuth)
	assert.EqualValues(t, 10000, gotBody["amount"])
	assert.Equal(t, "https://checkout.paystack.com/abc", auth.AuthorizationURL)
	assert.Equal(t, "order_ref_1", auth.Reference)
}

func TestInitializeRejectsNonPositiveAmount(t *testing.T) {
	client := newTestClient(t, "https://api.paystack.co")

	_, err := client.Initialize(context.Background(), InitializeParams{Email: "a@b.com"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transaction/verify/order_ref_1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"status":true,"message":"Verification successful","data":{
			"status":"success",
			"reference":"order_ref_1",
			"amount":10000,
			"currency":"GHS",
			"customer":{"email":"ama@example.com"}
		}}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	txn, err := client.Verify(context.Background(), "order_ref_1")
	require.NoError(t, err)

	assert.True(t, txn.Succeeded())
	assert.Equal(t, int64(10000), txn.AmountMinor)
	assert.Equal(t, "ama@example.com", txn.Customer.Email)
}

func TestVerifyRequiresReference(t *testing.T) {
	client := newTestClient(t, "https://api.paystack.co")

	_, err := client.Verify(context.Background(), "  ")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestVerifyMapsGatewayStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   pkgerrors.Code
	}{
		{"unauthorized", http.StatusUnauthorized, pkgerrors.CodeUnauthorized},
		{"not found", http.StatusNotFound, pkgerrors.CodeNotFound},
		{"rate limited", http.StatusTooManyRequests, pkgerrors.CodeRateLimit},
		{"bad request", http.StatusBadRequest, pkgerrors.CodeValidation},
		{"server error", http.StatusInternalServerError, pkgerrors.CodeDependency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, `{"message":"nope"}`)
			}))
			defer srv.Close()

			client := newTestClient(t, srv.URL)
			_, err := client.Verify(context.Background(), "order_ref_1")
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, tt.want, typed.Code())
		})
	}
}

func TestVerifyGatewayStatusFalse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"status":false,"message":"Transaction not found"}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.Verify(context.Background(), "order_ref_1")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
}
