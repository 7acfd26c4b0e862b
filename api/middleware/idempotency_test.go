package middleware

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwameboadi/adepa-backend/pkg/logger"
)

type fakeStore struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *fakeStore) Get(_ context.Context, key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (s *fakeStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := s.values[key]; ok {
		return false, nil
	}
	s.values[key] = fmt.Sprint(value)
	s.ttls[key] = ttl
	return true, nil
}

func (s *fakeStore) IdempotencyKey(scope, id string) string {
	return "idem:" + scope + ":" + id
}

func (s *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newIdempotentHandler(t *testing.T, store *fakeStore, calls *atomic.Int32) http.Handler {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"call":%d}`, n)
	})
	return Idempotency(store, testLogger())(next)
}

func checkoutRequest(key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req
}

func TestIdempotencyReplayReturnsStoredResponse(t *testing.T) {
	store := newFakeStore()
	var calls atomic.Int32
	handler := newIdempotentHandler(t, store, &calls)

	body := `{"payment_method":"wallet"}`

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, checkoutRequest("key-1", body))
	require.Equal(t, http.StatusCreated, first.Code)
	require.Equal(t, `{"call":1}`, first.Body.String())

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, checkoutRequest("key-1", body))
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, `{"call":1}`, second.Body.String(), "replay serves the stored response")
	assert.Equal(t, "application/json", second.Header().Get("Content-Type"))

	assert.EqualValues(t, 1, calls.Load(), "handler runs once per key")
}

func TestIdempotencyRejectsBodyMismatch(t *testing.T) {
	store := newFakeStore()
	var calls atomic.Int32
	handler := newIdempotentHandler(t, store, &calls)

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, checkoutRequest("key-1", `{"payment_method":"wallet"}`))
	require.Equal(t, http.StatusCreated, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, checkoutRequest("key-1", `{"payment_method":"gateway"}`))
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Contains(t, second.Body.String(), "idempotency")
	assert.EqualValues(t, 1, calls.Load())
}

func TestIdempotencyRequiresHeaderOnGuardedRoutes(t *testing.T) {
	store := newFakeStore()
	var calls atomic.Int32
	handler := newIdempotentHandler(t, store, &calls)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, checkoutRequest("", `{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Idempotency-Key")
	assert.Zero(t, calls.Load())
}

func TestIdempotencySkipsUnguardedRoutes(t *testing.T) {
	store := newFakeStore()
	var calls atomic.Int32
	handler := newIdempotentHandler(t, store, &calls)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	assert.EqualValues(t, 2, calls.Load(), "reads never consume idempotency keys")
	assert.Empty(t, store.values)
}

func TestIdempotencyKeysAreScopedPerUser(t *testing.T) {
	store := newFakeStore()
	var calls atomic.Int32
	handler := newIdempotentHandler(t, store, &calls)

	body := `{"payment_method":"wallet"}`

	reqA := checkoutRequest("key-1", body)
	reqA = reqA.WithContext(WithUserID(reqA.Context(), "user-a"))
	recA := httptest.NewRecorder()
	handler.ServeHTTP(recA, reqA)

	reqB := checkoutRequest("key-1", body)
	reqB = reqB.WithContext(WithUserID(reqB.Context(), "user-b"))
	recB := httptest.NewRecorder()
	handler.ServeHTTP(recB, reqB)

	assert.EqualValues(t, 2, calls.Load(), "same key from different users never collides")
}

func TestIdempotencyMoneyRoutesKeepLongerTTL(t *testing.T) {
	store := newFakeStore()
	var calls atomic.Int32
	handler := newIdempotentHandler(t, store, &calls)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, checkoutRequest("key-1", `{}`))
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, store.ttls, 1)
	for _, ttl := range store.ttls {
		assert.Equal(t, 7*24*time.Hour, ttl)
	}

	cartReq := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{}`))
	cartReq.Header.Set("Idempotency-Key", "key-2")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, cartReq)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, store.ttls, 2)
	found := false
	for _, ttl := range store.ttls {
		if ttl == 24*time.Hour {
			found = true
		}
	}
	assert.True(t, found, "cart writes keep the default window")
}
