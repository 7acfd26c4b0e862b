package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kwameboadi/adepa-backend/pkg/config"
	"github.com/kwameboadi/adepa-backend/pkg/enums"
	pkgerrors "github.com/kwameboadi/adepa-backend/pkg/errors"
	"github.com/kwameboadi/adepa-backend/pkg/logger"
	"github.com/kwameboadi/adepa-backend/pkg/redis"
)

// Service resolves display-currency conversion rates from the base currency.
// Conversion is presentation-only; settlement amounts never pass through it.
type Service interface {
	Rate(ctx context.Context, target enums.Currency) (decimal.Decimal, error)
	// Refresh re-fetches the full table and warms the cache.
	Refresh(ctx context.Context) error
}

// ServiceParams groups dependencies for the rate service.
type ServiceParams struct {
	Config config.RatesConfig
	Base   enums.Currency
	Cache  redis.Cache
	Logger *logger.Logger
	HTTP   *http.Client
}

type service struct {
	cfg    config.RatesConfig
	base   enums.Currency
	cache  redis.Cache
	logg   *logger.Logger
	client *http.Client
}

// NewService builds a rate service.
func NewService(params ServiceParams) (Service, error) {
	if params.Cache == nil {
		return nil, errors.New("cache is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if !params.Base.IsValid() {
		return nil, errors.New("base currency is required")
	}
	client := params.HTTP
	if client == nil {
		client = &http.Client{Timeout: params.Config.Timeout}
	}
	return &service{
		cfg:    params.Config,
		base:   params.Base,
		cache:  params.Cache,
		logg:   params.Logger,
		client: client,
	}, nil
}

func (s *service) Rate(ctx context.Context, target enums.Currency) (decimal.Decimal, error) {
	if !target.IsValid() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "unknown display currency")
	}
	if target == s.base {
		return decimal.NewFromInt(1), nil
	}

	key := s.cache.CacheKey("fx", s.base.String(), target.String())
	if cached, err := s.cache.Get(ctx, key); err == nil {
		if rate, parseErr := decimal.NewFromString(cached); parseErr == nil {
			return rate, nil
		}
	} else if !redis.IsNil(err) {
		s.logg.Warn(s.logg.WithField(ctx, "currency", target.String()), "rate cache read failed")
	}

	table, err := s.fetch(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if err := s.store(ctx, table); err != nil {
		s.logg.Warn(ctx, "rate cache write failed")
	}

	rate, ok := table[target.String()]
	if !ok {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("no rate published for %s", target))
	}
	return rate, nil
}

func (s *service) Refresh(ctx context.Context) error {
	table, err := s.fetch(ctx)
	if err != nil {
		return err
	}
	return s.store(ctx, table)
}

type ratesResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

func (s *service) fetch(ctx context.Context) (map[string]decimal.Decimal, error) {
	url := fmt.Sprintf("%s/latest/%s", strings.TrimRight(s.cfg.BaseURL, "/"), s.base)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build rates request")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch rates")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("rates provider returned %d", resp.StatusCode))
	}

	var payload ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode rates response")
	}
	if payload.Result != "" && payload.Result != "success" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "rates provider reported failure")
	}

	table := make(map[string]decimal.Decimal, len(payload.Rates))
	for code, value := range payload.Rates {
		table[strings.ToUpper(code)] = decimal.NewFromFloat(value)
	}
	return table, nil
}

func (s *service) store(ctx context.Context, table map[string]decimal.Decimal) error {
	ttl := s.cfg.CacheTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	var firstErr error
	for code, rate := range table {
		key := s.cache.CacheKey("fx", s.base.String(), code)
		if err := s.cache.Set(ctx, key, rate.String(), ttl); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ConvertMinor converts a minor-unit amount with the given rate and renders
// it as a major-unit string ("123.45").
func ConvertMinor(amountMinor int64, rate decimal.Decimal) string {
	return decimal.NewFromInt(amountMinor).
		Div(decimal.NewFromInt(100)).
		Mul(rate).
		StringFixed(2)
}

// FormatMinor renders a minor-unit amount in its own currency ("GHS 480.00").
func FormatMinor(amountMinor int64, currency enums.Currency) string {
	major := decimal.NewFromInt(amountMinor).Div(decimal.NewFromInt(100))
	return fmt.Sprintf("%s %s", currency, major.StringFixed(2))
}
