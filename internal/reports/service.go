package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/folio-erp/folio-erp/internal/ledger"
	"github.com/folio-erp/folio-erp/internal/shared"
)

// RepositoryPort aggregates journal rows per sub-account.
type RepositoryPort interface {
	SubAccountTotals(ctx context.Context, companyID int64, from, to time.Time) ([]SubAccountTotal, error)
}

// Service builds financial reports with a Redis read-through cache.
// Reports replay the journal on every miss; nothing is precomputed or
// stored beyond the cache TTL.
type Service struct {
	repo   RepositoryPort
	cache  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewService builds Service. cache may be nil, which disables caching.
func NewService(repo RepositoryPort, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

var openRange = struct{ From, To time.Time }{
	From: time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
	To:   time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC),
}

// TrialBalance nets every sub-account over the range. Zero from/to mean
// an unbounded range.
func (s *Service) TrialBalance(ctx context.Context, companyID int64, from, to time.Time) (TrialBalance, error) {
	if companyID == 0 {
		return TrialBalance{}, shared.ErrTenant
	}
	from, to = clampRange(from, to)
	key := fmt.Sprintf("reports:%d:tb:%s:%s", companyID, from.Format(time.DateOnly), to.Format(time.DateOnly))
	var cached TrialBalance
	if s.fromCache(ctx, key, &cached) {
		return cached, nil
	}
	totals, err := s.repo.SubAccountTotals(ctx, companyID, from, to)
	if err != nil {
		return TrialBalance{}, err
	}
	tb, err := BuildTrialBalance(totals, from, to)
	if err != nil {
		return TrialBalance{}, err
	}
	s.toCache(ctx, key, tb)
	return tb, nil
}

// BalanceSheet reports the position as of a date. A zero asOf means now.
func (s *Service) BalanceSheet(ctx context.Context, companyID int64, asOf time.Time) (BalanceSheet, error) {
	if companyID == 0 {
		return BalanceSheet{}, shared.ErrTenant
	}
	if asOf.IsZero() {
		asOf = time.Now()
	}
	asOf = ledger.NormalizeDate(asOf)
	key := fmt.Sprintf("reports:%d:bs:%s", companyID, asOf.Format(time.DateOnly))
	var cached BalanceSheet
	if s.fromCache(ctx, key, &cached) {
		return cached, nil
	}
	totals, err := s.repo.SubAccountTotals(ctx, companyID, openRange.From, asOf)
	if err != nil {
		return BalanceSheet{}, err
	}
	bs, err := BuildBalanceSheet(totals, asOf)
	if err != nil {
		return BalanceSheet{}, err
	}
	s.toCache(ctx, key, bs)
	return bs, nil
}

// IncomeStatement reports revenue less expenses over the range.
func (s *Service) IncomeStatement(ctx context.Context, companyID int64, from, to time.Time) (IncomeStatement, error) {
	if companyID == 0 {
		return IncomeStatement{}, shared.ErrTenant
	}
	from, to = clampRange(from, to)
	key := fmt.Sprintf("reports:%d:is:%s:%s", companyID, from.Format(time.DateOnly), to.Format(time.DateOnly))
	var cached IncomeStatement
	if s.fromCache(ctx, key, &cached) {
		return cached, nil
	}
	totals, err := s.repo.SubAccountTotals(ctx, companyID, from, to)
	if err != nil {
		return IncomeStatement{}, err
	}
	is := BuildIncomeStatement(totals, from, to)
	s.toCache(ctx, key, is)
	return is, nil
}

// Warm precomputes the unbounded trial balance and the as-of-today
// balance sheet for one company. The warmup job calls this off-peak.
func (s *Service) Warm(ctx context.Context, companyID int64) error {
	if _, err := s.TrialBalance(ctx, companyID, time.Time{}, time.Time{}); err != nil {
		return err
	}
	_, err := s.BalanceSheet(ctx, companyID, time.Time{})
	return err
}

func (s *Service) fromCache(ctx context.Context, key string, target any) bool {
	if s.cache == nil {
		return false
	}
	payload, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(payload, target) == nil
}

func (s *Service) toCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.ttl).Err(); err != nil && s.logger != nil {
		s.logger.Warn("report cache write failed", "error", err, "key", key)
	}
}

func clampRange(from, to time.Time) (time.Time, time.Time) {
	if from.IsZero() {
		from = openRange.From
	}
	if to.IsZero() {
		to = openRange.To
	}
	return ledger.NormalizeDate(from), ledger.NormalizeDate(to)
}
