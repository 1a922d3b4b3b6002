package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/folio-erp/folio-erp/internal/reports"
	"github.com/folio-erp/folio-erp/internal/shared"
)

// TrialBalancePort builds trial balances, which carry the double-entry
// verification as a side effect.
type TrialBalancePort interface {
	TrialBalance(ctx context.Context, companyID int64, from, to time.Time) (reports.TrialBalance, error)
}

// CompanyLister fans a zero-company task out to every active tenant.
type CompanyLister interface {
	ListCompanyIDs(ctx context.Context) ([]int64, error)
}

// IntegrityChecker replays each company's journal and verifies that total
// debits equal total credits. An imbalance means a bug or manual data
// tampering; it is logged loudly and the task fails so it retries after
// the operator intervenes.
type IntegrityChecker struct {
	reports   TrialBalancePort
	companies CompanyLister
	logger    *slog.Logger
}

// NewIntegrityChecker constructs IntegrityChecker.
func NewIntegrityChecker(reports TrialBalancePort, companies CompanyLister, logger *slog.Logger) *IntegrityChecker {
	return &IntegrityChecker{reports: reports, companies: companies, logger: logger}
}

// Handle processes TaskLedgerIntegrity tasks.
func (c *IntegrityChecker) Handle(ctx context.Context, t *asynq.Task) error {
	var payload CompanyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	ids := []int64{payload.CompanyID}
	if payload.CompanyID == 0 {
		var err error
		ids, err = c.companies.ListCompanyIDs(ctx)
		if err != nil {
			return err
		}
	}
	var firstErr error
	for _, id := range ids {
		tb, err := c.reports.TrialBalance(ctx, id, time.Time{}, time.Time{})
		if errors.Is(err, shared.ErrLedgerImbalance) {
			c.logger.Error("ledger imbalance detected", "company_id", id, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err != nil {
			return err
		}
		c.logger.Info("ledger integrity verified", "company_id", id,
			"total_debit", tb.TotalDebit.String(), "total_credit", tb.TotalCredit.String())
	}
	return firstErr
}
