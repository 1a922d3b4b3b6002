package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

// WarmPort precomputes a company's heavy reports into the cache.
type WarmPort interface {
	Warm(ctx context.Context, companyID int64) error
}

// ReportWarmer runs the off-peak report warmup.
type ReportWarmer struct {
	reports   WarmPort
	companies CompanyLister
	logger    *slog.Logger
}

// NewReportWarmer constructs ReportWarmer.
func NewReportWarmer(reports WarmPort, companies CompanyLister, logger *slog.Logger) *ReportWarmer {
	return &ReportWarmer{reports: reports, companies: companies, logger: logger}
}

// Handle processes TaskReportsWarmup tasks.
func (rw *ReportWarmer) Handle(ctx context.Context, t *asynq.Task) error {
	var payload CompanyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	ids := []int64{payload.CompanyID}
	if payload.CompanyID == 0 {
		var err error
		ids, err = rw.companies.ListCompanyIDs(ctx)
		if err != nil {
			return err
		}
	}
	for _, id := range ids {
		if err := rw.reports.Warm(ctx, id); err != nil {
			rw.logger.Warn("report warmup failed", "company_id", id, "error", err)
			return err
		}
	}
	return nil
}
