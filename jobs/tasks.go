package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrity replays every company's journal and verifies
	// the double-entry invariant.
	TaskLedgerIntegrity = "ledger:integrity"
	// TaskReportsWarmup precomputes the heavy reports into the cache.
	TaskReportsWarmup = "reports:warmup"
)

// CompanyPayload scopes a task to one company. A zero CompanyID means
// every active company.
type CompanyPayload struct {
	CompanyID int64 `json:"company_id"`
}

// NewLedgerIntegrityTask constructs the integrity check task.
func NewLedgerIntegrityTask(payload CompanyPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrity, data), nil
}

// NewReportsWarmupTask constructs the report warmup task.
func NewReportsWarmupTask(payload CompanyPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsWarmup, data), nil
}
