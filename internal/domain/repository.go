package domain

import "context"

// JobRepository defines persistence for job records. Complete and Fail are
// conditional on the record still being in PROCESSING and report whether the
// update won, so exactly one writer takes a job to a terminal state.
type JobRepository interface {
	Create(ctx context.Context, job *JobRecord) error
	GetByID(ctx context.Context, jobID string) (*JobRecord, error)
	AttachOperation(ctx context.Context, jobID, operationName string) error
	Complete(ctx context.Context, jobID string, result *JobResult) (bool, error)
	Fail(ctx context.Context, jobID string, result *JobResult) (bool, error)
}

// CreditLedger serializes credit mutations per organization and appends the
// audit trail. Reserve fails with *InsufficientCreditsError without mutating
// state when the balance cannot cover units. Refund issues at most one refund
// per job id and returns ErrRefundAlreadyIssued afterwards.
type CreditLedger interface {
	Reserve(ctx context.Context, orgID string, units int64, jobID string) (BalanceSnapshot, error)
	Refund(ctx context.Context, orgID string, units int64, jobID, reason string) (BalanceSnapshot, error)
	Balance(ctx context.Context, orgID string) (int64, error)
}
