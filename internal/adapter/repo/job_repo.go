package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lefilcompany/creator-leap-studio-sub000/internal/domain"
	"github.com/lefilcompany/creator-leap-studio-sub000/internal/infra"
	"github.com/lefilcompany/creator-leap-studio-sub000/internal/sqlinline"
)

// JobRepositoryPG implements domain.JobRepository on PostgreSQL.
type JobRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewJobRepository creates a job repository backed by the given executor.
func NewJobRepository(sql infra.SQLExecutor) *JobRepositoryPG {
	return &JobRepositoryPG{sql: sql}
}

// Create inserts a new job record. A reused job id surfaces as
// domain.ErrDuplicateJob.
func (r *JobRepositoryPG) Create(ctx context.Context, job *domain.JobRecord) error {
	requestJSON, err := json.Marshal(job.Request)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	_, err = r.sql.Exec(ctx, sqlinline.QInsertVideoJob,
		job.ID,
		job.OrganizationID,
		job.RequesterID,
		job.Status,
		requestJSON,
	)
	if err != nil {
		if infra.IsUniqueViolation(err) {
			return domain.ErrDuplicateJob
		}
		return err
	}
	return nil
}

// GetByID fetches a job by its identifier.
func (r *JobRepositoryPG) GetByID(ctx context.Context, jobID string) (*domain.JobRecord, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectVideoJob, jobID)
	var (
		job           domain.JobRecord
		requestJSON   []byte
		resultJSON    []byte
		operationName *string
	)
	if err := row.Scan(
		&job.ID,
		&job.OrganizationID,
		&job.RequesterID,
		&job.Status,
		&requestJSON,
		&resultJSON,
		&operationName,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(requestJSON, &job.Request); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	if len(resultJSON) > 0 {
		var result domain.JobResult
		if err := json.Unmarshal(resultJSON, &result); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
		job.Result = &result
	}
	if operationName != nil {
		job.OperationName = *operationName
	}
	return &job, nil
}

// AttachOperation records the provider operation handle on the job.
func (r *JobRepositoryPG) AttachOperation(ctx context.Context, jobID, operationName string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QAttachVideoJobOperation, jobID, operationName)
	return err
}

// Complete moves a PROCESSING job to COMPLETED. Returns false when another
// writer already took the job terminal.
func (r *JobRepositoryPG) Complete(ctx context.Context, jobID string, result *domain.JobResult) (bool, error) {
	return r.finish(ctx, sqlinline.QCompleteVideoJob, jobID, result)
}

// Fail moves a PROCESSING job to FAILED. Returns false when another writer
// already took the job terminal.
func (r *JobRepositoryPG) Fail(ctx context.Context, jobID string, result *domain.JobResult) (bool, error) {
	return r.finish(ctx, sqlinline.QFailVideoJob, jobID, result)
}

func (r *JobRepositoryPG) finish(ctx context.Context, query, jobID string, result *domain.JobResult) (bool, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return false, fmt.Errorf("encode result: %w", err)
	}
	tag, err := r.sql.Exec(ctx, query, jobID, resultJSON)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

var _ domain.JobRepository = (*JobRepositoryPG)(nil)
