package videogen

import (
	"context"
	"errors"
	"time"

	"github.com/lefilcompany/creator-leap-studio-sub000/internal/domain"
	"github.com/lefilcompany/creator-leap-studio-sub000/internal/infra"
)

// Compensator reconciles credits after an asynchronous failure and records
// the terminal failure on the job. The refund decision depends only on the
// error classification; the ledger guarantees at most one refund per job.
type Compensator struct {
	jobs   domain.JobRepository
	ledger domain.CreditLedger
	logger infra.Logger
}

func NewCompensator(jobs domain.JobRepository, ledger domain.CreditLedger, logger infra.Logger) *Compensator {
	return &Compensator{jobs: jobs, ledger: ledger, logger: logger}
}

// Compensate refunds the reservation when the classification allows it, then
// fails the job record with the classification, the refund outcome and a
// localized human-readable message. The refund is written first: if the
// process dies between the two writes, a retried compensation finds the
// existing refund and converges on the same result.
func (c *Compensator) Compensate(ctx context.Context, req domain.GenerationRequest, units int64, cerr *ClassifiedError) {
	// Terminal writes must land even when the task was cancelled and its
	// context is already dead.
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
	}

	refunded := false
	if cerr.Class.Refundable() {
		_, err := c.ledger.Refund(ctx, req.OrganizationID, units, req.JobID, string(cerr.Class))
		switch {
		case err == nil:
			refunded = true
			c.logger.Info().
				Str("job_id", req.JobID).
				Str("org_id", req.OrganizationID).
				Int64("units", units).
				Str("classification", string(cerr.Class)).
				Msg("videogen: credits refunded")
		case errors.Is(err, domain.ErrRefundAlreadyIssued):
			refunded = true
		default:
			c.logger.Error().Err(err).
				Str("job_id", req.JobID).
				Str("org_id", req.OrganizationID).
				Msg("videogen: refund failed")
		}
	}

	now := time.Now().UTC()
	result := &domain.JobResult{
		Error:          failureMessage(cerr.Class, req.Locale),
		Classification: cerr.Class,
		Refunded:       refunded,
		FailedAt:       &now,
	}
	won, err := c.jobs.Fail(ctx, req.JobID, result)
	if err != nil {
		c.logger.Error().Err(err).Str("job_id", req.JobID).Msg("videogen: failed to record job failure")
		return
	}
	if !won {
		c.logger.Warn().Str("job_id", req.JobID).Msg("videogen: job already terminal, failure not recorded")
		return
	}
	c.logger.Info().
		Str("job_id", req.JobID).
		Str("classification", string(cerr.Class)).
		Bool("refunded", refunded).
		Msg("videogen: job failed")
}
