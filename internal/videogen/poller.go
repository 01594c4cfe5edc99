package videogen

import (
	"context"
	"fmt"
	"time"

	"github.com/lefilcompany/creator-leap-studio-sub000/internal/domain"
	"github.com/lefilcompany/creator-leap-studio-sub000/internal/infra"
	"github.com/lefilcompany/creator-leap-studio-sub000/internal/providers/veo"
)

// OperationPoller observes the state of a provider long-running operation.
type OperationPoller interface {
	PollOperation(ctx context.Context, operationName string) (veo.OperationStatus, error)
}

// Poller drives a long-running operation to a terminal observation. It waits
// a fixed interval between attempts and gives up after a bounded number of
// attempts; a single failed poll never fails the job.
type Poller struct {
	ops         OperationPoller
	interval    time.Duration
	maxAttempts int
	logger      infra.Logger
}

func NewPoller(ops OperationPoller, interval time.Duration, maxAttempts int, logger infra.Logger) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 60
	}
	return &Poller{ops: ops, interval: interval, maxAttempts: maxAttempts, logger: logger}
}

// Await polls until the operation reports a terminal signal or the attempt
// bound is exhausted. It returns the artifact locator and the number of
// attempts used; failures come back as a *ClassifiedError. Each poll response
// is inspected in order: explicit error, cancellation marker, done flag.
func (p *Poller) Await(ctx context.Context, jobID, operationName string) (string, int, error) {
	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", attempt - 1, classified(domain.ClassCancelled, "generation cancelled before completion")
		case <-timer.C:
		}
		timer.Reset(p.interval)

		status, err := p.ops.PollOperation(ctx, operationName)
		if err != nil {
			if ctx.Err() != nil {
				return "", attempt, classified(domain.ClassCancelled, "generation cancelled before completion")
			}
			p.logger.Warn().Err(err).
				Str("job_id", jobID).
				Str("operation", operationName).
				Int("attempt", attempt).
				Msg("videogen: poll attempt failed, continuing")
			continue
		}

		if status.ErrMessage != "" && !status.Cancelled {
			return "", attempt, classified(domain.ClassGenerationFailed, status.ErrMessage)
		}
		if status.Cancelled {
			return "", attempt, classified(domain.ClassCancelled, "provider reported the operation cancelled")
		}
		if status.Done {
			uri, ok := veo.ExtractArtifactURI(status.ResponseBody)
			if !ok {
				return "", attempt, classified(domain.ClassUnknownResponseShape, "operation done but no artifact locator found in any known response shape")
			}
			return uri, attempt, nil
		}
	}

	return "", p.maxAttempts, classified(domain.ClassPollTimeout,
		fmt.Sprintf("operation not done after %d attempts", p.maxAttempts))
}
