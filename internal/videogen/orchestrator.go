package videogen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lefilcompany/creator-leap-studio-sub000/internal/domain"
	"github.com/lefilcompany/creator-leap-studio-sub000/internal/infra"
)

// VideoGenerationCost is the flat credit price of one video generation.
const VideoGenerationCost int64 = 20

// SubmitResponse is the synchronous answer to a submission: the job is
// accepted and processing, everything else arrives through the job record.
type SubmitResponse struct {
	JobID  string
	Status domain.JobStatus
}

// Options wires the orchestrator's collaborators.
type Options struct {
	Jobs         domain.JobRepository
	Ledger       domain.CreditLedger
	Composer     *Composer
	Gateway      Submitter
	Poller       *Poller
	Materializer *Materializer
	Compensator  *Compensator
	Supervisor   *Supervisor
	Logger       infra.Logger
}

// Orchestrator coordinates the full generation pipeline: reserve credits,
// create the job record, then hand submission, polling, materialization and
// compensation to a detached background task.
type Orchestrator struct {
	jobs         domain.JobRepository
	ledger       domain.CreditLedger
	composer     *Composer
	gateway      Submitter
	poller       *Poller
	materializer *Materializer
	compensator  *Compensator
	supervisor   *Supervisor
	logger       infra.Logger
}

func NewOrchestrator(opts Options) *Orchestrator {
	return &Orchestrator{
		jobs:         opts.Jobs,
		ledger:       opts.Ledger,
		composer:     opts.Composer,
		gateway:      opts.Gateway,
		poller:       opts.Poller,
		materializer: opts.Materializer,
		compensator:  opts.Compensator,
		supervisor:   opts.Supervisor,
		logger:       opts.Logger,
	}
}

// Submit validates the request, reserves credits and creates the job record,
// then returns while the generation continues in the background. Errors
// returned here happened before any provider call; once Submit succeeds,
// failures are only ever observed through the job record.
func (o *Orchestrator) Submit(ctx context.Context, req domain.GenerationRequest) (*SubmitResponse, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	if req.JobID == "" {
		req.JobID = uuid.NewString()
	} else if _, err := o.jobs.GetByID(ctx, req.JobID); err == nil {
		return nil, domain.ErrDuplicateJob
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	snap, err := o.ledger.Reserve(ctx, req.OrganizationID, VideoGenerationCost, req.JobID)
	if err != nil {
		return nil, err
	}
	o.logger.Info().
		Str("job_id", req.JobID).
		Str("org_id", req.OrganizationID).
		Int64("units", VideoGenerationCost).
		Int64("balance_after", snap.After).
		Msg("videogen: credits reserved")

	job := &domain.JobRecord{
		ID:             req.JobID,
		OrganizationID: req.OrganizationID,
		RequesterID:    req.RequesterID,
		Status:         domain.JobStatusProcessing,
		Request:        req,
	}
	if err := o.jobs.Create(ctx, job); err != nil {
		if errors.Is(err, domain.ErrDuplicateJob) {
			// Lost a duplicate race after reserving; give the units back.
			if _, rerr := o.ledger.Refund(ctx, req.OrganizationID, VideoGenerationCost, req.JobID, "duplicate submission"); rerr != nil && !errors.Is(rerr, domain.ErrRefundAlreadyIssued) {
				o.logger.Error().Err(rerr).Str("job_id", req.JobID).Msg("videogen: refund after duplicate create failed")
			}
		}
		return nil, err
	}

	composed := o.composer.Compose(req)
	startedAt := time.Now()
	o.supervisor.Go("videogen:"+req.JobID, func(taskCtx context.Context) {
		o.run(taskCtx, req, composed, startedAt)
	})

	return &SubmitResponse{JobID: req.JobID, Status: domain.JobStatusProcessing}, nil
}

// run is the detached part of the pipeline. Every exit path leaves the job in
// a terminal state.
func (o *Orchestrator) run(ctx context.Context, req domain.GenerationRequest, composed Composed, startedAt time.Time) {
	operationName, err := o.gateway.Submit(ctx, req, composed)
	if err != nil {
		o.compensator.Compensate(ctx, req, VideoGenerationCost, classifySubmitError(err))
		return
	}
	if err := o.jobs.AttachOperation(ctx, req.JobID, operationName); err != nil {
		o.logger.Warn().Err(err).Str("job_id", req.JobID).Msg("videogen: failed to persist operation handle")
	}

	artifactURI, attempts, err := o.poller.Await(ctx, req.JobID, operationName)
	if err != nil {
		o.compensator.Compensate(ctx, req, VideoGenerationCost, asClassified(err))
		return
	}

	url, err := o.materializer.Materialize(ctx, req.JobID, artifactURI)
	if err != nil {
		o.compensator.Compensate(ctx, req, VideoGenerationCost, asClassified(err))
		return
	}

	result := &domain.JobResult{
		URL:            url,
		Attempts:       attempts,
		ElapsedSeconds: time.Since(startedAt).Seconds(),
	}
	won, err := o.jobs.Complete(ctx, req.JobID, result)
	if err != nil {
		o.logger.Error().Err(err).Str("job_id", req.JobID).Msg("videogen: failed to record completion")
		return
	}
	if !won {
		o.logger.Warn().Str("job_id", req.JobID).Msg("videogen: job already terminal, completion not recorded")
		return
	}
	o.logger.Info().
		Str("job_id", req.JobID).
		Str("url", url).
		Int("attempts", attempts).
		Msg("videogen: job completed")
}

func validateRequest(req *domain.GenerationRequest) error {
	if req.OrganizationID == "" {
		return fmt.Errorf("%w: organization id is required", domain.ErrInvalidRequest)
	}
	switch req.Mode {
	case domain.ModeIdentityPreserving:
		ref := req.IdentityReference()
		if ref == nil || len(ref.Data) == 0 {
			return fmt.Errorf("%w: identity-preserving mode requires an inline identity reference", domain.ErrInvalidRequest)
		}
	case domain.ModeDescriptive:
		if strings.TrimSpace(req.Prompt) == "" {
			return fmt.Errorf("%w: descriptive mode requires prompt text", domain.ErrInvalidRequest)
		}
	default:
		return fmt.Errorf("%w: unsupported generation mode %q", domain.ErrInvalidRequest, req.Mode)
	}
	if req.DurationSeconds < 0 {
		return fmt.Errorf("%w: duration must not be negative", domain.ErrInvalidRequest)
	}
	return nil
}

func asClassified(err error) *ClassifiedError {
	var cerr *ClassifiedError
	if errors.As(err, &cerr) {
		return cerr
	}
	return classified(domain.ClassProviderServerError, err.Error())
}
