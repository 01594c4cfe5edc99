package videogen

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lefilcompany/creator-leap-studio-sub000/internal/domain"
	"github.com/lefilcompany/creator-leap-studio-sub000/internal/providers/veo"
)

// ---- in-memory collaborators shared by the videogen tests ----

type memJobs struct {
	mu   sync.Mutex
	jobs map[string]*domain.JobRecord
}

func newMemJobs() *memJobs {
	return &memJobs{jobs: map[string]*domain.JobRecord{}}
}

func (m *memJobs) Create(ctx context.Context, job *domain.JobRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[job.ID]; ok {
		return domain.ErrDuplicateJob
	}
	cp := *job
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	m.jobs[job.ID] = &cp
	return nil
}

func (m *memJobs) GetByID(ctx context.Context, jobID string) (*domain.JobRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (m *memJobs) AttachOperation(ctx context.Context, jobID, operationName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return domain.ErrNotFound
	}
	job.OperationName = operationName
	return nil
}

func (m *memJobs) finish(jobID string, status domain.JobStatus, result *domain.JobResult) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if job.Status != domain.JobStatusProcessing {
		return false, nil
	}
	job.Status = status
	job.Result = result
	job.UpdatedAt = time.Now()
	return true, nil
}

func (m *memJobs) Complete(ctx context.Context, jobID string, result *domain.JobResult) (bool, error) {
	return m.finish(jobID, domain.JobStatusCompleted, result)
}

func (m *memJobs) Fail(ctx context.Context, jobID string, result *domain.JobResult) (bool, error) {
	return m.finish(jobID, domain.JobStatusFailed, result)
}

type memLedger struct {
	mu       sync.Mutex
	balances map[string]int64
	entries  []domain.LedgerEntry
	refunded map[string]bool
}

func newMemLedger(orgID string, balance int64) *memLedger {
	return &memLedger{
		balances: map[string]int64{orgID: balance},
		refunded: map[string]bool{},
	}
}

func (m *memLedger) Reserve(ctx context.Context, orgID string, units int64, jobID string) (domain.BalanceSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := m.balances[orgID]
	if before < units {
		return domain.BalanceSnapshot{}, &domain.InsufficientCreditsError{Required: units, Available: before}
	}
	after := before - units
	m.balances[orgID] = after
	m.entries = append(m.entries, domain.LedgerEntry{
		OrganizationID: orgID,
		ActionType:     domain.LedgerActionVideoGeneration,
		UnitsUsed:      units,
		BalanceBefore:  before,
		BalanceAfter:   after,
		JobID:          jobID,
	})
	return domain.BalanceSnapshot{Before: before, After: after}, nil
}

func (m *memLedger) Refund(ctx context.Context, orgID string, units int64, jobID, reason string) (domain.BalanceSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.refunded[jobID] {
		return domain.BalanceSnapshot{}, domain.ErrRefundAlreadyIssued
	}
	before := m.balances[orgID]
	after := before + units
	m.balances[orgID] = after
	m.refunded[jobID] = true
	m.entries = append(m.entries, domain.LedgerEntry{
		OrganizationID: orgID,
		ActionType:     domain.LedgerActionVideoGenerationRefund,
		UnitsUsed:      -units,
		BalanceBefore:  before,
		BalanceAfter:   after,
		Description:    reason,
		JobID:          jobID,
	})
	return domain.BalanceSnapshot{Before: before, After: after}, nil
}

func (m *memLedger) Balance(ctx context.Context, orgID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[orgID], nil
}

func (m *memLedger) entryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

type stubSubmitter struct {
	mu        sync.Mutex
	operation string
	err       error
	calls     int
}

func (s *stubSubmitter) Submit(ctx context.Context, req domain.GenerationRequest, composed Composed) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.operation, nil
}

func (s *stubSubmitter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type scriptedOps struct {
	mu       sync.Mutex
	statuses []veo.OperationStatus
	errs     []error
	calls    int
}

func (s *scriptedOps) PollOperation(ctx context.Context, operationName string) (veo.OperationStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return veo.OperationStatus{}, s.errs[i]
	}
	if i < len(s.statuses) {
		return s.statuses[i], nil
	}
	if len(s.statuses) > 0 {
		return s.statuses[len(s.statuses)-1], nil
	}
	return veo.OperationStatus{}, nil
}

func (s *scriptedOps) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubDownloader struct {
	data []byte
	err  error
}

func (s *stubDownloader) Download(ctx context.Context, uri string) ([]byte, string, error) {
	if s.err != nil {
		return nil, "", s.err
	}
	return s.data, "video/mp4", nil
}

type memStore struct {
	mu     sync.Mutex
	writes map[string][]byte
	err    error
}

func newMemStore() *memStore {
	return &memStore{writes: map[string][]byte{}}
}

func (m *memStore) Write(ctx context.Context, key string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes[key] = data
	return key, nil
}

func (m *memStore) PublicURL(key string) string {
	return "http://cdn.local/" + key
}

func doneStatus(uri string) veo.OperationStatus {
	body, _ := json.Marshal(map[string]any{
		"generateVideoResponse": map[string]any{
			"generatedSamples": []map[string]any{
				{"video": map[string]any{"uri": uri}},
			},
		},
	})
	return veo.OperationStatus{Done: true, ResponseBody: json.RawMessage(body)}
}

type orchestratorFixture struct {
	orch   *Orchestrator
	jobs   *memJobs
	ledger *memLedger
	sup    *Supervisor
	ops    *scriptedOps
	submit *stubSubmitter
	store  *memStore
}

func newOrchestratorFixture(t *testing.T, orgID string, balance int64, submit *stubSubmitter, ops *scriptedOps, dl *stubDownloader) *orchestratorFixture {
	t.Helper()
	logger := zerolog.New(io.Discard)
	jobs := newMemJobs()
	ledger := newMemLedger(orgID, balance)
	store := newMemStore()
	sup := NewSupervisor(logger)
	t.Cleanup(sup.Cancel)
	orch := NewOrchestrator(Options{
		Jobs:         jobs,
		Ledger:       ledger,
		Composer:     NewComposer(logger),
		Gateway:      submit,
		Poller:       NewPoller(ops, time.Millisecond, 60, logger),
		Materializer: NewMaterializer(dl, store, time.Second, logger),
		Compensator:  NewCompensator(jobs, ledger, logger),
		Supervisor:   sup,
		Logger:       logger,
	})
	return &orchestratorFixture{orch: orch, jobs: jobs, ledger: ledger, sup: sup, ops: ops, submit: submit, store: store}
}

func (f *orchestratorFixture) waitSettled(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := f.sup.Wait(ctx); err != nil {
		t.Fatalf("background task did not settle: %v", err)
	}
}

func descriptiveRequest(orgID string) domain.GenerationRequest {
	return domain.GenerationRequest{
		OrganizationID:  orgID,
		RequesterID:     "user-1",
		Mode:            domain.ModeDescriptive,
		Prompt:          "a barista pouring latte art in slow motion",
		Style:           domain.VisualStyleCinematic,
		DurationSeconds: 8,
	}
}

// ---- tests ----

func TestSubmitHappyPath(t *testing.T) {
	submit := &stubSubmitter{operation: "operations/op-123"}
	ops := &scriptedOps{statuses: []veo.OperationStatus{
		{},
		doneStatus("https://provider.example/files/video.mp4"),
	}}
	dl := &stubDownloader{data: []byte("mp4-bytes")}
	f := newOrchestratorFixture(t, "org-1", 100, submit, ops, dl)

	resp, err := f.orch.Submit(context.Background(), descriptiveRequest("org-1"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if resp.Status != domain.JobStatusProcessing {
		t.Fatalf("status = %s, want PROCESSING", resp.Status)
	}
	f.waitSettled(t)

	job, err := f.jobs.GetByID(context.Background(), resp.JobID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if job.Status != domain.JobStatusCompleted {
		t.Fatalf("job status = %s, want COMPLETED", job.Status)
	}
	if job.Result == nil || job.Result.URL == "" {
		t.Fatalf("completed job has no result URL: %+v", job.Result)
	}
	if job.Result.Attempts != 2 {
		t.Fatalf("attempts = %d, want 2", job.Result.Attempts)
	}
	if job.OperationName != "operations/op-123" {
		t.Fatalf("operation name = %q", job.OperationName)
	}

	balance, _ := f.ledger.Balance(context.Background(), "org-1")
	if balance != 80 {
		t.Fatalf("balance = %d, want 80 after flat 20-credit debit", balance)
	}
	if n := f.ledger.entryCount(); n != 1 {
		t.Fatalf("ledger entries = %d, want exactly one debit", n)
	}
	if e := f.ledger.entries[0]; e.UnitsUsed != 20 || e.JobID != resp.JobID {
		t.Fatalf("debit entry = %+v", e)
	}
}

func TestSubmitInsufficientCredits(t *testing.T) {
	submit := &stubSubmitter{operation: "operations/op-1"}
	f := newOrchestratorFixture(t, "org-1", 5, submit, &scriptedOps{}, &stubDownloader{})

	_, err := f.orch.Submit(context.Background(), descriptiveRequest("org-1"))
	var insufficient *domain.InsufficientCreditsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("err = %v, want InsufficientCreditsError", err)
	}
	if insufficient.Required != 20 || insufficient.Available != 5 {
		t.Fatalf("insufficient = %+v", insufficient)
	}
	if n := f.ledger.entryCount(); n != 0 {
		t.Fatalf("ledger entries = %d, want none", n)
	}
	if submit.callCount() != 0 {
		t.Fatalf("provider was called despite rejected reservation")
	}
	f.waitSettled(t)
	if len(f.jobs.jobs) != 0 {
		t.Fatalf("job record created despite rejected reservation")
	}
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name string
		req  domain.GenerationRequest
	}{
		{"missing org", domain.GenerationRequest{Mode: domain.ModeDescriptive, Prompt: "x"}},
		{"descriptive without prompt", domain.GenerationRequest{OrganizationID: "org-1", Mode: domain.ModeDescriptive, Prompt: "   "}},
		{"identity without reference", domain.GenerationRequest{OrganizationID: "org-1", Mode: domain.ModeIdentityPreserving}},
		{"unknown mode", domain.GenerationRequest{OrganizationID: "org-1", Mode: "FREESTYLE", Prompt: "x"}},
		{"negative duration", func() domain.GenerationRequest {
			r := descriptiveRequest("org-1")
			r.DurationSeconds = -1
			return r
		}()},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newOrchestratorFixture(t, "org-1", 100, &stubSubmitter{}, &scriptedOps{}, &stubDownloader{})
			_, err := f.orch.Submit(context.Background(), tc.req)
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Fatalf("err = %v, want ErrInvalidRequest", err)
			}
			if n := f.ledger.entryCount(); n != 0 {
				t.Fatalf("ledger entries = %d, want none", n)
			}
		})
	}
}

func TestSubmitDuplicateJobID(t *testing.T) {
	submit := &stubSubmitter{operation: "operations/op-1"}
	ops := &scriptedOps{statuses: []veo.OperationStatus{doneStatus("https://provider.example/v.mp4")}}
	f := newOrchestratorFixture(t, "org-1", 100, submit, ops, &stubDownloader{data: []byte("x")})

	req := descriptiveRequest("org-1")
	req.JobID = "job-dup"
	if _, err := f.orch.Submit(context.Background(), req); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := f.orch.Submit(context.Background(), req); !errors.Is(err, domain.ErrDuplicateJob) {
		t.Fatalf("second submit err = %v, want ErrDuplicateJob", err)
	}
	f.waitSettled(t)
	if n := f.ledger.entryCount(); n != 1 {
		t.Fatalf("ledger entries = %d, want one debit for the accepted submission", n)
	}
}

func TestSubmitRateLimitedRefundsAndFails(t *testing.T) {
	submit := &stubSubmitter{err: &veo.Error{StatusCode: 429, Message: "quota exhausted"}}
	f := newOrchestratorFixture(t, "org-1", 100, submit, &scriptedOps{}, &stubDownloader{})

	resp, err := f.orch.Submit(context.Background(), descriptiveRequest("org-1"))
	if err != nil {
		t.Fatalf("submit must accept before the provider call: %v", err)
	}
	f.waitSettled(t)

	job, err := f.jobs.GetByID(context.Background(), resp.JobID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if job.Status != domain.JobStatusFailed {
		t.Fatalf("job status = %s, want FAILED", job.Status)
	}
	if job.Result.Classification != domain.ClassRateLimited {
		t.Fatalf("classification = %s, want RATE_LIMITED", job.Result.Classification)
	}
	if !job.Result.Refunded {
		t.Fatalf("rate-limited failure must be refunded")
	}

	balance, _ := f.ledger.Balance(context.Background(), "org-1")
	if balance != 100 {
		t.Fatalf("balance = %d, want 100 after refund", balance)
	}
	if n := f.ledger.entryCount(); n != 2 {
		t.Fatalf("ledger entries = %d, want debit plus refund", n)
	}
	if e := f.ledger.entries[1]; e.UnitsUsed != -20 {
		t.Fatalf("refund entry units = %d, want -20", e.UnitsUsed)
	}
}

func TestSubmitMaterializeFailureKeepsDebit(t *testing.T) {
	submit := &stubSubmitter{operation: "operations/op-1"}
	ops := &scriptedOps{statuses: []veo.OperationStatus{doneStatus("https://provider.example/v.mp4")}}
	dl := &stubDownloader{err: errors.New("connection reset")}
	f := newOrchestratorFixture(t, "org-1", 100, submit, ops, dl)

	resp, err := f.orch.Submit(context.Background(), descriptiveRequest("org-1"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	f.waitSettled(t)

	job, _ := f.jobs.GetByID(context.Background(), resp.JobID)
	if job.Status != domain.JobStatusFailed {
		t.Fatalf("job status = %s, want FAILED", job.Status)
	}
	if job.Result.Classification != domain.ClassMaterializeFailure {
		t.Fatalf("classification = %s, want MATERIALIZE_FAILURE", job.Result.Classification)
	}
	if job.Result.Refunded {
		t.Fatalf("post-acceptance failure must not be refunded")
	}
	balance, _ := f.ledger.Balance(context.Background(), "org-1")
	if balance != 80 {
		t.Fatalf("balance = %d, want 80, credits stay spent", balance)
	}
}

func TestSubmitGenerationFailedNoRefund(t *testing.T) {
	submit := &stubSubmitter{operation: "operations/op-1"}
	ops := &scriptedOps{statuses: []veo.OperationStatus{
		{Done: true, ErrMessage: "content policy violation"},
	}}
	f := newOrchestratorFixture(t, "org-1", 100, submit, ops, &stubDownloader{})

	resp, err := f.orch.Submit(context.Background(), descriptiveRequest("org-1"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	f.waitSettled(t)

	job, _ := f.jobs.GetByID(context.Background(), resp.JobID)
	if job.Status != domain.JobStatusFailed {
		t.Fatalf("job status = %s, want FAILED", job.Status)
	}
	if job.Result.Classification != domain.ClassGenerationFailed {
		t.Fatalf("classification = %s", job.Result.Classification)
	}
	if job.Result.Refunded {
		t.Fatalf("generation failure is post-acceptance, no refund")
	}
	balance, _ := f.ledger.Balance(context.Background(), "org-1")
	if balance != 80 {
		t.Fatalf("balance = %d, want 80", balance)
	}
}

func TestJobTakesExactlyOneTerminalTransition(t *testing.T) {
	jobs := newMemJobs()
	job := &domain.JobRecord{ID: "job-1", OrganizationID: "org-1", Status: domain.JobStatusProcessing}
	if err := jobs.Create(context.Background(), job); err != nil {
		t.Fatalf("create: %v", err)
	}

	won, err := jobs.Complete(context.Background(), "job-1", &domain.JobResult{URL: "http://x/v.mp4"})
	if err != nil || !won {
		t.Fatalf("first terminal write: won=%v err=%v", won, err)
	}
	won, err = jobs.Fail(context.Background(), "job-1", &domain.JobResult{Error: "late failure"})
	if err != nil {
		t.Fatalf("second terminal write errored: %v", err)
	}
	if won {
		t.Fatalf("second terminal write must lose")
	}

	got, _ := jobs.GetByID(context.Background(), "job-1")
	if got.Status != domain.JobStatusCompleted || got.Result.URL == "" {
		t.Fatalf("terminal state overwritten: %+v", got)
	}
}
