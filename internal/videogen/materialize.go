package videogen

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lefilcompany/creator-leap-studio-sub000/internal/domain"
	"github.com/lefilcompany/creator-leap-studio-sub000/internal/infra"
)

// Downloader fetches the finished artifact bytes from a provider locator.
type Downloader interface {
	Download(ctx context.Context, uri string) ([]byte, string, error)
}

// ArtifactStore persists artifact bytes and resolves public retrieval URLs.
type ArtifactStore interface {
	Write(ctx context.Context, key string, data []byte) (string, error)
	PublicURL(key string) string
}

// Materializer moves a finished artifact from provider-hosted storage into
// durable storage owned by the system. Failures here are post-acceptance:
// provider compute was already spent, so they are never refunded.
type Materializer struct {
	downloader Downloader
	store      ArtifactStore
	timeout    time.Duration
	logger     infra.Logger
}

func NewMaterializer(downloader Downloader, store ArtifactStore, timeout time.Duration, logger infra.Logger) *Materializer {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Materializer{downloader: downloader, store: store, timeout: timeout, logger: logger}
}

// Materialize downloads the artifact and persists it under a key derived from
// the job id plus a timestamped nonce, returning the stable public URL.
func (m *Materializer) Materialize(ctx context.Context, jobID, artifactURI string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	data, _, err := m.downloader.Download(ctx, artifactURI)
	if err != nil {
		return "", classified(domain.ClassMaterializeFailure, fmt.Sprintf("download artifact: %v", err))
	}
	if len(data) == 0 {
		return "", classified(domain.ClassMaterializeFailure, "artifact download returned no bytes")
	}

	key := artifactKey(jobID)
	savedKey, err := m.store.Write(ctx, key, data)
	if err != nil {
		return "", classified(domain.ClassMaterializeFailure, fmt.Sprintf("persist artifact: %v", err))
	}

	m.logger.Info().
		Str("job_id", jobID).
		Str("storage_key", savedKey).
		Int("bytes", len(data)).
		Msg("videogen: artifact materialized")

	return m.store.PublicURL(savedKey), nil
}

func artifactKey(jobID string) string {
	nonce := uuid.NewString()[:8]
	return fmt.Sprintf("generated/videos/%s/%d-%s.mp4", jobID, time.Now().Unix(), nonce)
}
