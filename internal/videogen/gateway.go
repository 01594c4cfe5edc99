package videogen

import (
	"context"
	"fmt"

	"github.com/lefilcompany/creator-leap-studio-sub000/internal/domain"
	"github.com/lefilcompany/creator-leap-studio-sub000/internal/providers/veo"
)

// Submitter starts a long-running generation and returns the operation handle
// used for polling.
type Submitter interface {
	Submit(ctx context.Context, req domain.GenerationRequest, composed Composed) (string, error)
}

type gatewayBackend interface {
	submit(ctx context.Context, req domain.GenerationRequest, composed Composed) (string, error)
}

// SubmissionGateway dispatches a composed request to the backend matching its
// generation mode.
type SubmissionGateway struct {
	backends map[domain.GenerationMode]gatewayBackend
}

// NewSubmissionGateway wires the two provider backends: image-seeded for
// identity-preserving generation, text-first for descriptive generation.
func NewSubmissionGateway(client *veo.Client) *SubmissionGateway {
	return &SubmissionGateway{
		backends: map[domain.GenerationMode]gatewayBackend{
			domain.ModeIdentityPreserving: &imageSeededBackend{client: client},
			domain.ModeDescriptive:        &textBackend{client: client},
		},
	}
}

func (g *SubmissionGateway) Submit(ctx context.Context, req domain.GenerationRequest, composed Composed) (string, error) {
	backend, ok := g.backends[req.Mode]
	if !ok {
		return "", fmt.Errorf("%w: unsupported generation mode %q", domain.ErrInvalidRequest, req.Mode)
	}
	return backend.submit(ctx, req, composed)
}

// imageSeededBackend sends the single driving reference inline with the
// animate instruction.
type imageSeededBackend struct {
	client *veo.Client
}

func (b *imageSeededBackend) submit(ctx context.Context, req domain.GenerationRequest, composed Composed) (string, error) {
	ref := req.IdentityReference()
	if ref == nil {
		return "", fmt.Errorf("%w: identity-preserving mode requires an identity reference", domain.ErrInvalidRequest)
	}
	return b.client.SubmitImageSeeded(ctx, veo.ImageSeededRequest{
		Instruction:     composed.Instruction,
		ImageBytes:      ref.Data,
		ImageMIME:       ref.MIME,
		DurationSeconds: composed.DurationSeconds,
		AspectRatio:     req.AspectRatio,
	})
}

// textBackend sends the layered instruction with up to three classified
// reference images.
type textBackend struct {
	client *veo.Client
}

func (b *textBackend) submit(ctx context.Context, req domain.GenerationRequest, composed Composed) (string, error) {
	refs := make([]veo.Reference, 0, len(req.References))
	for _, ref := range req.References {
		refs = append(refs, veo.Reference{
			Data: ref.Data,
			MIME: ref.MIME,
			URL:  ref.URL,
			Role: string(ref.Role),
		})
	}
	return b.client.SubmitText(ctx, veo.TextRequest{
		Instruction:     composed.Instruction,
		References:      refs,
		DurationSeconds: composed.DurationSeconds,
		AspectRatio:     req.AspectRatio,
		Resolution:      req.Resolution,
		NegativePrompt:  req.NegativePrompt,
	})
}

var _ Submitter = (*SubmissionGateway)(nil)
