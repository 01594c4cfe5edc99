package videogen

import (
	"fmt"
	"strings"

	"github.com/lefilcompany/creator-leap-studio-sub000/internal/domain"
	"github.com/lefilcompany/creator-leap-studio-sub000/internal/infra"
)

// maxProviderDurationSeconds is the longest clip the provider renders in one
// operation. Longer requests are clamped, not rejected.
const maxProviderDurationSeconds = 8

const defaultDurationSeconds = 5

var styleDirectives = map[domain.VisualStyle]string{
	domain.VisualStyleCinematic:      "Visual style: cinematic film look, shallow depth of field, natural color grading.",
	domain.VisualStylePhotorealistic: "Visual style: photorealistic, true-to-life lighting and textures, no stylization.",
	domain.VisualStyle3DAnimation:    "Visual style: polished 3D animation, soft global illumination, smooth character motion.",
	domain.VisualStyleAnime:          "Visual style: 2D anime, clean line art, expressive cel shading.",
	domain.VisualStyleWatercolor:     "Visual style: hand-painted watercolor, soft washes, visible paper texture.",
	domain.VisualStyleNeon:           "Visual style: neon-lit night scene, saturated glow, high contrast.",
}

const standardExclusions = "Exclude watermarks, logos, frame borders, and visual artifacts."

// Composed is the provider-ready translation of a generation request.
type Composed struct {
	Instruction     string
	DurationSeconds int
}

// Composer translates generic generation requests into provider instruction
// text. Composition never fails: unknown styles fall back to the default
// directive and out-of-range durations are clamped.
type Composer struct {
	logger infra.Logger
}

func NewComposer(logger infra.Logger) *Composer {
	return &Composer{logger: logger}
}

// Compose builds the instruction for the request's mode and returns it with
// the effective clip duration.
func (c *Composer) Compose(req domain.GenerationRequest) Composed {
	var instruction string
	switch req.Mode {
	case domain.ModeIdentityPreserving:
		instruction = composeIdentityPreserving(req)
	default:
		instruction = composeDescriptive(req)
	}
	return Composed{
		Instruction:     instruction,
		DurationSeconds: c.clampDuration(req),
	}
}

func (c *Composer) clampDuration(req domain.GenerationRequest) int {
	duration := req.DurationSeconds
	if duration <= 0 {
		return defaultDurationSeconds
	}
	if duration > maxProviderDurationSeconds {
		c.logger.Warn().
			Str("job_id", req.JobID).
			Int("requested", duration).
			Int("clamped", maxProviderDurationSeconds).
			Msg("videogen: duration exceeds provider maximum, clamping")
		return maxProviderDurationSeconds
	}
	return duration
}

// composeIdentityPreserving emits strict replicate-and-animate instructions
// around a single driving reference asset.
func composeIdentityPreserving(req domain.GenerationRequest) string {
	parts := []string{
		"Replicate the reference image exactly as provided.",
		"Animate only: introduce natural, subtle motion to the existing subject and scene.",
		"Do not introduce new elements, characters, objects, scenery, or camera angles that are not in the reference.",
	}
	if prompt := strings.TrimSpace(req.Prompt); prompt != "" {
		parts = append(parts, "Motion direction: "+prompt+".")
	}
	parts = append(parts, exclusionClause(req.NegativePrompt))
	return strings.Join(parts, " ")
}

// composeDescriptive emits the layered text-first prompt: primary directive,
// identity lock, style inspiration, context, style directive, text-overlay
// clause and trailing exclusions.
func composeDescriptive(req domain.GenerationRequest) string {
	parts := []string{}
	if prompt := strings.TrimSpace(req.Prompt); prompt != "" {
		parts = append(parts, "Create a video: "+prompt+".")
	} else {
		parts = append(parts, "Create a short promotional video.")
	}
	if req.IdentityReference() != nil {
		parts = append(parts, "Match the exact visual identity of the primary reference image: same subject, colors, and distinguishing features.")
	}
	if len(req.StyleReferences()) > 0 {
		parts = append(parts, "Draw stylistic inspiration from the secondary reference images without copying their subjects.")
	}
	if ctx := contextClause(req); ctx != "" {
		parts = append(parts, ctx)
	}
	parts = append(parts, styleDirective(req.Style))
	parts = append(parts, textOverlayClause(req.TextOverlay))
	parts = append(parts, exclusionClause(req.NegativePrompt))
	return strings.Join(parts, " ")
}

func contextClause(req domain.GenerationRequest) string {
	var fields []string
	if brand := strings.TrimSpace(req.Brand); brand != "" {
		fields = append(fields, "brand "+brand)
	}
	if theme := strings.TrimSpace(req.Theme); theme != "" {
		fields = append(fields, "theme "+theme)
	}
	if audience := strings.TrimSpace(req.Audience); audience != "" {
		fields = append(fields, "audience "+audience)
	}
	if len(fields) == 0 {
		return ""
	}
	return "Context: " + strings.Join(fields, "; ") + "."
}

func styleDirective(style domain.VisualStyle) string {
	if directive, ok := styleDirectives[style]; ok {
		return directive
	}
	return styleDirectives[domain.VisualStyleCinematic]
}

func textOverlayClause(overlay *domain.TextOverlay) string {
	if overlay == nil || strings.TrimSpace(overlay.Content) == "" {
		return "The video must contain zero text, lettering, or characters of any kind."
	}
	position := strings.TrimSpace(overlay.Position)
	if position == "" {
		position = "center"
	}
	return fmt.Sprintf("Display exactly this text: %q positioned at the %s of the frame. Render no other text.", overlay.Content, position)
}

func exclusionClause(negativePrompt string) string {
	if negative := strings.TrimSpace(negativePrompt); negative != "" {
		return "Avoid: " + negative + ". " + standardExclusions
	}
	return standardExclusions
}
