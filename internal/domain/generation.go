package domain

// GenerationMode selects the prompt composition and provider strategy.
type GenerationMode string

const (
	// ModeIdentityPreserving animates a single driving reference asset
	// without introducing new visual elements.
	ModeIdentityPreserving GenerationMode = "IDENTITY_PRESERVING"
	// ModeDescriptive generates from text first, with optional reference
	// assets for identity lock and style inspiration.
	ModeDescriptive GenerationMode = "DESCRIPTIVE"
)

// ReferenceRole classifies how a reference asset is used during composition.
type ReferenceRole string

const (
	ReferenceRoleIdentity ReferenceRole = "identity"
	ReferenceRoleStyle    ReferenceRole = "style"
)

// ReferenceAsset is an input image for the generation. Data carries raw bytes
// when the caller uploaded inline content; URL points at an already hosted
// asset otherwise.
type ReferenceAsset struct {
	Role ReferenceRole `json:"role"`
	URL  string        `json:"url,omitempty"`
	Data []byte        `json:"data,omitempty"`
	MIME string        `json:"mime,omitempty"`
}

// VisualStyle is the closed set of style directives the composer understands.
// Unknown values fall back to VisualStyleCinematic.
type VisualStyle string

const (
	VisualStyleCinematic      VisualStyle = "cinematic"
	VisualStylePhotorealistic VisualStyle = "photorealistic"
	VisualStyle3DAnimation    VisualStyle = "3d_animation"
	VisualStyleAnime          VisualStyle = "anime"
	VisualStyleWatercolor     VisualStyle = "watercolor"
	VisualStyleNeon           VisualStyle = "neon"
)

// TextOverlay requests literal on-screen text at a fixed position.
type TextOverlay struct {
	Content  string `json:"content"`
	Position string `json:"position"`
}

// GenerationRequest carries the caller-facing parameters of one video job.
type GenerationRequest struct {
	JobID           string           `json:"job_id"`
	OrganizationID  string           `json:"organization_id"`
	RequesterID     string           `json:"requester_id"`
	Mode            GenerationMode   `json:"mode"`
	Prompt          string           `json:"prompt"`
	References      []ReferenceAsset `json:"references,omitempty"`
	Style           VisualStyle      `json:"style,omitempty"`
	AspectRatio     string           `json:"aspect_ratio,omitempty"`
	Resolution      string           `json:"resolution,omitempty"`
	DurationSeconds int              `json:"duration_seconds,omitempty"`
	TextOverlay     *TextOverlay     `json:"text_overlay,omitempty"`
	NegativePrompt  string           `json:"negative_prompt,omitempty"`
	Brand           string           `json:"brand,omitempty"`
	Theme           string           `json:"theme,omitempty"`
	Audience        string           `json:"audience,omitempty"`
	// Locale selects the language of human-readable failure messages.
	Locale string `json:"locale,omitempty"`
}

// IdentityReference returns the first identity-tagged reference, or nil.
func (r GenerationRequest) IdentityReference() *ReferenceAsset {
	for i := range r.References {
		if r.References[i].Role == ReferenceRoleIdentity {
			return &r.References[i]
		}
	}
	return nil
}

// StyleReferences returns every style-tagged reference in request order.
func (r GenerationRequest) StyleReferences() []ReferenceAsset {
	var out []ReferenceAsset
	for _, ref := range r.References {
		if ref.Role == ReferenceRoleStyle {
			out = append(out, ref)
		}
	}
	return out
}
