package veo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lefilcompany/creator-leap-studio-sub000/internal/infra"
)

// Options controls how the Veo client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	ImageModel string
	TextModel  string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client wraps the Veo long-running-operation API: submit a generation,
// poll the returned operation until done, download the finished artifact.
type Client struct {
	apiKey     string
	baseURL    string
	imageModel string
	textModel  string
	httpClient *http.Client
	logger     *infra.Logger
}

// Error is a non-2xx response from the provider. The status code is the input
// to downstream failure classification.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("veo status %d", e.StatusCode)
	}
	return fmt.Sprintf("veo status %d: %s", e.StatusCode, e.Message)
}

// ImageSeededRequest animates a single driving image.
type ImageSeededRequest struct {
	Instruction     string
	ImageBytes      []byte
	ImageMIME       string
	DurationSeconds int
	AspectRatio     string
}

// Reference is an auxiliary image for text-first generation.
type Reference struct {
	Data []byte
	MIME string
	URL  string
	Role string
}

// TextRequest generates from a composed instruction with optional references.
type TextRequest struct {
	Instruction     string
	References      []Reference
	DurationSeconds int
	AspectRatio     string
	Resolution      string
	NegativePrompt  string
}

// OperationStatus is one poll observation of a long-running operation.
type OperationStatus struct {
	Done         bool
	Cancelled    bool
	ErrMessage   string
	ResponseBody json.RawMessage
}

const maxTextReferences = 3

type veoImage struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded,omitempty"`
	GCSURI             string `json:"gcsUri,omitempty"`
	MimeType           string `json:"mimeType,omitempty"`
}

type veoReferenceImage struct {
	Image         veoImage `json:"image"`
	ReferenceType string   `json:"referenceType,omitempty"`
}

type veoInstance struct {
	Prompt          string              `json:"prompt"`
	Image           *veoImage           `json:"image,omitempty"`
	ReferenceImages []veoReferenceImage `json:"referenceImages,omitempty"`
}

type veoParameters struct {
	DurationSeconds int    `json:"durationSeconds,omitempty"`
	AspectRatio     string `json:"aspectRatio,omitempty"`
	Resolution      string `json:"resolution,omitempty"`
	NegativePrompt  string `json:"negativePrompt,omitempty"`
	SampleCount     int    `json:"sampleCount,omitempty"`
}

type veoPredictRequest struct {
	Instances  []veoInstance `json:"instances"`
	Parameters veoParameters `json:"parameters"`
}

type veoOperation struct {
	Name  string `json:"name"`
	Done  bool   `json:"done"`
	Error *struct {
		Code    int    `json:"code,omitempty"`
		Status  string `json:"status,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error,omitempty"`
	Response json.RawMessage `json:"response,omitempty"`
}

type veoErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// NewClient constructs a Veo client with sane defaults. Callers may provide a
// nil HTTP client; a reusable one with a bounded timeout will be created.
func NewClient(opts Options) (*Client, error) {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	imageModel := opts.ImageModel
	if imageModel == "" {
		imageModel = "veo-2.0-generate-001"
	}
	textModel := opts.TextModel
	if textModel == "" {
		textModel = "veo-3.0-generate-preview"
	}

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}

	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		imageModel: imageModel,
		textModel:  textModel,
		httpClient: client,
		logger:     logger,
	}, nil
}

// SubmitImageSeeded starts an identity-preserving generation and returns the
// operation name used for polling.
func (c *Client) SubmitImageSeeded(ctx context.Context, req ImageSeededRequest) (string, error) {
	instance := veoInstance{Prompt: req.Instruction}
	if len(req.ImageBytes) > 0 {
		instance.Image = &veoImage{
			BytesBase64Encoded: base64.StdEncoding.EncodeToString(req.ImageBytes),
			MimeType:           req.ImageMIME,
		}
	}
	payload := veoPredictRequest{
		Instances: []veoInstance{instance},
		Parameters: veoParameters{
			DurationSeconds: req.DurationSeconds,
			AspectRatio:     req.AspectRatio,
			SampleCount:     1,
		},
	}
	return c.submit(ctx, c.imageModel, payload)
}

// SubmitText starts a text-first generation and returns the operation name.
// At most three reference images are forwarded; extras are dropped.
func (c *Client) SubmitText(ctx context.Context, req TextRequest) (string, error) {
	instance := veoInstance{Prompt: req.Instruction}
	for _, ref := range req.References {
		if len(instance.ReferenceImages) >= maxTextReferences {
			break
		}
		img := veoImage{MimeType: ref.MIME}
		switch {
		case len(ref.Data) > 0:
			img.BytesBase64Encoded = base64.StdEncoding.EncodeToString(ref.Data)
		case ref.URL != "":
			img.GCSURI = ref.URL
		default:
			continue
		}
		instance.ReferenceImages = append(instance.ReferenceImages, veoReferenceImage{
			Image:         img,
			ReferenceType: strings.ToUpper(ref.Role),
		})
	}
	payload := veoPredictRequest{
		Instances: []veoInstance{instance},
		Parameters: veoParameters{
			DurationSeconds: req.DurationSeconds,
			AspectRatio:     req.AspectRatio,
			Resolution:      req.Resolution,
			NegativePrompt:  req.NegativePrompt,
			SampleCount:     1,
		},
	}
	return c.submit(ctx, c.textModel, payload)
}

func (c *Client) submit(ctx context.Context, model string, payload veoPredictRequest) (string, error) {
	var op veoOperation
	path := fmt.Sprintf("/models/%s:predictLongRunning", url.PathEscape(model))
	if err := c.invoke(ctx, http.MethodPost, path, payload, &op); err != nil {
		return "", err
	}
	if op.Name == "" {
		return "", &Error{StatusCode: http.StatusOK, Message: "operation name missing from submit response"}
	}
	c.logger.Debug().Str("model", model).Str("operation", op.Name).Msg("veo: submitted generation")
	return op.Name, nil
}

// PollOperation fetches the current state of an operation. Transport failures
// and non-2xx responses are returned as errors so the caller can decide to
// retry; API-level failure signals arrive inside the OperationStatus.
func (c *Client) PollOperation(ctx context.Context, operationName string) (OperationStatus, error) {
	var op veoOperation
	path := "/" + strings.TrimLeft(operationName, "/")
	if err := c.invoke(ctx, http.MethodGet, path, nil, &op); err != nil {
		return OperationStatus{}, err
	}
	status := OperationStatus{Done: op.Done, ResponseBody: op.Response}
	if op.Error != nil {
		// Code 1 is the canonical CANCELLED status of the operation API.
		if op.Error.Code == 1 || strings.EqualFold(op.Error.Status, "CANCELLED") {
			status.Cancelled = true
		}
		status.ErrMessage = op.Error.Message
		if status.ErrMessage == "" {
			status.ErrMessage = fmt.Sprintf("operation error code %d", op.Error.Code)
		}
	}
	return status, nil
}

// Download fetches the finished artifact bytes from the locator returned by a
// completed operation.
func (c *Client) Download(ctx context.Context, uri string) ([]byte, string, error) {
	target := uri
	if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") {
		target = c.baseURL + "/" + strings.TrimLeft(uri, "/")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create download request: %w", err)
	}
	if c.apiKey != "" {
		q := req.URL.Query()
		q.Set("key", c.apiKey)
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download artifact: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return nil, "", &Error{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}

	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read artifact: %w", err)
	}
	return blob, resp.Header.Get("Content-Type"), nil
}

func (c *Client) invoke(ctx context.Context, method, path string, payload, out any) error {
	endpoint := c.baseURL + path
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		q := req.URL.Query()
		q.Set("key", c.apiKey)
		req.URL.RawQuery = q.Encode()
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke veo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr veoErrorResponse
		data, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
			return &Error{StatusCode: resp.StatusCode, Message: apiErr.Error.Message}
		}
		return &Error{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode veo response: %w", err)
	}
	return nil
}
