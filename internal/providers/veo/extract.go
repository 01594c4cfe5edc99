package veo

import "encoding/json"

// The operation API is not uniform across model generations: the artifact
// locator has shipped under several response shapes. Extraction tries each
// known shape in order and returns the first match; callers treat "done but
// nothing extracted" as a terminal failure rather than an empty locator.

type videoRef struct {
	URI                string `json:"uri"`
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
}

type operationResponse struct {
	GenerateVideoResponse *struct {
		GeneratedSamples []struct {
			Video videoRef `json:"video"`
		} `json:"generatedSamples"`
	} `json:"generateVideoResponse"`
	GeneratedVideos []struct {
		Video videoRef `json:"video"`
	} `json:"generatedVideos"`
	Videos []videoRef `json:"videos"`
}

var artifactExtractors = []func(operationResponse) string{
	func(r operationResponse) string {
		if r.GenerateVideoResponse == nil {
			return ""
		}
		for _, sample := range r.GenerateVideoResponse.GeneratedSamples {
			if sample.Video.URI != "" {
				return sample.Video.URI
			}
		}
		return ""
	},
	func(r operationResponse) string {
		for _, v := range r.GeneratedVideos {
			if v.Video.URI != "" {
				return v.Video.URI
			}
		}
		return ""
	},
	func(r operationResponse) string {
		for _, v := range r.Videos {
			if v.URI != "" {
				return v.URI
			}
		}
		return ""
	},
}

// ExtractArtifactURI probes the known response shapes for the artifact
// locator of a completed operation.
func ExtractArtifactURI(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var resp operationResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", false
	}
	for _, extract := range artifactExtractors {
		if uri := extract(resp); uri != "" {
			return uri, true
		}
	}
	return "", false
}
