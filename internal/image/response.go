package image

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Shape identifies which of the provider's response layouts carried the image.
type Shape int

const (
	ShapeImages Shape = iota + 1
	ShapeArtifacts
)

func (s Shape) String() string {
	switch s {
	case ShapeImages:
		return "images"
	case ShapeArtifacts:
		return "artifacts"
	default:
		return "unknown"
	}
}

type Result struct {
	Shape   Shape
	Encoded string
}

func (r Result) Decode() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(r.Encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding %s image: %w", r.Shape, err)
	}
	return data, nil
}

// UnrecognizedResponseError is returned when a well-formed response holds
// no image in any known layout. Raw is the provider body, unchanged.
type UnrecognizedResponseError struct {
	Raw json.RawMessage
}

func (e *UnrecognizedResponseError) Error() string {
	return "no image in model response"
}

type artifact struct {
	Base64 string `json:"base64"`
}

type response struct {
	Images    []string   `json:"images"`
	Artifacts []artifact `json:"artifacts"`
}

// ParseResponse checks images[0] first and artifacts[0].base64 second.
func ParseResponse(body []byte) (Result, error) {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return Result{}, fmt.Errorf("parsing model response: %w", err)
	}

	if len(resp.Images) > 0 && resp.Images[0] != "" {
		return Result{Shape: ShapeImages, Encoded: resp.Images[0]}, nil
	}
	if len(resp.Artifacts) > 0 && resp.Artifacts[0].Base64 != "" {
		return Result{Shape: ShapeArtifacts, Encoded: resp.Artifacts[0].Base64}, nil
	}
	return Result{}, &UnrecognizedResponseError{Raw: json.RawMessage(body)}
}
