package handler

import (
	"fmt"
	"net/http"
	"strings"
)

const (
	DefaultAspectRatio  = "1:1"
	DefaultOutputFormat = "png"
)

// Event is a raw invocation payload. Direct invocations put parameters at
// the top level; API Gateway proxy events carry them in queryStringParameters.
type Event map[string]any

type GenerationRequest struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt"`
	AspectRatio    string `json:"aspect_ratio"`
	OutputFormat   string `json:"output_format"`
}

func (e Event) Preflight() bool {
	method, _ := e["httpMethod"].(string)
	return method == http.MethodOptions
}

func (e Event) Request() GenerationRequest {
	return GenerationRequest{
		Prompt:         e.param("prompt", ""),
		NegativePrompt: e.param("negative_prompt", ""),
		AspectRatio:    e.param("aspect_ratio", DefaultAspectRatio),
		OutputFormat:   e.param("output_format", DefaultOutputFormat),
	}
}

func (e Event) param(name, fallback string) string {
	if v, ok := e[name]; ok && v != nil {
		return strings.TrimSpace(stringify(v))
	}
	if query, ok := e["queryStringParameters"].(map[string]any); ok {
		if v, ok := query[name]; ok && v != nil {
			return strings.TrimSpace(stringify(v))
		}
	}
	return fallback
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
