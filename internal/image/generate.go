package image

import "context"

const (
	ModeTextToImage = "text-to-image"
	DefaultSeed     = 0
)

// Params is the text-to-image payload sent to the model as-is. Aspect
// ratio and output format are not checked here; the model rejects what it
// does not understand.
type Params struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt"`
	Mode           string `json:"mode"`
	Seed           int    `json:"seed"`
	OutputFormat   string `json:"output_format"`
	AspectRatio    string `json:"aspect_ratio"`
}

func NewParams(prompt, negativePrompt, aspectRatio, outputFormat string) Params {
	return Params{
		Prompt:         prompt,
		NegativePrompt: negativePrompt,
		Mode:           ModeTextToImage,
		Seed:           DefaultSeed,
		OutputFormat:   outputFormat,
		AspectRatio:    aspectRatio,
	}
}

type Generator interface {
	Generate(context.Context, Params) (Result, error)
}
