package image

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/dmorgan81/imagebot/internal/log"
	"github.com/samber/do"
)

const contentTypeJSON = "application/json"

type ModelInvoker interface {
	InvokeModel(context.Context, *bedrockruntime.InvokeModelInput, ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

type BedrockGenerator struct {
	Client  ModelInvoker
	ModelID string
}

func NewBedrockGenerator(i *do.Injector) (Generator, error) {
	return &BedrockGenerator{
		Client:  do.MustInvoke[*bedrockruntime.Client](i),
		ModelID: do.MustInvokeNamed[string](i, "model_id"),
	}, nil
}

func (g *BedrockGenerator) Generate(ctx context.Context, params Params) (Result, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("bedrock").With("model", g.ModelID)
	log.Info("generating image",
		"aspect_ratio", params.AspectRatio,
		"output_format", params.OutputFormat,
	)

	body, err := json.Marshal(params)
	if err != nil {
		return Result{}, err
	}

	out, err := g.Client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(g.ModelID),
		ContentType: aws.String(contentTypeJSON),
		Accept:      aws.String(contentTypeJSON),
		Body:        body,
	})
	if err != nil {
		return Result{}, fmt.Errorf("invoking model %s: %w", g.ModelID, err)
	}

	result, err := ParseResponse(out.Body)
	if err != nil {
		return Result{}, err
	}
	log.Info("received image", "shape", result.Shape.String())
	return result, nil
}
