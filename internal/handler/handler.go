package handler

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/dmorgan81/imagebot/internal/config"
	"github.com/dmorgan81/imagebot/internal/image"
	"github.com/dmorgan81/imagebot/internal/log"
	"github.com/dmorgan81/imagebot/internal/store"
	"github.com/samber/do"
)

type Handler struct {
	generator image.Generator
	uploader  store.Uploader
	presigner store.Presigner
	config    config.Config
	now       func() time.Time
}

func New(config config.Config, generator image.Generator, uploader store.Uploader, presigner store.Presigner) *Handler {
	return &Handler{
		generator: generator,
		uploader:  uploader,
		presigner: presigner,
		config:    config,
		now:       time.Now,
	}
}

func NewHandler(i *do.Injector) (*Handler, error) {
	return New(
		do.MustInvoke[config.Config](i),
		do.MustInvoke[image.Generator](i),
		do.MustInvoke[store.Uploader](i),
		do.MustInvoke[store.Presigner](i),
	), nil
}

// Handle runs parse, generate, decode, store, sign in order and stops at the
// first failure. Backend failures are returned as the invocation error.
func (h *Handler) Handle(ctx context.Context, event Event) (events.APIGatewayProxyResponse, error) {
	if event.Preflight() {
		return preflight()
	}

	input := event.Request()
	log := log.FromContextOrDiscard(ctx).WithGroup("Handler").With("input", input)
	log.Info("handling lambda invocation")

	if input.Prompt == "" {
		log.Warn("rejecting request without prompt")
		return missingPrompt()
	}

	result, err := h.generator.Generate(ctx, image.NewParams(
		input.Prompt, input.NegativePrompt, input.AspectRatio, input.OutputFormat,
	))
	var unrecognized *image.UnrecognizedResponseError
	if errors.As(err, &unrecognized) {
		log.Error("model returned no image", "raw", string(unrecognized.Raw))
		return noImage(unrecognized.Raw)
	}
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	data, err := result.Decode()
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	key := store.NewKey(h.config.KeyPrefix, input.OutputFormat, h.now())
	if err := h.uploader.Upload(ctx, store.UploadParams{
		Key:         key,
		Data:        data,
		ContentType: store.ContentType(input.OutputFormat),
	}); err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	url, err := h.presigner.Presign(ctx, key, h.config.Expiry())
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	log.Info("stored image",
		"key", key,
		"object_url", store.ObjectURL(h.config.Bucket, h.config.S3Region, key),
		"signed", strings.Contains(url, "X-Amz-Algorithm="),
	)
	log.Debug("presigned url", "url", url)

	return success(url)
}
