package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmorgan81/imagebot/internal/config"
	"github.com/dmorgan81/imagebot/internal/image"
	"github.com/dmorgan81/imagebot/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type fakeGenerator struct {
	body  string
	err   error
	calls []image.Params
	mu    sync.Mutex
}

func (g *fakeGenerator) Generate(_ context.Context, params image.Params) (image.Result, error) {
	g.mu.Lock()
	g.calls = append(g.calls, params)
	g.mu.Unlock()
	if g.err != nil {
		return image.Result{}, g.err
	}
	return image.ParseResponse([]byte(g.body))
}

type fakeUploader struct {
	err     error
	uploads []store.UploadParams
	mu      sync.Mutex
}

func (u *fakeUploader) Upload(_ context.Context, params store.UploadParams) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.uploads = append(u.uploads, params)
	return u.err
}

func testConfig() config.Config {
	return config.Config{
		ModelID:    "stability.sd3-5-large-v1:0",
		Bucket:     "images",
		KeyPrefix:  "generated",
		URLExpires: 3600,
		S3Region:   "us-east-2",
	}
}

func testPresigner() store.Presigner {
	client := s3.New(s3.Options{
		Region:      "us-east-2",
		Credentials: credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
	})
	return &store.S3Presigner{Client: s3.NewPresignClient(client), Bucket: "images"}
}

func newTestHandler(g *fakeGenerator, u *fakeUploader) *Handler {
	h := New(testConfig(), g, u, testPresigner())
	h.now = func() time.Time { return time.Date(2024, 3, 9, 19, 5, 7, 0, time.UTC) }
	return h
}

func decodeBody(t *testing.T, resp events.APIGatewayProxyResponse) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	return body
}

func assertHeaders(t *testing.T, resp events.APIGatewayProxyResponse) {
	t.Helper()
	assert.Equal(t, map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type",
		"Access-Control-Allow-Methods": "GET,OPTIONS",
	}, resp.Headers)
}

func TestHandlePreflight(t *testing.T) {
	g, u := &fakeGenerator{}, &fakeUploader{}
	h := newTestHandler(g, u)

	resp, err := h.Handle(context.Background(), Event{
		"httpMethod":            "OPTIONS",
		"queryStringParameters": map[string]any{"prompt": "a cat"},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok": true}`, resp.Body)
	assertHeaders(t, resp)
	assert.Empty(t, g.calls)
	assert.Empty(t, u.uploads)
}

func TestHandleMissingPrompt(t *testing.T) {
	cases := []Event{
		{},
		{"prompt": ""},
		{"prompt": "   \t\n"},
		{"httpMethod": "GET", "queryStringParameters": map[string]any{"prompt": "  "}},
		{"httpMethod": "GET", "queryStringParameters": nil},
	}
	for _, event := range cases {
		g, u := &fakeGenerator{}, &fakeUploader{}
		h := newTestHandler(g, u)

		resp, err := h.Handle(context.Background(), event)
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.JSONEq(t, `{"error": "Missing required parameter: prompt"}`, resp.Body)
		assertHeaders(t, resp)
		assert.Empty(t, g.calls)
		assert.Empty(t, u.uploads)
	}
}

func TestHandleSuccess(t *testing.T) {
	bodies := map[string]string{
		"images":    `{"images": ["QUJD"]}`,
		"artifacts": `{"artifacts": [{"base64": "QUJD"}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			g, u := &fakeGenerator{body: body}, &fakeUploader{}
			h := newTestHandler(g, u)

			resp, err := h.Handle(context.Background(), Event{"prompt": " a cat "})
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assertHeaders(t, resp)

			require.Len(t, g.calls, 1)
			assert.Equal(t, image.Params{
				Prompt:       "a cat",
				Mode:         "text-to-image",
				Seed:         0,
				OutputFormat: "png",
				AspectRatio:  "1:1",
			}, g.calls[0])

			require.Len(t, u.uploads, 1)
			upload := u.uploads[0]
			assert.Equal(t, []byte("ABC"), upload.Data)
			assert.Equal(t, "image/png", upload.ContentType)
			assert.Regexp(t, regexp.MustCompile(`^generated/20240309T190507Z-[0-9a-f]{32}\.png$`), upload.Key)

			respBody := decodeBody(t, resp)
			require.Len(t, respBody, 1)
			signed, ok := respBody["presigned_url"].(string)
			require.True(t, ok)

			parsed, err := url.Parse(signed)
			require.NoError(t, err)
			assert.Contains(t, parsed.Path, upload.Key)
			assert.NotEmpty(t, parsed.Query().Get("X-Amz-Signature"))
			assert.Equal(t, "3600", parsed.Query().Get("X-Amz-Expires"))
		})
	}
}

func TestHandleOutputFormat(t *testing.T) {
	g, u := &fakeGenerator{body: `{"images": ["QUJD"]}`}, &fakeUploader{}
	h := newTestHandler(g, u)

	_, err := h.Handle(context.Background(), Event{
		"httpMethod": "GET",
		"queryStringParameters": map[string]any{
			"prompt":          "a cat",
			"negative_prompt": "dogs",
			"aspect_ratio":    "21:9",
			"output_format":   "jpeg",
		},
	})
	require.NoError(t, err)

	require.Len(t, g.calls, 1)
	assert.Equal(t, "dogs", g.calls[0].NegativePrompt)
	assert.Equal(t, "21:9", g.calls[0].AspectRatio)
	assert.Equal(t, "jpeg", g.calls[0].OutputFormat)

	require.Len(t, u.uploads, 1)
	assert.Equal(t, "image/jpeg", u.uploads[0].ContentType)
	assert.Regexp(t, regexp.MustCompile(`\.jpeg$`), u.uploads[0].Key)
}

func TestHandleNoImage(t *testing.T) {
	g, u := &fakeGenerator{body: `{}`}, &fakeUploader{}
	h := newTestHandler(g, u)

	resp, err := h.Handle(context.Background(), Event{"prompt": "a cat"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.JSONEq(t, `{"error": "No image in Bedrock response", "raw": {}}`, resp.Body)
	assertHeaders(t, resp)
	assert.Empty(t, u.uploads)
}

func TestHandleNoImageEchoesRaw(t *testing.T) {
	raw := `{"seeds": [1], "images": [], "finish_reasons": ["Filter reason: prompt"]}`
	h := newTestHandler(&fakeGenerator{body: raw}, &fakeUploader{})

	resp, err := h.Handle(context.Background(), Event{"prompt": "a cat"})
	require.NoError(t, err)

	body := decodeBody(t, resp)
	echoed, err := json.Marshal(body["raw"])
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(echoed))
}

func TestHandleBackendFailures(t *testing.T) {
	boom := errors.New("boom")

	t.Run("generate", func(t *testing.T) {
		u := &fakeUploader{}
		h := newTestHandler(&fakeGenerator{err: boom}, u)
		_, err := h.Handle(context.Background(), Event{"prompt": "a cat"})
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, u.uploads)
	})

	t.Run("decode", func(t *testing.T) {
		u := &fakeUploader{}
		h := newTestHandler(&fakeGenerator{body: `{"images": ["not base64!"]}`}, u)
		_, err := h.Handle(context.Background(), Event{"prompt": "a cat"})
		assert.Error(t, err)
		assert.Empty(t, u.uploads)
	})

	t.Run("upload", func(t *testing.T) {
		h := newTestHandler(&fakeGenerator{body: `{"images": ["QUJD"]}`}, &fakeUploader{err: boom})
		_, err := h.Handle(context.Background(), Event{"prompt": "a cat"})
		assert.ErrorIs(t, err, boom)
	})
}

func TestHandleConcurrentKeysDiffer(t *testing.T) {
	g, u := &fakeGenerator{body: `{"images": ["QUJD"]}`}, &fakeUploader{}
	h := newTestHandler(g, u)

	const n = 16
	urls := make([]string, n)
	group, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < n; i++ {
		i := i
		group.Go(func() error {
			resp, err := h.Handle(ctx, Event{"prompt": "the same cat"})
			if err != nil {
				return err
			}
			var body successBody
			if err := json.Unmarshal([]byte(resp.Body), &body); err != nil {
				return err
			}
			urls[i] = body.PresignedURL
			return nil
		})
	}
	require.NoError(t, group.Wait())

	keys := map[string]bool{}
	for _, upload := range u.uploads {
		keys[upload.Key] = true
	}
	assert.Len(t, keys, n)

	seen := map[string]bool{}
	for _, signed := range urls {
		assert.False(t, seen[signed])
		seen[signed] = true
	}
}
