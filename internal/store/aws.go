package store

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmorgan81/imagebot/internal/log"
	"github.com/samber/do"
)

type ObjectPutter interface {
	PutObject(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Uploader struct {
	Client ObjectPutter
	Bucket string
}

func NewS3Uploader(i *do.Injector) (Uploader, error) {
	return &S3Uploader{
		Client: do.MustInvoke[*s3.Client](i),
		Bucket: do.MustInvokeNamed[string](i, "bucket"),
	}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, params UploadParams) error {
	log := log.FromContextOrDiscard(ctx).WithGroup("s3").With(
		"bucket", u.Bucket,
		"key", params.Key,
	)
	log.Info("uploading image", "content-type", params.ContentType, "size", len(params.Data))

	_, err := u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.Bucket),
		Key:         aws.String(params.Key),
		ContentType: aws.String(params.ContentType),
		Body:        bytes.NewReader(params.Data),
	})
	if err != nil {
		return fmt.Errorf("uploading s3://%s/%s: %w", u.Bucket, params.Key, err)
	}
	return nil
}

type ObjectPresigner interface {
	PresignGetObject(context.Context, *s3.GetObjectInput, ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type S3Presigner struct {
	Client ObjectPresigner
	Bucket string
}

func NewS3Presigner(i *do.Injector) (Presigner, error) {
	return &S3Presigner{
		Client: s3.NewPresignClient(do.MustInvoke[*s3.Client](i)),
		Bucket: do.MustInvokeNamed[string](i, "bucket"),
	}, nil
}

func (p *S3Presigner) Presign(ctx context.Context, key string, expiry time.Duration) (string, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("s3").With("bucket", p.Bucket, "key", key)
	log.Info("presigning get", "expires", expiry.String())

	req, err := p.Client.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("presigning s3://%s/%s: %w", p.Bucket, key, err)
	}
	return req.URL, nil
}
