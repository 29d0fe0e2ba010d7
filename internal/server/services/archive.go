package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/colisso/internal/server/config"
)

// PresignExpiry is how long an archive download URL stays valid.
const PresignExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// Archive keeps a copy of every rendered label PDF.
type Archive interface {
	Put(ctx context.Context, key string, pdf []byte) error
	PresignGet(ctx context.Context, key string) (string, error)
}

// S3Archive stores PDFs in an S3-compatible bucket (MinIO in development).
type S3Archive struct {
	config *sc.Config
}

func NewS3Archive(config *sc.Config) *S3Archive {
	return &S3Archive{config: config}
}

// ArchiveKey is the object key of the PDF of trackingID rendered at t.
func ArchiveKey(trackingID string, t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("labels/%d/%02d/%s.pdf", t.Year(), int(t.Month()), trackingID)
}

func (a *S3Archive) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(a.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			a.config.S3RootUser,
			a.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(a.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// Put uploads pdf under key.
func (a *S3Archive) Put(ctx context.Context, key string, pdf []byte) error {
	client, err := a.getClient(ctx)
	if err != nil {
		return err
	}

	bucket := a.config.S3Bucket
	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:        &bucket,
		Key:           &key,
		Body:          bytes.NewReader(pdf),
		ContentLength: aws.Int64(int64(len(pdf))),
		ContentType:   aws.String("application/pdf"),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", key, err)
	}
	return nil
}

// PresignGet returns a time-limited download URL for key.
func (a *S3Archive) PresignGet(ctx context.Context, key string) (string, error) {
	client, err := a.getClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := a.config.S3Bucket
	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
