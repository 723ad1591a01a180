// Package s3 stores uploads in an S3 compatible bucket.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/donatewisely/donatewisely/internal/krypto"
	"github.com/donatewisely/donatewisely/internal/storage"
)

type Settings struct {
	Bucket string
	Region string
	// Endpoint is optional, when set path style addressing is used.
	// This is what MinIO and other S3 compatible stores expect.
	Endpoint  *url.URL
	AccessKey string
	SecretKey krypto.Secret
}

// objectAPI is the part of the S3 client used by the Uploader.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type Uploader struct {
	client   objectAPI
	settings Settings
}

func New(ctx context.Context, settings Settings) (*Uploader, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(settings.Region),
	}

	if settings.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			settings.AccessKey,
			string(settings.SecretKey.SecretValue()),
			"",
		)))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if settings.Endpoint != nil {
			o.BaseEndpoint = aws.String(settings.Endpoint.String())
			o.UsePathStyle = true
		}
	})

	return newUploader(client, settings), nil
}

func newUploader(client objectAPI, settings Settings) *Uploader {
	return &Uploader{
		client:   client,
		settings: settings,
	}
}

// Upload stores the file as a publicly readable object and returns its URL.
func (u *Uploader) Upload(ctx context.Context, key string, f storage.File) (string, error) {
	in := &s3.PutObjectInput{
		Bucket:      aws.String(u.settings.Bucket),
		Key:         aws.String(key),
		Body:        f.Body,
		ACL:         types.ObjectCannedACLPublicRead,
		ContentType: aws.String(f.ContentType),
	}

	if f.Size > 0 {
		in.ContentLength = aws.Int64(f.Size)
	}

	// PutObject needs a seekable body to sign the payload.
	if _, ok := f.Body.(io.ReadSeeker); !ok {
		data, err := io.ReadAll(f.Body)
		if err != nil {
			return "", fmt.Errorf("failed to read upload: %w", err)
		}
		in.Body = bytes.NewReader(data)
	}

	_, err := u.client.PutObject(ctx, in)
	if err != nil {
		return "", fmt.Errorf("failed to put object %q: %w", key, err)
	}

	return u.location(key), nil
}

// Delete removes the object. S3 reports success for missing objects.
func (u *Uploader) Delete(ctx context.Context, key string) error {
	_, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.settings.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %q: %w", key, err)
	}

	return nil
}

func (u *Uploader) location(key string) string {
	if u.settings.Endpoint != nil {
		return u.settings.Endpoint.JoinPath(u.settings.Bucket, key).String()
	}

	loc := url.URL{
		Scheme: "https",
		Host:   fmt.Sprintf("%s.s3.%s.amazonaws.com", u.settings.Bucket, u.settings.Region),
	}
	return loc.JoinPath(key).String()
}
