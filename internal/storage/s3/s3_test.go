package s3

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/donatewisely/donatewisely/internal/errorz/testerr"
	"github.com/donatewisely/donatewisely/internal/storage"
)

type fakeClient struct {
	err     error
	in      *s3.PutObjectInput
	body    string
	deleted *s3.DeleteObjectInput
}

func (c *fakeClient) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if c.err != nil {
		return nil, c.err
	}

	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}

	c.in = in
	c.body = string(data)
	return &s3.PutObjectOutput{}, nil
}

func (c *fakeClient) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if c.err != nil {
		return nil, c.err
	}

	c.deleted = in
	return &s3.DeleteObjectOutput{}, nil
}

func Test_Uploader_Upload(t *testing.T) {
	file := func() storage.File {
		return storage.File{
			Name:        "kid.png",
			ContentType: "image/png",
			Size:        4,
			Body:        io.NopCloser(strings.NewReader("data")),
		}
	}

	t.Run("ok, aws location", func(t *testing.T) {
		client := &fakeClient{}
		u := newUploader(client, Settings{Bucket: "cards", Region: "eu-west-1"})

		loc, err := u.Upload(context.Background(), "wishcards/a.png", file())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if loc != "https://cards.s3.eu-west-1.amazonaws.com/wishcards/a.png" {
			t.Errorf("unexpected location %q", loc)
		}

		if aws.ToString(client.in.Bucket) != "cards" || aws.ToString(client.in.Key) != "wishcards/a.png" {
			t.Errorf("unexpected input %+v", client.in)
		}

		if client.in.ACL != types.ObjectCannedACLPublicRead {
			t.Errorf("expected public read acl, got %q", client.in.ACL)
		}

		if aws.ToString(client.in.ContentType) != "image/png" {
			t.Errorf("unexpected content type %q", aws.ToString(client.in.ContentType))
		}

		if client.body != "data" {
			t.Errorf("got body %q", client.body)
		}
	})

	t.Run("ok, custom endpoint location", func(t *testing.T) {
		endpoint, err := url.Parse("http://localhost:9000")
		if err != nil {
			t.Fatalf("failed to parse url: %v", err)
		}

		u := newUploader(&fakeClient{}, Settings{Bucket: "cards", Endpoint: endpoint})

		loc, err := u.Upload(context.Background(), "a.png", file())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if loc != "http://localhost:9000/cards/a.png" {
			t.Errorf("unexpected location %q", loc)
		}
	})

	t.Run("fail, client error", func(t *testing.T) {
		u := newUploader(&fakeClient{err: testerr.Err}, Settings{Bucket: "cards"})

		_, err := u.Upload(context.Background(), "a.png", file())
		if !errors.Is(err, testerr.Err) {
			t.Errorf("expected %v, got %v", testerr.Err, err)
		}
	})
}

func Test_Uploader_Delete(t *testing.T) {
	t.Run("ok, delete object", func(t *testing.T) {
		client := &fakeClient{}
		u := newUploader(client, Settings{Bucket: "cards", Region: "eu-west-1"})

		err := u.Delete(context.Background(), "wishcards/a.png")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if aws.ToString(client.deleted.Bucket) != "cards" || aws.ToString(client.deleted.Key) != "wishcards/a.png" {
			t.Errorf("unexpected input %+v", client.deleted)
		}
	})

	t.Run("fail, client error", func(t *testing.T) {
		u := newUploader(&fakeClient{err: testerr.Err}, Settings{Bucket: "cards"})

		err := u.Delete(context.Background(), "a.png")
		if !errors.Is(err, testerr.Err) {
			t.Errorf("expected %v, got %v", testerr.Err, err)
		}
	})
}
