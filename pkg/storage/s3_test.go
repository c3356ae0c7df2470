package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePutObject struct {
	input *s3.PutObjectInput
}

func (c *capturePutObject) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	c.input = params
	return &s3.PutObjectOutput{}, nil
}

func TestS3StorageSaveKeepsBodySeekable(t *testing.T) {
	fake := &capturePutObject{}
	store := &S3Storage{client: fake, bucket: "studio-files", region: "us-east-1"}

	body := strings.NewReader("content")
	url, err := store.Save(context.Background(), "deck_123.pdf", "application/pdf", body)
	require.NoError(t, err)

	assert.Equal(t, "https://studio-files.s3.us-east-1.amazonaws.com/data-room/deck_123.pdf", url)
	require.NotNil(t, fake.input)
	assert.Equal(t, "data-room/deck_123.pdf", *fake.input.Key)
	assert.Equal(t, "application/pdf", *fake.input.ContentType)

	// The SDK's request signer needs a seekable body (or an explicit
	// content length). Wrapping the reader would strip io.Seeker.
	_, seekable := fake.input.Body.(io.Seeker)
	assert.True(t, seekable)
}
