package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	appconfig "github.com/sangkips/quotecrm/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	tenant := uuid.MustParse("7b0d6f44-58a6-4e61-9d51-7a3c58c1a001")
	quote := uuid.MustParse("0a4b39f2-5c1e-4d7a-8f0b-2ad1c5e4b002")

	assert.Equal(t,
		"crm/quotes/7b0d6f44-58a6-4e61-9d51-7a3c58c1a001/Q20240501-0a4b39f2-5c1e-4d7a-8f0b-2ad1c5e4b002.pdf",
		ObjectKey("crm", tenant, quote, "Q20240501"))
	assert.Equal(t,
		"crm/quotes/7b0d6f44-58a6-4e61-9d51-7a3c58c1a001/0a4b39f2-5c1e-4d7a-8f0b-2ad1c5e4b002.pdf",
		ObjectKey("crm", tenant, quote, ""))
}

func TestNewS3Archive_RequiresBucket(t *testing.T) {
	_, err := NewS3Archive(context.Background(), appconfig.S3Config{Region: "us-east-1"}, "crm")
	assert.Error(t, err)
}

func TestPresignedURL_UsesEndpointAndTTL(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	archive, err := NewS3Archive(context.Background(), appconfig.S3Config{
		Bucket:     "quotes",
		Region:     "us-east-1",
		Endpoint:   "http://localhost:9000",
		PresignTTL: 5 * time.Minute,
	}, "crm")
	require.NoError(t, err)

	url, err := archive.PresignedURL(context.Background(), "crm/quotes/x.pdf")
	require.NoError(t, err)
	assert.Contains(t, url, "http://localhost:9000/quotes/crm/quotes/x.pdf")
	assert.Contains(t, url, "X-Amz-Expires=300")
}
