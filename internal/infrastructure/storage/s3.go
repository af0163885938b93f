// Package storage archives rendered quote documents in S3-compatible
// object storage.
package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	appconfig "github.com/sangkips/quotecrm/internal/config"
)

const pdfContentType = "application/pdf"

// ArchiveResult describes a stored document.
type ArchiveResult struct {
	Key        string    `json:"key"`
	Bucket     string    `json:"bucket"`
	SHA256     string    `json:"sha256"`
	Size       int64     `json:"size"`
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expires_at"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// S3Archive uploads quote PDFs and hands out time-limited download links.
type S3Archive struct {
	client     *s3.Client
	uploader   *manager.Uploader
	presigner  *s3.PresignClient
	bucket     string
	namespace  string
	presignTTL time.Duration
}

// NewS3Archive builds the archive from configuration. A custom endpoint
// switches to path-style addressing for MinIO and similar servers.
func NewS3Archive(ctx context.Context, cfg appconfig.S3Config, namespace string) (*S3Archive, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("AWS_S3_BUCKET is required for document archiving")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	return &S3Archive{
		client:     client,
		uploader:   manager.NewUploader(client),
		presigner:  s3.NewPresignClient(client),
		bucket:     cfg.Bucket,
		namespace:  namespace,
		presignTTL: ttl,
	}, nil
}

// ObjectKey is where a quote document lives: namespace, tenant, quote.
func ObjectKey(namespace string, tenantID, quoteID uuid.UUID, quoteNo string) string {
	name := quoteID.String()
	if quoteNo != "" {
		name = quoteNo + "-" + name
	}
	return fmt.Sprintf("%s/quotes/%s/%s.pdf", namespace, tenantID, name)
}

// ArchiveQuote stores pdf and returns a presigned download URL.
func (a *S3Archive) ArchiveQuote(ctx context.Context, tenantID, quoteID uuid.UUID, quoteNo string, pdf []byte) (*ArchiveResult, error) {
	sum := sha256.Sum256(pdf)
	hash := hex.EncodeToString(sum[:])
	key := ObjectKey(a.namespace, tenantID, quoteID, quoteNo)

	_, err := a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(pdf),
		ContentType: aws.String(pdfContentType),
		Metadata: map[string]string{
			"tenant-id":     tenantID.String(),
			"quote-id":      quoteID.String(),
			"quote-no":      quoteNo,
			"document-hash": hash,
		},
		ServerSideEncryption: types.ServerSideEncryptionAes256,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	url, err := a.PresignedURL(ctx, key)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &ArchiveResult{
		Key:        key,
		Bucket:     a.bucket,
		SHA256:     hash,
		Size:       int64(len(pdf)),
		URL:        url,
		ExpiresAt:  now.Add(a.presignTTL),
		UploadedAt: now,
	}, nil
}

// PresignedURL returns a temporary GET link for key.
func (a *S3Archive) PresignedURL(ctx context.Context, key string) (string, error) {
	req, err := a.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}, func(o *s3.PresignOptions) {
		o.Expires = a.presignTTL
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return req.URL, nil
}
