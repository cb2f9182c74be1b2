package s3

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

const defaultSignedURLTTL = 5 * time.Minute

// Signer issues short-lived read URLs for objects in a single bucket.
type Signer struct {
	client *minio.Client
	bucket string
}

func NewSigner(client *minio.Client, bucket string) *Signer {
	return &Signer{
		client: client,
		bucket: strings.TrimSpace(bucket),
	}
}

func (s *Signer) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("s3 client is nil")
	}
	if key == "" {
		return "", fmt.Errorf("object key is empty")
	}
	if ttl <= 0 {
		ttl = defaultSignedURLTTL
	}

	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign get object: %w", err)
	}

	return presigned.String(), nil
}
