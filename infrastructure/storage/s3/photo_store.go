// Package s3 implements blob storage for profile photos
package s3

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"hackmate-backend/application/ports"
	appErrors "hackmate-backend/pkg/errors"
)

// PhotoStore implements ports.PhotoStore on S3. Each user owns a single
// fixed key, so re-uploads overwrite the previous photo.
type PhotoStore struct {
	client  *s3.Client
	bucket  string
	baseURL string
	logger  *zap.Logger
}

// NewPhotoStore creates an S3-backed photo store. baseURL is the public
// prefix photos are served from (bucket website or CDN).
func NewPhotoStore(client *s3.Client, bucket, baseURL string, logger *zap.Logger) ports.PhotoStore {
	return &PhotoStore{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
		logger:  logger,
	}
}

func photoKey(userID string) string {
	return fmt.Sprintf("profile-photos/%s", userID)
}

// Upload stores the photo under the user's key and returns its public URL
func (s *PhotoStore) Upload(ctx context.Context, userID, contentType string, size int64, body io.Reader) (string, error) {
	key := photoKey(userID)

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		s.logger.Error("Failed to upload profile photo",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return "", appErrors.NewExternalError("s3", err)
	}

	return fmt.Sprintf("%s/%s", s.baseURL, key), nil
}
