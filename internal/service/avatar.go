package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/pageza/recipe-ai/backend/config"
	"github.com/pageza/recipe-ai/backend/internal/apperror"
)

// MaxAvatarSize is the largest accepted avatar upload.
const MaxAvatarSize = 5 << 20

var avatarExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ObjectPutter is the slice of the S3 client the avatar service needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// AvatarService stores avatar images in S3.
type AvatarService struct {
	client    ObjectPutter
	bucket    string
	objectURL func(key string) string
}

// NewAvatarService returns nil when storage is not configured.
func NewAvatarService(cfg *config.S3Config) *AvatarService {
	if cfg == nil {
		return nil
	}
	return &AvatarService{
		client:    cfg.Client,
		bucket:    cfg.BucketName,
		objectURL: cfg.ObjectURL,
	}
}

// NewAvatarServiceWithClient is used with a custom S3 client.
func NewAvatarServiceWithClient(client ObjectPutter, bucket, baseURL string) *AvatarService {
	return &AvatarService{
		client: client,
		bucket: bucket,
		objectURL: func(key string) string {
			return baseURL + "/" + key
		},
	}
}

// ValidateAvatar checks the upload constraints.
func ValidateAvatar(contentType string, size int64) error {
	if _, ok := avatarExtensions[contentType]; !ok {
		return &apperror.UploadError{Field: "avatar", Message: "Only JPEG, PNG, GIF or WebP images are allowed"}
	}
	if size > MaxAvatarSize {
		return &apperror.UploadError{Field: "avatar", Message: "File too large. Maximum size is 5MB"}
	}
	if size <= 0 {
		return &apperror.UploadError{Field: "avatar", Message: "Uploaded file is empty"}
	}
	return nil
}

func (s *AvatarService) Upload(ctx context.Context, userID uuid.UUID, contentType string, body io.Reader, size int64) (string, error) {
	if err := ValidateAvatar(contentType, size); err != nil {
		return "", err
	}

	key := path.Join("avatars", userID.String(), fmt.Sprintf("%d%s", time.Now().UnixNano(), avatarExtensions[contentType]))
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
		CacheControl:  aws.String("public, max-age=86400"),
	})
	if err != nil {
		return "", &apperror.NetworkError{Cause: errors.Wrap(err, "failed to upload avatar")}
	}

	return s.objectURL(key), nil
}
