package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/foodgram/backend/config"
)

// ImageStore persists recipe image bytes and returns a public URL.
type ImageStore interface {
	Store(ctx context.Context, data []byte, contentType string) (string, error)
}

// S3ImageStore uploads recipe images to S3.
type S3ImageStore struct {
	s3Config *config.S3Config
}

func NewS3ImageStore(s3Config *config.S3Config) *S3ImageStore {
	return &S3ImageStore{s3Config: s3Config}
}

func (s *S3ImageStore) Store(ctx context.Context, data []byte, contentType string) (string, error) {
	ext := "png"
	if parts := strings.SplitN(contentType, "/", 2); len(parts) == 2 && parts[1] != "" {
		ext = parts[1]
	}
	fileName := fmt.Sprintf("recipe-images/%s.%s", uuid.New().String(), ext)

	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, fileName)
	log.Printf("[ImageStore] uploaded recipe image to %s", publicURL)
	return publicURL, nil
}

// DecodeBase64Image decodes an inline image payload. It accepts a bare
// base64 string or a data URI ("data:image/png;base64,...") and returns the
// bytes with the content type.
func DecodeBase64Image(payload string) ([]byte, string, error) {
	contentType := "image/png"
	encoded := payload
	if strings.HasPrefix(payload, "data:") {
		rest := strings.TrimPrefix(payload, "data:")
		semi := strings.Index(rest, ";base64,")
		if semi < 0 {
			return nil, "", fmt.Errorf("%w: malformed data URI", ErrInvalidImage)
		}
		if rest[:semi] != "" {
			contentType = rest[:semi]
		}
		encoded = rest[semi+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return data, contentType, nil
}
