package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/interacaodigitall-rgb/juridico/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ArchiveService stores composed contract documents in object storage and
// hands out time-limited download links.
type ArchiveService struct {
	client *minio.Client
	bucket string
	config *config.MinioConfig
}

func NewArchiveService(cfg *config.MinioConfig) (*ArchiveService, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &ArchiveService{
		client: client,
		bucket: cfg.Bucket,
		config: cfg,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *ArchiveService) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// ArtifactName builds the object name for a contract's archived document
func ArtifactName(ownerID, contractID string) string {
	return fmt.Sprintf("%s/%s.pdf", ownerID, contractID)
}

// StoreArtifact uploads a composed document and returns its object name
func (s *ArchiveService) StoreArtifact(ctx context.Context, ownerID, contractID string, document []byte) (string, error) {
	objectName := ArtifactName(ownerID, contractID)
	_, err := s.client.PutObject(ctx, s.bucket, objectName,
		bytes.NewReader(document), int64(len(document)),
		minio.PutObjectOptions{ContentType: "application/pdf"})
	if err != nil {
		return "", fmt.Errorf("failed to store artifact: %w", err)
	}

	return objectName, nil
}

// PresignedURL generates a presigned download URL for an archived document
func (s *ArchiveService) PresignedURL(ctx context.Context, objectName string) (string, error) {
	expiry := time.Duration(s.config.ExpireDays) * 24 * time.Hour
	url, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return url.String(), nil
}

// DeleteArtifact removes an archived document. Removing a nonexistent
// object is not an error, matching the idempotent contract deletion.
func (s *ArchiveService) DeleteArtifact(ctx context.Context, objectName string) error {
	err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}

	return nil
}
