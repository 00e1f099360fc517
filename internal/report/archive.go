package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"ops-dashboard/internal/models"
)

// Archiver stores generated reports.
type Archiver interface {
	Archive(ctx context.Context, key string, data []byte) (*models.ArchiveResponse, error)
}

type ArchiveConfig struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// objectPutter is the part of *minio.Client the archiver uses.
type objectPutter interface {
	PutObject(ctx context.Context, bucket, object string, data []byte, contentType string) (int64, error)
}

type minioPutter struct {
	client *minio.Client
}

func (m *minioPutter) PutObject(ctx context.Context, bucket, object string, data []byte, contentType string) (int64, error) {
	info, err := m.client.PutObject(ctx, bucket, object, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return 0, err
	}
	return info.Size, nil
}

type S3Archiver struct {
	client objectPutter
	bucket string
}

func (a *S3Archiver) Archive(ctx context.Context, key string, data []byte) (*models.ArchiveResponse, error) {
	size, err := a.client.PutObject(ctx, a.bucket, key, data, ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload report to S3: %w", err)
	}
	return &models.ArchiveResponse{Bucket: a.bucket, Key: key, Size: size}, nil
}

// NoopArchiver is used when no bucket is configured.
type NoopArchiver struct{}

func (NoopArchiver) Archive(context.Context, string, []byte) (*models.ArchiveResponse, error) {
	return nil, fmt.Errorf("report archive: %w", models.ErrNotConfigured)
}

// NewArchiver returns a NoopArchiver when bucket or endpoint is empty.
func NewArchiver(cfg ArchiveConfig) (Archiver, error) {
	if cfg.Bucket == "" || cfg.Endpoint == "" {
		return NoopArchiver{}, nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create S3 client: %w", err)
	}
	return &S3Archiver{client: &minioPutter{client: client}, bucket: cfg.Bucket}, nil
}
