package infra

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"
)

// ErrStorageNoDisponible is returned when object storage was not configured
// or could not be reached at startup.
var ErrStorageNoDisponible = errors.New("storage: almacenamiento no disponible")

// Storage uploads dossier documents and follow-up photos to a MinIO bucket
// and hands back their public URL.
type Storage struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewStorage connects to MinIO and makes sure the bucket exists. Without an
// endpoint it returns a Storage whose uploads fail with
// ErrStorageNoDisponible, so the rest of the API keeps working.
func NewStorage(ctx context.Context, cfg *config.Config) *Storage {
	s := &Storage{bucket: cfg.MinIOBucket, publicURL: strings.TrimRight(cfg.MinIOPublicURL, "/")}
	if cfg.MinIOEndpoint == "" {
		log.Warn().Msg("MINIO_ENDPOINT not set, uploads disabled")
		return s
	}

	client, err := minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		log.Warn().Err(err).Msg("minio client init failed, uploads disabled")
		return s
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, s.bucket)
	if err == nil && !exists {
		err = client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	}
	if err != nil {
		log.Warn().Err(err).Str("bucket", s.bucket).Msg("minio bucket check failed, uploads disabled")
		return s
	}

	if s.publicURL == "" {
		scheme := "http"
		if cfg.MinIOUseSSL {
			scheme = "https"
		}
		s.publicURL = fmt.Sprintf("%s://%s", scheme, cfg.MinIOEndpoint)
	}
	s.client = client
	return s
}

// Disponible reports whether uploads can succeed.
func (s *Storage) Disponible() bool { return s != nil && s.client != nil }

// Subir stores r under carpeta/<uuid><ext> and returns its public URL.
func (s *Storage) Subir(ctx context.Context, carpeta, nombre, contentType string, r io.Reader, size int64) (string, error) {
	if !s.Disponible() {
		return "", ErrStorageNoDisponible
	}
	objectName := path.Join(carpeta, uuid.NewString()+strings.ToLower(path.Ext(nombre)))
	_, err := s.client.PutObject(ctx, s.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("storage: put %s: %w", objectName, err)
	}
	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, objectName), nil
}
