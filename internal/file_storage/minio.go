package filestorage

import (
	"github.com/SeakMengs/Signfy/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// NewMinioClient returns nil without error when the signed-copy archive is disabled.
func NewMinioClient(cfg config.MinioConfig) (*minio.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	return minio.New(cfg.ENDPOINT, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.ACCESS_KEY, cfg.SECRET_KEY, ""),
		Secure: cfg.USE_SSL,
		Region: "us-east-1",
	})
}
