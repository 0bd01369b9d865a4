package model

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
)

// File is an object archived in the minio bucket, e.g. the signed copy of a document.
type File struct {
	BaseModel
	FileName       string `gorm:"type:text;not null" json:"fileName"`
	UniqueFileName string `gorm:"type:text;not null;uniqueIndex" json:"uniqueFileName"`
	BucketName     string `gorm:"type:text;not null" json:"bucketName"`
	Size           int64  `gorm:"type:bigint;not null" json:"size"`
}

func (f File) TableName() string {
	return "files"
}

func (f File) ToPresignedUrl(ctx context.Context, s3 *minio.Client, expiry time.Duration) (string, error) {
	if s3 == nil {
		return "", errors.New("file storage is not configured")
	}
	if f.BucketName == "" || f.UniqueFileName == "" {
		return "", errors.New("bucket name and unique file name cannot be empty")
	}

	presignedURL, err := s3.PresignedGetObject(ctx, f.BucketName, f.UniqueFileName, expiry, nil)
	if err != nil {
		return "", err
	}
	return presignedURL.String(), nil
}

func (f File) ToBaseFilename() string {
	return filepath.Base(f.FileName)
}
