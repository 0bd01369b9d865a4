package util

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/minio/minio-go/v7"
)

func GetSignedDocumentDirectoryPath(documentId string) string {
	return fmt.Sprintf("documents/%s/signed", documentId)
}

func createBucketIfNotExists(ctx context.Context, s3 *minio.Client, bucketName string) error {
	exists, err := s3.BucketExists(ctx, bucketName)
	if err != nil {
		return err
	}

	if !exists {
		err = s3.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{})
		if err != nil {
			return err
		}
	}

	return nil
}

type FileUploadOptions struct {
	// Add a prefix to the file name
	// For example, if the file name is "signed.pdf" and the prefix is "documents/123/signed",
	// the resulting name will be "documents/123/signed/signed.pdf"
	DirectoryPath string
	UniquePrefix  bool
	Bucket        string
	ContentType   string
	S3            *minio.Client
}

// uploads an in-memory file to S3
func UploadBytesToS3(ctx context.Context, fileName string, data []byte, fuo *FileUploadOptions) (minio.UploadInfo, error) {
	if err := createBucketIfNotExists(ctx, fuo.S3, fuo.Bucket); err != nil {
		return minio.UploadInfo{}, fmt.Errorf("failed to create bucket: %w", err)
	}

	contentType := fuo.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	info, err := fuo.S3.PutObject(
		ctx,
		fuo.Bucket,
		prepareFileName(fileName, fuo),
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{
			ContentType: contentType,
		},
	)
	if err != nil {
		return minio.UploadInfo{}, fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return info, nil
}

// Generates the final file name with uniqueness and prefix
func prepareFileName(originalName string, fuo *FileUploadOptions) string {
	fileName := filepath.Base(originalName)

	if fuo != nil {
		if fuo.UniquePrefix {
			fileName = AddUniquePrefixToFileName(fileName)
		}

		if fuo.DirectoryPath != "" {
			fileName = filepath.Join(fuo.DirectoryPath, fileName)
		}
	}

	return fileName
}
