package filestorage

import (
	"context"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

func NewMinIOMirror(bucket, prefix, endpoint, accessKeyID, secretAccessKey string, secure bool) (*MinIOMirror, error) {
	m, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, err
	}
	return &MinIOMirror{
		client: m,
		bucket: bucket,
		prefix: prefix,
	}, nil
}

type MinIOMirror struct {
	client *minio.Client
	bucket string
	prefix string
}

func (f *MinIOMirror) Put(ctx context.Context, key, filePath, contentType string) error {
	_, err := f.client.FPutObject(ctx, f.bucket, path.Join(f.prefix, key), filePath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (f *MinIOMirror) Remove(ctx context.Context, key string) error {
	return f.client.RemoveObject(ctx, f.bucket, path.Join(f.prefix, key), minio.RemoveObjectOptions{})
}
