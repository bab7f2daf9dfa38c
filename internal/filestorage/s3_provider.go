package filestorage

import (
	"context"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Mirror struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Mirror uses the default AWS credential chain.
func NewS3Mirror(ctx context.Context, bucket, prefix string) (*S3Mirror, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return &S3Mirror{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: prefix,
	}, nil
}

func (f *S3Mirror) Put(ctx context.Context, key, filePath, contentType string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = f.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &f.bucket,
		Key:         aws.String(path.Join(f.prefix, key)),
		Body:        file,
		ContentType: &contentType,
	})
	return err
}

func (f *S3Mirror) Remove(ctx context.Context, key string) error {
	_, err := f.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &f.bucket,
		Key:    aws.String(path.Join(f.prefix, key)),
	})
	return err
}
