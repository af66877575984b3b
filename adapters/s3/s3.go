package s3

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config 是建立 S3Operator 需要的連線資訊
type Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

type S3Operator struct {
	// Client 是 S3 客戶端。
	Client *s3.Client
	// Bucket 是 S3 存儲桶的名稱。
	Bucket string
}

// NewS3OperatorFromConfig 以靜態憑證和自訂 endpoint 建立 S3Operator，
// 適用於 MinIO、R2、SeaweedFS 等相容 S3 的服務。
func NewS3OperatorFromConfig(ctx context.Context, cfg Config) (*S3Operator, error) {
	const op = "NewS3OperatorFromConfig"
	region := cfg.Region
	if region == "" {
		region = "auto"
	}
	loaded, err := awsCfg.LoadDefaultConfig(
		ctx,
		awsCfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		awsCfg.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to load AWS config, err=%w", op, err)
	}
	client := s3.NewFromConfig(loaded, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return NewS3Operator(client, cfg.Bucket)
}

func NewS3Operator(client *s3.Client, bucket string) (*S3Operator, error) {
	const op = "NewS3Operator"
	if bucket == "" {
		return nil, fmt.Errorf("[%s] Bucket is required", op)
	}
	return &S3Operator{Client: client, Bucket: bucket}, nil
}

// Save 將內容上傳為 path 對應的物件
func (s *S3Operator) Save(ctx context.Context, path, contentType string, content []byte) error {
	const op = "S3Operator.Save"
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(objectKey(path)),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("[%s] Fail to upload file to S3, err=%w", op, err)
	}
	return nil
}

// Remove 刪除 path 對應的物件；S3 刪除不存在的物件本身就會成功
func (s *S3Operator) Remove(ctx context.Context, path string) error {
	const op = "S3Operator.Remove"
	_, err := s.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(objectKey(path)),
	})
	if err != nil {
		return fmt.Errorf("[%s] Fail to delete file from S3, err=%w", op, err)
	}
	return nil
}

func objectKey(path string) string {
	return strings.TrimPrefix(filepath.ToSlash(filepath.Clean(path)), "/")
}
