// Package storage 提供了与对象存储服务（如 MinIO）交互的功能。
package storage

import (
	"bytes"
	"context"
	"io"

	"filing-advisor-go/internal/config"
	"filing-advisor-go/pkg/log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rotisserie/eris"
)

// FilingStore 把原始申报 JSON 归档到 MinIO 的一个桶里。
type FilingStore struct {
	client *minio.Client
	bucket string
}

// NewFilingStore 初始化 MinIO 客户端并确保存储桶存在。
func NewFilingStore(ctx context.Context, cfg config.MinIOConfig) (*FilingStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, eris.Wrap(err, "minio: new client")
	}
	log.Info("MinIO 客户端初始化成功")

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, eris.Wrapf(err, "minio: check bucket %s", cfg.BucketName)
	}
	if !exists {
		log.Infof("存储桶 '%s' 不存在，正在创建...", cfg.BucketName)
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, eris.Wrapf(err, "minio: make bucket %s", cfg.BucketName)
		}
		log.Infof("存储桶 '%s' 创建成功", cfg.BucketName)
	} else {
		log.Infof("存储桶 '%s' 已存在", cfg.BucketName)
	}
	return &FilingStore{client: client, bucket: cfg.BucketName}, nil
}

// PutFiling 上传一份申报 JSON。
func (s *FilingStore) PutFiling(ctx context.Context, objectName string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return eris.Wrapf(err, "minio: put %s", objectName)
	}
	return nil
}

// GetFiling 读取一份已归档的申报 JSON。
func (s *FilingStore) GetFiling(ctx context.Context, objectName string) ([]byte, error) {
	object, err := s.client.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, eris.Wrapf(err, "minio: get %s", objectName)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, eris.Wrapf(err, "minio: read %s", objectName)
	}
	return data, nil
}
