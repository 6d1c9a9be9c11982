// Package storage 负责读取模型与数据集等只读制品，支持本地文件和 MinIO 对象存储。
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"kanto-ml/internal/config"
	"kanto-ml/pkg/log"
)

// MinioScheme 是对象存储制品路径的前缀，格式为 minio://bucket/object。
const MinioScheme = "minio://"

// MinioClient 是一个全局的 MinIO 客户端实例，仅在制品位于对象存储时初始化。
var MinioClient *minio.Client

// InitMinIO 初始化 MinIO 客户端。
func InitMinIO(cfg config.MinIOConfig) error {
	if cfg.Endpoint == "" {
		return errors.New("minio endpoint is not configured")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("初始化 MinIO 客户端失败: %w", err)
	}
	MinioClient = client
	log.Info("MinIO 客户端初始化成功")
	return nil
}

// IsRemote 报告路径是否指向对象存储。
func IsRemote(path string) bool {
	return strings.HasPrefix(path, MinioScheme)
}

// SplitObjectPath 将 minio://bucket/object 拆分为存储桶和对象名。
func SplitObjectPath(path string) (bucket, object string, err error) {
	rest := strings.TrimPrefix(path, MinioScheme)
	bucket, object, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("invalid object path %q, want minio://bucket/object", path)
	}
	return bucket, object, nil
}

// ReadArtifact 读取制品的全部内容。
func ReadArtifact(ctx context.Context, path string) ([]byte, error) {
	if !IsRemote(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取本地制品 %s 失败: %w", path, err)
		}
		return data, nil
	}

	if MinioClient == nil {
		return nil, fmt.Errorf("制品 %s 位于 MinIO, 但客户端未初始化", path)
	}
	bucket, object, err := SplitObjectPath(path)
	if err != nil {
		return nil, err
	}
	log.Infof("从 MinIO 下载制品, Bucket: %s, Object: %s", bucket, object)
	obj, err := MinioClient.GetObject(ctx, bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("从 MinIO 下载制品失败: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("读取 MinIO 对象流失败: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("制品 %s 内容为空", path)
	}
	return data, nil
}
