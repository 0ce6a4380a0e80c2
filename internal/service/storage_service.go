package service

import (
	"context"
	"edu_translator_backend/internal/config"
	"edu_translator_backend/internal/util"
	"edu_translator_backend/pkg/logger"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/kurin/blazer/b2"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// StorageProvider 归档文件的存放位置
type StorageProvider interface {
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
	URL(key string) string
}

// LocalStorageProvider 写到本地目录
type LocalStorageProvider struct {
	Root string
}

func (p *LocalStorageProvider) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	dst := filepath.Join(p.Root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return "", err
	}
	return p.URL(key), nil
}

func (p *LocalStorageProvider) Remove(ctx context.Context, key string) error {
	err := os.Remove(filepath.Join(p.Root, filepath.FromSlash(key)))
	if errors.Is(err, os.ErrNotExist) {
		return util.ErrArchiveNotFound
	}
	return err
}

func (p *LocalStorageProvider) URL(key string) string {
	return "/api/teacher/archives/" + key
}

// MinioStorageProvider MinIO 对象存储
type MinioStorageProvider struct {
	Bucket string
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: false,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Bucket: cfg.MinioBucket, Client: client}, nil
}

func (p *MinioStorageProvider) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.Client.PutObject(ctx, p.Bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.URL(key), nil
}

func (p *MinioStorageProvider) Remove(ctx context.Context, key string) error {
	return p.Client.RemoveObject(ctx, p.Bucket, key, minio.RemoveObjectOptions{})
}

func (p *MinioStorageProvider) URL(key string) string {
	return "/" + p.Bucket + "/" + key
}

// OSSStorageProvider 阿里云 OSS
type OSSStorageProvider struct {
	Endpoint string
	Bucket   string
	Client   *oss.Client
}

func NewOSSStorageProvider(cfg *config.StorageConfig) (*OSSStorageProvider, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	return &OSSStorageProvider{Endpoint: cfg.OSSEndpoint, Bucket: cfg.OSSBucket, Client: client}, nil
}

func (p *OSSStorageProvider) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	bucket, err := p.Client.Bucket(p.Bucket)
	if err != nil {
		return "", err
	}
	if err := bucket.PutObject(key, reader, oss.ContentType(contentType)); err != nil {
		return "", err
	}
	return p.URL(key), nil
}

func (p *OSSStorageProvider) Remove(ctx context.Context, key string) error {
	bucket, err := p.Client.Bucket(p.Bucket)
	if err != nil {
		return err
	}
	return bucket.DeleteObject(key)
}

func (p *OSSStorageProvider) URL(key string) string {
	return fmt.Sprintf("https://%s.%s/%s", p.Bucket, p.Endpoint, key)
}

// B2StorageProvider Backblaze B2
type B2StorageProvider struct {
	Bucket *b2.Bucket
}

func NewB2StorageProvider(ctx context.Context, cfg *config.StorageConfig) (*B2StorageProvider, error) {
	client, err := b2.NewClient(ctx, cfg.B2KeyID, cfg.B2AppKey)
	if err != nil {
		return nil, fmt.Errorf("create b2 client: %w", err)
	}
	bucket, err := client.Bucket(ctx, cfg.B2Bucket)
	if err != nil {
		return nil, fmt.Errorf("get b2 bucket: %w", err)
	}
	return &B2StorageProvider{Bucket: bucket}, nil
}

func (p *B2StorageProvider) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	w := p.Bucket.Object(key).NewWriter(ctx)
	if _, err := io.Copy(w, reader); err != nil {
		w.Close()
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close writer: %w", err)
	}
	return p.URL(key), nil
}

func (p *B2StorageProvider) Remove(ctx context.Context, key string) error {
	return p.Bucket.Object(key).Delete(ctx)
}

func (p *B2StorageProvider) URL(key string) string {
	return p.Bucket.Object(key).URL()
}

// StorageService 导出归档的存储
type StorageService struct {
	Provider StorageProvider
}

// NewStorageService 按配置选择存储；远端初始化失败时回退到本地目录
func NewStorageService(ctx context.Context, cfg *config.StorageConfig) *StorageService {
	var provider StorageProvider
	switch cfg.Type {
	case util.StorageMinio:
		p, err := NewMinioStorageProvider(cfg)
		if err != nil {
			logger.Log.Warn("minio storage unavailable, using local", zap.Error(err))
		} else {
			provider = p
		}
	case util.StorageOSS:
		p, err := NewOSSStorageProvider(cfg)
		if err != nil {
			logger.Log.Warn("oss storage unavailable, using local", zap.Error(err))
		} else {
			provider = p
		}
	case util.StorageB2:
		p, err := NewB2StorageProvider(ctx, cfg)
		if err != nil {
			logger.Log.Warn("b2 storage unavailable, using local", zap.Error(err))
		} else {
			provider = p
		}
	}

	if provider == nil {
		if cfg.LocalPath == "" {
			return &StorageService{}
		}
		provider = &LocalStorageProvider{Root: cfg.LocalPath}
	}
	return &StorageService{Provider: provider}
}

func (s *StorageService) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	if s == nil || s.Provider == nil {
		return "", util.ErrStorageNotConfigured
	}
	return s.Provider.Put(ctx, path.Clean(key), reader, size, contentType)
}

func (s *StorageService) Remove(ctx context.Context, key string) error {
	if s == nil || s.Provider == nil {
		return util.ErrStorageNotConfigured
	}
	return s.Provider.Remove(ctx, path.Clean(key))
}
