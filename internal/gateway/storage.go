package gateway

import (
	"bytes"
	"context"
	"edu_portal_backend/internal/config"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageProvider 对象存储的通用接口，bucket 对应托管后端的存储桶
type StorageProvider interface {
	Upload(ctx context.Context, bucket, path string, reader io.Reader, size int64, contentType string) error
	Download(ctx context.Context, bucket, path string) ([]byte, error)
	// URL 只拼接公开地址，不检查对象是否存在
	URL(bucket, path string) string
}

// LocalStorageProvider 本地磁盘存储，{LocalPath}/{bucket}/{path}
type LocalStorageProvider struct {
	Root    string
	BaseURL string
}

func (p *LocalStorageProvider) resolve(bucket, path string) (string, error) {
	dst := filepath.Join(p.Root, bucket, filepath.FromSlash(path))
	root, err := filepath.Abs(filepath.Join(p.Root, bucket))
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(dst)
	if err != nil {
		return "", err
	}
	if abs != root && !strings.HasPrefix(abs, root+string(os.PathSeparator)) {
		return "", NewError(KindValidation, "invalid file path: "+path)
	}
	return abs, nil
}

func (p *LocalStorageProvider) Upload(ctx context.Context, bucket, path string, reader io.Reader, size int64, contentType string) error {
	dst, err := p.resolve(bucket, path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, reader)
	return err
}

func (p *LocalStorageProvider) Download(ctx context.Context, bucket, path string) ([]byte, error) {
	src, err := p.resolve(bucket, path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(src)
}

func (p *LocalStorageProvider) URL(bucket, path string) string {
	return strings.TrimRight(p.BaseURL, "/") + "/" + bucket + "/" + strings.TrimLeft(path, "/")
}

// MinioStorageProvider MinIO 存储实现
type MinioStorageProvider struct {
	Client  *minio.Client
	BaseURL string
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioSecure,
	})
	if err != nil {
		return nil, err
	}

	baseURL := cfg.PublicBaseURL
	if baseURL == "" || strings.HasPrefix(baseURL, "/") {
		scheme := "http"
		if cfg.MinioSecure {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s", scheme, cfg.MinioEndpoint)
	}
	return &MinioStorageProvider{Client: client, BaseURL: baseURL}, nil
}

func (p *MinioStorageProvider) Upload(ctx context.Context, bucket, path string, reader io.Reader, size int64, contentType string) error {
	_, err := p.Client.PutObject(ctx, bucket, path, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (p *MinioStorageProvider) Download(ctx context.Context, bucket, path string) ([]byte, error) {
	obj, err := p.Client.GetObject(ctx, bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, obj); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p *MinioStorageProvider) URL(bucket, path string) string {
	return strings.TrimRight(p.BaseURL, "/") + "/" + bucket + "/" + strings.TrimLeft(path, "/")
}

// OSSStorageProvider 阿里云 OSS 存储实现
type OSSStorageProvider struct {
	Endpoint string
	Client   *oss.Client
}

func NewOSSStorageProvider(cfg *config.StorageConfig) (*OSSStorageProvider, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	return &OSSStorageProvider{Endpoint: cfg.OSSEndpoint, Client: client}, nil
}

func (p *OSSStorageProvider) Upload(ctx context.Context, bucket, path string, reader io.Reader, size int64, contentType string) error {
	b, err := p.Client.Bucket(bucket)
	if err != nil {
		return err
	}
	return b.PutObject(path, reader, oss.ContentType(contentType))
}

func (p *OSSStorageProvider) Download(ctx context.Context, bucket, path string) ([]byte, error) {
	b, err := p.Client.Bucket(bucket)
	if err != nil {
		return nil, err
	}
	body, err := b.GetObject(path)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(body)
}

func (p *OSSStorageProvider) URL(bucket, path string) string {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(p.Endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", bucket, endpoint, strings.TrimLeft(path, "/"))
}

// NewStorageProvider 按配置选择实现，远端存储初始化失败时回退到本地磁盘
func NewStorageProvider(cfg *config.StorageConfig) (StorageProvider, error) {
	switch cfg.Type {
	case "minio":
		p, err := NewMinioStorageProvider(cfg)
		if err == nil {
			return p, nil
		}
		return localProvider(cfg), err
	case "oss":
		p, err := NewOSSStorageProvider(cfg)
		if err == nil {
			return p, nil
		}
		return localProvider(cfg), err
	}
	return localProvider(cfg), nil
}

func localProvider(cfg *config.StorageConfig) *LocalStorageProvider {
	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = "/uploads"
	}
	return &LocalStorageProvider{Root: cfg.LocalPath, BaseURL: baseURL}
}
