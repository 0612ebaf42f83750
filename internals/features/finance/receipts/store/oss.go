package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"go.uber.org/zap"

	"collegefee_backend/internals/configs"
)

// OSSStore uploads receipts to an Aliyun OSS bucket under Prefix.
type OSSStore struct {
	bucket     *oss.Bucket
	endpoint   string
	bucketName string
	publicBase string
	prefix     string
}

func NewOSSStore(cfg configs.OSSConfig, prefix string, log *zap.Logger) (*OSSStore, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, errors.New("oss store needs ALI_OSS_ENDPOINT, ALI_OSS_ACCESS_KEY, ALI_OSS_SECRET_KEY and ALI_OSS_BUCKET")
	}
	if log == nil {
		log = zap.NewNop()
	}

	var opts []oss.ClientOption
	if cfg.SecurityToken != "" {
		opts = append(opts, oss.SecurityToken(cfg.SecurityToken))
	}
	client, err := oss.New(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("oss client: %w", err)
	}
	bkt, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("oss bucket %s: %w", cfg.Bucket, err)
	}

	// Scoped receipt keys often lack GetBucketLocation.
	loc, err := client.GetBucketLocation(cfg.Bucket)
	var se oss.ServiceError
	switch {
	case err == nil:
		log.Info("receipt bucket ready", zap.String("bucket", cfg.Bucket), zap.String("location", loc))
	case errors.As(err, &se) && se.StatusCode == 403:
		log.Warn("receipt bucket location check denied, continuing", zap.String("bucket", cfg.Bucket))
	default:
		return nil, fmt.Errorf("verify bucket %s: %w", cfg.Bucket, err)
	}

	return &OSSStore{
		bucket:     bkt,
		endpoint:   cfg.Endpoint,
		bucketName: cfg.Bucket,
		publicBase: cfg.PublicBase,
		prefix:     strings.Trim(prefix, "/"),
	}, nil
}

func (s *OSSStore) objectKey(key string) string {
	key = strings.TrimLeft(key, "/")
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}

func (s *OSSStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	k := s.objectKey(key)
	err := s.bucket.PutObject(k, bytes.NewReader(data),
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.ContentDisposition("inline"),
		oss.CacheControl("private, max-age=31536000, immutable"),
	)
	if err != nil {
		return "", fmt.Errorf("oss put %s: %w", k, err)
	}
	return s.URL(k), nil
}

// URL prefers the configured public base (usually a CDN) over the bucket host.
func (s *OSSStore) URL(objectKey string) string {
	if s.publicBase != "" {
		return s.publicBase + "/" + objectKey
	}
	host := strings.TrimPrefix(strings.TrimPrefix(s.endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.bucketName, host, objectKey)
}

// New picks a store from cfg.Storage; anything but "oss" writes to cfg.Dir.
func New(cfg configs.ReceiptConfig, log *zap.Logger) (Store, error) {
	if cfg.Storage == "oss" {
		return NewOSSStore(cfg.OSS, cfg.Prefix, log)
	}
	return NewLocalStore(cfg.Dir)
}
