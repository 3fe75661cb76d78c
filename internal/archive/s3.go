package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/joseph-ayodele/plan-parser/constants"
)

type Config struct {
	Bucket    string
	Region    string
	Endpoint  string // S3-compatible endpoint, e.g. minio
	AccessKey string
	SecretKey string
	Prefix    string
}

// Store archives uploaded drawings in S3 under prefix/hash[:2]/hash_name.
type Store struct {
	uploader *manager.Uploader
	bucket   string
	prefix   string
	logger   *slog.Logger
}

func NewStore(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("archive bucket not set")
	}
	if cfg.Region == "" {
		return nil, errors.New("archive region not set")
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Info("archive.s3.ready", "bucket", cfg.Bucket, "region", cfg.Region)
	return &Store{
		uploader: manager.NewUploader(client),
		bucket:   cfg.Bucket,
		prefix:   cfg.Prefix,
		logger:   logger,
	}, nil
}

// Key is the object key used for a drawing.
func Key(prefix, name, hash string) string {
	shard := hash
	if len(shard) > 2 {
		shard = shard[:2]
	}
	return path.Join(prefix, shard, hash+"_"+filepath.Base(name))
}

// Archive implements pipeline.Archiver.
func (s *Store) Archive(ctx context.Context, localPath, name, hash string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	key := Key(s.prefix, name, hash)
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	start := time.Now()
	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(constants.MimeTypeForExt(filepath.Ext(name))),
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload failed: %w", err)
	}
	s.logger.Info("archive.upload.ok", "key", key, "elapsed_ms", time.Since(start).Milliseconds())
	return key, nil
}
