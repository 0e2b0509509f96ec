package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const (
	DefaultRegion    = "us-east-1"
	DefaultURLExpiry = 15 * time.Minute
)

// Config holds S3 credentials and the bucket.
type Config struct {
	Bucket    string `env:"S3_BUCKET"`
	AccessKey string `env:"S3_ACCESS_KEY"`
	SecretKey string `env:"S3_SECRET_KEY"`
	// Endpoint is set for MinIO and other S3-compatible services.
	Endpoint  string `env:"S3_ENDPOINT"`
	Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	PathStyle bool   `env:"S3_PATH_STYLE"`
}

// Enabled reports whether a bucket is configured.
func (c Config) Enabled() bool {
	return c.Bucket != ""
}

// FileInfo describes a stored object.
type FileInfo struct {
	Key         string
	ContentType string
	Size        int64
}

// S3 stores objects in one bucket.
type S3 struct {
	client    *s3.Client
	presigner *s3.PresignClient
	cfg       Config
}

// New validates cfg and creates the client. No request is made.
func New(cfg Config) (*S3, error) {
	if cfg.Bucket == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, ErrInvalidConfig
	}
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}

	client := s3.New(s3.Options{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	}, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		}
	})

	return &S3{client: client, presigner: s3.NewPresignClient(client), cfg: cfg}, nil
}

// Put uploads body under key with a private ACL.
func (s *S3) Put(ctx context.Context, key, contentType string, body []byte) (*FileInfo, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
	}); err != nil {
		return nil, wrapS3Error(err, ErrUploadFailed)
	}
	return &FileInfo{Key: key, ContentType: contentType, Size: int64(len(body))}, nil
}

// Get opens an object. The caller closes the reader.
func (s *S3) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, wrapS3Error(err, ErrNotFound)
	}
	return out.Body, nil
}

func (s *S3) Delete(ctx context.Context, key string) error {
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}); err != nil {
		return wrapS3Error(err, ErrDeleteFailed)
	}
	return nil
}

// URL presigns a download link. A non-empty filename sets the attachment
// disposition.
func (s *S3) URL(ctx context.Context, key, filename string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = DefaultURLExpiry
	}
	in := &s3.GetObjectInput{Bucket: aws.String(s.cfg.Bucket), Key: aws.String(key)}
	if filename != "" {
		in.ResponseContentDisposition = aws.String(fmt.Sprintf("attachment; filename=%q", filename))
	}

	req, err := s.presigner.PresignGetObject(ctx, in, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", wrapS3Error(err, ErrPresignFailed)
	}
	return req.URL, nil
}

// Archiver returns a function with the signature of crud.Archiver that
// stores each file under prefix.
func (s *S3) Archiver(prefix string) func(ctx context.Context, filename, contentType string, body []byte) error {
	return func(ctx context.Context, filename, contentType string, body []byte) error {
		_, err := s.Put(ctx, ArchiveKey(prefix, filename, time.Now()), contentType, body)
		return err
	}
}

var unsafeSegment = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

// ArchiveKey builds a unique key for filename under prefix.
func ArchiveKey(prefix, filename string, at time.Time) string {
	name := unsafeSegment.ReplaceAllString(strings.ReplaceAll(path.Base(filename), "..", ""), "_")
	parts := make([]string, 0, 3)
	for _, seg := range strings.Split(prefix, "/") {
		if seg = unsafeSegment.ReplaceAllString(strings.ReplaceAll(seg, "..", ""), "_"); seg != "" {
			parts = append(parts, seg)
		}
	}
	parts = append(parts, at.UTC().Format("2006/01/02"), uuid.NewString()+"-"+name)
	return strings.Join(parts, "/")
}
