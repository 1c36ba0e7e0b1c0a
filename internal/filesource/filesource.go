// Package filesource reads import files from the local disk or from an
// S3-compatible bucket addressed as s3://bucket/key.
package filesource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// MaxSize caps how much of an import file is read.
const MaxSize = 4 << 20

const s3Scheme = "s3://"

var ErrTooLarge = errors.New("import file too large")

type objectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newObjectGetter = func(cfg aws.Config, optFns ...func(*s3.Options)) objectGetter {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// Options configure the S3 client. Empty fields fall back to the default
// AWS credential chain and endpoint.
type Options struct {
	Region    string `json:"s3_region"`
	Endpoint  string `json:"s3_endpoint"`
	AccessKey string `json:"s3_access_key"`
	SecretKey string `json:"s3_secret_key"`
}

type Reader struct {
	opts Options
}

func New(opts Options) *Reader {
	return &Reader{opts: opts}
}

// IsS3 reports whether uri addresses a bucket object.
func IsS3(uri string) bool {
	return strings.HasPrefix(uri, s3Scheme)
}

// SplitS3 returns the bucket and key of an s3:// uri.
func SplitS3(uri string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(uri, s3Scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("malformed s3 uri %q: want s3://bucket/key", uri)
	}
	return bucket, key, nil
}

// Name is the base file name of uri, used to pick a parser format.
func Name(uri string) string {
	if IsS3(uri) {
		return path.Base(strings.TrimPrefix(uri, s3Scheme))
	}
	return path.Base(strings.ReplaceAll(uri, `\`, "/"))
}

// Read returns the content behind uri.
func (r *Reader) Read(ctx context.Context, uri string) ([]byte, error) {
	if IsS3(uri) {
		return r.readS3(ctx, uri)
	}

	f, err := os.Open(uri)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", uri, err)
	}
	defer f.Close()
	return readLimited(f)
}

func (r *Reader) client(ctx context.Context) (objectGetter, error) {
	var loadOpts []func(*config.LoadOptions) error
	if r.opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(r.opts.Region))
	}
	if r.opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(r.opts.AccessKey, r.opts.SecretKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	return newObjectGetter(cfg, func(o *s3.Options) {
		if r.opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(r.opts.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func (r *Reader) readS3(ctx context.Context, uri string) ([]byte, error) {
	bucket, key, err := SplitS3(uri)
	if err != nil {
		return nil, err
	}

	c, err := r.client(ctx)
	if err != nil {
		return nil, err
	}

	out, err := c.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", uri, err)
	}
	defer out.Body.Close()
	return readLimited(out.Body)
}

func readLimited(rd io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(rd, MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if len(data) > MaxSize {
		return nil, ErrTooLarge
	}
	return data, nil
}
