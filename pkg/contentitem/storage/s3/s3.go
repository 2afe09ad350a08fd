package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/tendant/contentitem/pkg/contentitem"
)

const defaultRegion = "us-east-1"

// Config selects the bucket and how to reach it. Endpoint and UsePathStyle
// point the client at MinIO or another S3-compatible server. Static
// credentials are used only when both keys are set; otherwise the default AWS
// credential chain applies.
type Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	UsePathStyle    bool

	// EnableSSE turns on server-side encryption with SSEAlgorithm, which is
	// AES256 or aws:kms. SSEKMSKeyID only applies to aws:kms.
	EnableSSE    bool
	SSEAlgorithm string
	SSEKMSKeyID  string

	CreateBucketIfNotExist bool
}

// API is the subset of the S3 client the backend uses.
type API interface {
	manager.UploadAPIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// Backend stores blobs as objects of one bucket.
type Backend struct {
	client   API
	uploader *manager.Uploader
	bucket   string
	config   Config
}

// New builds an S3 client from cfg and, when asked, creates the bucket.
func New(cfg Config) (*Backend, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}
	if cfg.Region == "" {
		cfg.Region = defaultRegion
	}
	if cfg.EnableSSE && cfg.SSEAlgorithm != "AES256" && cfg.SSEAlgorithm != "aws:kms" {
		return nil, fmt.Errorf("invalid SSE algorithm: %s", cfg.SSEAlgorithm)
	}

	client, err := newClient(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	backend := NewWithClient(client, cfg)
	if cfg.CreateBucketIfNotExist {
		if err := backend.createBucketIfNotExists(context.Background()); err != nil {
			return nil, err
		}
	}
	return backend, nil
}

func newClient(ctx context.Context, cfg Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		static := credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
		opts = append(opts, awsconfig.WithCredentialsProvider(static))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint == "" {
			return
		}
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = cfg.UsePathStyle
	}), nil
}

// NewWithClient creates a backend around an existing client.
func NewWithClient(client API, cfg Config) *Backend {
	return &Backend{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   cfg.Bucket,
		config:   cfg,
	}
}

// isNotFound reports whether err is S3's answer for a missing key or bucket.
func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var missing *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &missing) {
		return true
	}
	return hasErrorCode(err, "NoSuchKey", "NotFound", "NoSuchBucket")
}

func hasErrorCode(err error, codes ...string) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, code := range codes {
		if apiErr.ErrorCode() == code {
			return true
		}
	}
	return false
}

// objectError maps a missing object to ErrObjectNotFound and wraps the rest.
func (b *Backend) objectError(op, key string, err error) error {
	if isNotFound(err) {
		return contentitem.ErrObjectNotFound
	}
	return fmt.Errorf("s3: %s %s/%s: %w", op, b.bucket, key, err)
}

func (b *Backend) createBucketIfNotExists(ctx context.Context) error {
	bucket := aws.String(b.bucket)

	_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: bucket})
	if err == nil {
		return nil
	}
	// MinIO answers HeadBucket on a missing bucket with a bare 400
	if !isNotFound(err) && !strings.Contains(err.Error(), "BadRequest") {
		return fmt.Errorf("s3: head bucket %s: %w", b.bucket, err)
	}

	in := &s3.CreateBucketInput{Bucket: bucket}
	if region := b.config.Region; region != "" && region != defaultRegion {
		in.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		}
	}
	if _, err := b.client.CreateBucket(ctx, in); err != nil && !hasErrorCode(err, "BucketAlreadyExists", "BucketAlreadyOwnedByYou") {
		return fmt.Errorf("s3: create bucket %s: %w", b.bucket, err)
	}
	return nil
}

func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*contentitem.ObjectMeta, error) {
	head, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return nil, b.objectError("head", objectKey, err)
	}

	contentType := aws.ToString(head.ContentType)
	if contentType == "" {
		contentType = contentitem.DefaultMediaType
	}
	return &contentitem.ObjectMeta{
		Key:         objectKey,
		Size:        aws.ToInt64(head.ContentLength),
		ContentType: contentType,
		UpdatedAt:   aws.ToTime(head.LastModified),
		ETag:        strings.Trim(aws.ToString(head.ETag), "\""),
	}, nil
}

func (b *Backend) Upload(ctx context.Context, objectKey string, reader io.Reader) error {
	return b.UploadWithParams(ctx, reader, contentitem.UploadParams{ObjectKey: objectKey})
}

// UploadWithParams streams content to S3; the manager splits large bodies
// into multipart uploads.
func (b *Backend) UploadWithParams(ctx context.Context, reader io.Reader, params contentitem.UploadParams) error {
	in := &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(params.ObjectKey),
		Body:   reader,
	}
	if params.MimeType != "" {
		in.ContentType = aws.String(params.MimeType)
	}

	if b.config.EnableSSE {
		in.ServerSideEncryption = types.ServerSideEncryption(b.config.SSEAlgorithm)
		if in.ServerSideEncryption == types.ServerSideEncryptionAwsKms && b.config.SSEKMSKeyID != "" {
			in.SSEKMSKeyId = aws.String(b.config.SSEKMSKeyID)
		}
	}

	if _, err := b.uploader.Upload(ctx, in); err != nil {
		return fmt.Errorf("s3: put %s/%s: %w", b.bucket, params.ObjectKey, err)
	}
	return nil
}

func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return nil, b.objectError("get", objectKey, err)
	}
	return out.Body, nil
}

func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return b.objectError("delete", objectKey, err)
	}
	return nil
}

var _ contentitem.BlobStore = (*Backend)(nil)
