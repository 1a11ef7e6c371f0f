package origin

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"emojiresizer/logger"
)

// s3API - часть клиента S3, которая нужна источнику
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Origin читает исходники из бакета-зеркала
type S3Origin struct {
	config       S3Config
	client       s3API
	maxBodyBytes int64
}

// NewS3Origin создает клиент S3 по конфигурации
func NewS3Origin(ctx context.Context, cfg S3Config, maxBodyBytes int64) (*S3Origin, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.UsePathStyle = true
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	logger.Info("Created S3 origin (Endpoint: %s, Bucket: %s, Prefix: %s)", cfg.Endpoint, cfg.Bucket, cfg.Prefix)
	return newS3OriginWithClient(cfg, client, maxBodyBytes), nil
}

func newS3OriginWithClient(cfg S3Config, client s3API, maxBodyBytes int64) *S3Origin {
	return &S3Origin{
		config:       cfg,
		client:       client,
		maxBodyBytes: maxBodyBytes,
	}
}

// Name возвращает имя источника
func (o *S3Origin) Name() string {
	return TypeS3
}

// SourceURL возвращает s3:// адрес объекта
func (o *S3Origin) SourceURL(id string) string {
	return "s3://" + o.config.Bucket + "/" + o.key(id)
}

func (o *S3Origin) key(id string) string {
	return o.config.Prefix + id
}

// Fetch выполняет GetObject
func (o *S3Origin) Fetch(ctx context.Context, id string) (*Asset, error) {
	out, err := o.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.config.Bucket),
		Key:    aws.String(o.key(id)),
	})
	if err != nil {
		return nil, classifyS3Error(id, err)
	}
	defer out.Body.Close()

	data, err := readLimited(out.Body, o.maxBodyBytes)
	if err != nil {
		return nil, &FetchError{ID: id, Err: err}
	}

	return &Asset{
		ID:          id,
		SourceURL:   o.SourceURL(id),
		ContentType: aws.ToString(out.ContentType),
		Data:        data,
	}, nil
}

// classifyS3Error сводит ошибки AWS SDK к таксономии источника
func classifyS3Error(id string, err error) error {
	// Отмена запроса клиентом - это ошибка загрузки, а не ответ origin
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &FetchError{ID: id, Err: err}
	}

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return ErrNotFound
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return ErrNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey" {
		return ErrNotFound
	}

	// Любой тип, который умеет сообщить HTTP-код
	var httpErr interface{ HTTPStatusCode() int }
	if errors.As(err, &httpErr) {
		if httpErr.HTTPStatusCode() == http.StatusNotFound {
			return ErrNotFound
		}
		return &StatusError{ID: id, StatusCode: httpErr.HTTPStatusCode()}
	}

	return &FetchError{ID: id, Err: err}
}
