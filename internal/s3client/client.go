package s3client

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	appConfig "s3dirstat/config"
	"s3dirstat/internal/lister"
	"s3dirstat/internal/models"
)

var _ lister.Store = (*Client)(nil)

type Client struct {
	s3Client   *s3.Client
	downloader *manager.Downloader
	config     *appConfig.Config
}

func New(cfg *appConfig.Config) (*Client, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.HasStaticCredentials() {
		opts = append(opts, config.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID:     cfg.AccessKey,
				SecretAccessKey: cfg.SecretKey,
			},
		}))
	}

	awsConfig, err := config.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Client *s3.Client
	if cfg.ApiURL != "" {
		s3Client = s3.NewFromConfig(awsConfig, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.ApiURL)
			o.UsePathStyle = true
		})
	} else {
		s3Client = s3.NewFromConfig(awsConfig)
	}

	return &Client{
		s3Client:   s3Client,
		downloader: manager.NewDownloader(s3Client),
		config:     cfg,
	}, nil
}

func (c *Client) ListPage(ctx context.Context, req lister.ListRequest) (*lister.Page, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(req.Bucket),
	}
	if req.Prefix != "" {
		input.Prefix = aws.String(req.Prefix)
	}
	if req.ContinuationToken != "" {
		input.ContinuationToken = aws.String(req.ContinuationToken)
	}
	if req.Delimiter != "" {
		input.Delimiter = aws.String(req.Delimiter)
	}
	if req.MaxKeys > 0 {
		input.MaxKeys = aws.Int32(req.MaxKeys)
	}

	out, err := c.s3Client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, describe(err)
	}

	page := &lister.Page{
		Objects:               make([]models.ObjectRecord, 0, len(out.Contents)),
		NextContinuationToken: aws.ToString(out.NextContinuationToken),
		IsTruncated:           aws.ToBool(out.IsTruncated),
	}
	for _, obj := range out.Contents {
		page.Objects = append(page.Objects, models.ObjectRecord{
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified),
		})
	}
	for _, cp := range out.CommonPrefixes {
		page.CommonPrefixes = append(page.CommonPrefixes, aws.ToString(cp.Prefix))
	}
	return page, nil
}

// Download fetches the object with the multipart downloader; parts are
// written at their offsets, so w must tolerate out-of-order writes.
func (c *Client) Download(ctx context.Context, bucket, key string, w io.WriterAt) (int64, error) {
	n, err := c.downloader.Download(ctx, w, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return n, describe(err)
	}
	return n, nil
}

// GetBucketInfo returns the bucket's region and creation date. Object
// statistics are filled in by the caller from a scan.
func (c *Client) GetBucketInfo(ctx context.Context, bucketName string) (*models.BucketInfo, error) {
	locationResp, err := c.s3Client.GetBucketLocation(ctx, &s3.GetBucketLocationInput{
		Bucket: aws.String(bucketName),
	})
	if err != nil {
		if ErrorCode(err) == "NoSuchBucket" {
			return nil, &models.ValidationError{Field: "bucket", Msg: fmt.Sprintf("bucket %q does not exist", bucketName)}
		}
		return nil, models.StoreFailure(ctx, "location", bucketName, "", describe(err))
	}

	region := string(locationResp.LocationConstraint)
	if region == "" {
		region = c.config.Region
	}

	info := &models.BucketInfo{
		BucketName:  bucketName,
		Region:      region,
		APIEndpoint: c.config.ApiURL,
	}

	// Listing buckets needs s3:ListAllMyBuckets, which scoped keys often lack.
	bucketsResp, err := c.s3Client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		if ErrorCode(err) == "AccessDenied" {
			return info, nil
		}
		return nil, models.StoreFailure(ctx, "list-buckets", bucketName, "", describe(err))
	}
	for _, bucket := range bucketsResp.Buckets {
		if aws.ToString(bucket.Name) == bucketName {
			info.CreationDate = aws.ToTime(bucket.CreationDate)
			break
		}
	}
	return info, nil
}

// ErrorCode returns the service error code carried by err, or "".
func ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

func describe(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s (%s): %w", apiErr.ErrorMessage(), apiErr.ErrorCode(), err)
	}
	return err
}
