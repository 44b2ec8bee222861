package file_store

import (
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/pkg/errors"
)

const DefaultAwsRegion = "us-west-1"

type S3FileStore struct {
	bucket                string
	publicUrlPrefix       string
	uploader              s3manageriface.UploaderAPI
	customizeFileNameFunc CustomizeFileNameFuncType
}

// NewS3FileStore uploads into bucket. Urls are publicUrlPrefix + key, e.g. a
// CloudFront domain; empty means the bucket's own virtual-hosted url.
func NewS3FileStore(region string, bucket string, publicUrlPrefix string) (*S3FileStore, error) {
	if region == "" {
		region = DefaultAwsRegion
	}
	// AWS client session
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}
	return NewS3FileStoreWithUploader(s3manager.NewUploader(sess), bucket, publicUrlPrefix), nil
}

func NewS3FileStoreWithUploader(uploader s3manageriface.UploaderAPI, bucket string, publicUrlPrefix string) *S3FileStore {
	if publicUrlPrefix == "" {
		publicUrlPrefix = "https://" + bucket + ".s3.amazonaws.com/"
	}
	if !strings.HasSuffix(publicUrlPrefix, "/") {
		publicUrlPrefix += "/"
	}
	return &S3FileStore{
		bucket:                bucket,
		publicUrlPrefix:       publicUrlPrefix,
		uploader:              uploader,
		customizeFileNameFunc: GenerateKey,
	}
}

func (s *S3FileStore) SetCustomizeFileNameFunc(f CustomizeFileNameFuncType) {
	s.customizeFileNameFunc = f
}

func (s *S3FileStore) Upload(ctx context.Context, fileName string, contentType string, body io.Reader) (string, error) {
	key := s.customizeFileNameFunc(fileName)
	if len(key) == 0 {
		return "", errors.New("generate empty s3 key, invalid")
	}
	input := &s3manager.UploadInput{
		ACL:    aws.String("public-read"),
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.uploader.UploadWithContext(ctx, input); err != nil {
		return "", errors.Wrapf(err, "fail to upload %s to s3", key)
	}
	return s.GetUrlFromKey(key), nil
}

func (s *S3FileStore) GetUrlFromKey(key string) string {
	return s.publicUrlPrefix + key
}
