package aws

import (
	"context"
	"fmt"
	"strings"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// UploadURL is a presigned PUT target plus the URL the object will be served from.
type UploadURL struct {
	URL       string            `json:"uploadUrl"`
	Headers   map[string]string `json:"headers"`
	Key       string            `json:"key"`
	PublicURL string            `json:"publicUrl"`
}

// S3Presigner issues presigned uploads into one bucket.
type S3Presigner struct {
	presigner *s3.PresignClient
	bucket    string
	publicURL string
}

// NewS3Presigner builds a presigner. publicBase is the CDN or bucket URL
// objects are served from; when empty the virtual-hosted S3 URL is used.
func NewS3Presigner(cfg sdkaws.Config, bucket, publicBase string) *S3Presigner {
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.BaseEndpoint != nil
	})
	if publicBase == "" {
		publicBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, cfg.Region)
	}
	return &S3Presigner{
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicBase, "/"),
	}
}

func (p *S3Presigner) PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (*UploadURL, error) {
	input := &s3.PutObjectInput{
		Bucket: sdkaws.String(p.bucket),
		Key:    sdkaws.String(key),
	}
	if contentType != "" {
		input.ContentType = sdkaws.String(contentType)
	}

	presigned, err := p.presigner.PresignPutObject(ctx, input, func(o *s3.PresignOptions) {
		o.Expires = expiry
	})
	if err != nil {
		return nil, fmt.Errorf("failed to presign put object: %w", err)
	}

	headers := make(map[string]string, len(presigned.SignedHeader))
	for k, v := range presigned.SignedHeader {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}
	return &UploadURL{
		URL:       presigned.URL,
		Headers:   headers,
		Key:       key,
		PublicURL: p.publicURL + "/" + key,
	}, nil
}
