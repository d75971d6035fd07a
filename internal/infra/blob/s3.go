package blob

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/memodb-io/roombook/internal/config"
)

type S3Deps struct {
	Client   *s3.Client
	Uploader *manager.Uploader
	Bucket   string
	SSE      *s3types.ServerSideEncryption
}

func NewS3(ctx context.Context, cfg *config.Config) (*S3Deps, error) {
	loadOpts := []func(*awsCfg.LoadOptions) error{
		awsCfg.WithRegion(cfg.S3.Region),
	}
	if cfg.S3.AccessKey != "" && cfg.S3.SecretKey != "" {
		loadOpts = append(loadOpts, awsCfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3.AccessKey, cfg.S3.SecretKey, ""),
		))
	}

	acfg, err := awsCfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	s3Opts := func(o *s3.Options) {
		if ep := strings.TrimSpace(cfg.S3.Endpoint); ep != "" {
			if !strings.HasPrefix(ep, "http://") && !strings.HasPrefix(ep, "https://") {
				ep = "https://" + ep
			}
			if u, uerr := url.Parse(ep); uerr == nil {
				o.BaseEndpoint = aws.String(u.String())
			}
		}
		o.UsePathStyle = cfg.S3.UsePathStyle
	}

	client := s3.NewFromConfig(acfg, s3Opts)
	uploader := manager.NewUploader(client)

	var sse *s3types.ServerSideEncryption
	if cfg.S3.SSE != "" {
		v := s3types.ServerSideEncryption(cfg.S3.SSE)
		sse = &v
	}

	return &S3Deps{
		Client:   client,
		Uploader: uploader,
		Bucket:   cfg.S3.Bucket,
		SSE:      sse,
	}, nil
}

type UploadedMeta struct {
	Bucket string
	Key    string
	ETag   string
	SHA256 string
	MIME   string
	SizeB  int64
}

// Enabled reports whether an archive bucket is configured.
func (u *S3Deps) Enabled() bool {
	return u != nil && u.Bucket != ""
}

// ArchiveKey is the object key for a JSON document with the given digest:
// <prefix>/<yyyy/mm/dd>/<sha256>.json
func ArchiveKey(prefix string, at time.Time, sumHex string) string {
	return fmt.Sprintf("%s/%s/%s.json", strings.Trim(prefix, "/"), at.UTC().Format("2006/01/02"), sumHex)
}

// UploadJSON uploads data as a JSON document keyed by its digest.
func (u *S3Deps) UploadJSON(ctx context.Context, keyPrefix string, data any) (*UploadedMeta, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}

	sum := sha256.Sum256(jsonData)
	sumHex := hex.EncodeToString(sum[:])
	key := ArchiveKey(keyPrefix, time.Now(), sumHex)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(u.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(jsonData),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"sha256": sumHex,
		},
	}
	if u.SSE != nil {
		input.ServerSideEncryption = *u.SSE
	}

	out, err := u.Uploader.Upload(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}

	return &UploadedMeta{
		Bucket: u.Bucket,
		Key:    key,
		ETag:   aws.ToString(out.ETag),
		SHA256: sumHex,
		MIME:   "application/json",
		SizeB:  int64(len(jsonData)),
	}, nil
}
