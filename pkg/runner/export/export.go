// Package export writes a JSON copy of the journal to a file, stdout or an
// S3 compatible bucket.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/fatih/color"

	"tableflip.dev/journal/pkg/app"
	"tableflip.dev/journal/pkg/entry"
	"tableflip.dev/journal/pkg/store"
)

const s3Scheme = "s3://"

// Document is the exported form of one user's journal.
type Document struct {
	User       string          `json:"user"`
	ExportedAt entry.Timestamp `json:"exportedAt"`
	From       entry.Day       `json:"from"`
	To         entry.Day       `json:"to"`
	Tasks      []*entry.Entry  `json:"tasks"`
	Notes      []*entry.Entry  `json:"notes"`
}

// Uploader is the slice of the S3 client export needs.
type Uploader interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var loadDefaultAWSConfig = config.LoadDefaultConfig

type Export struct {
	// Days of tasks to include, ending today. Zero means one week.
	Days int
	// To is a file path, "-" for stdout, or s3://bucket/key.
	To string

	Repo   *app.Repository
	Config store.Config
	// Client replaces the S3 client built from Config.
	Client Uploader
	Out    io.Writer
	Now    func() time.Time

	// Location is where the export went once Do succeeds.
	Location string
}

// Build collects the document without writing it anywhere.
func (n *Export) Build(ctx context.Context) (*Document, error) {
	if n.Repo == nil {
		return nil, errors.New("can not export, no journal")
	}
	now := n.Now
	if now == nil {
		now = n.Repo.Now
	}
	from, to := n.Repo.Window(n.Days)
	rep, err := n.Repo.Report(ctx, from, to)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		User:       rep.User,
		ExportedAt: entry.Now(now),
		From:       rep.From,
		To:         rep.To,
		Tasks:      []*entry.Entry{},
		Notes:      rep.Notes,
	}
	for _, d := range rep.Days {
		doc.Tasks = append(doc.Tasks, d.Tasks...)
	}
	if doc.Notes == nil {
		doc.Notes = []*entry.Entry{}
	}
	return doc, nil
}

func (n *Export) Do(ctx context.Context) error {
	doc, err := n.Build(ctx)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')

	switch {
	case n.To == "" || n.To == "-":
		out := n.Out
		if out == nil {
			out = color.Output
		}
		n.Location = "stdout"
		_, err = out.Write(b)
		return err
	case strings.HasPrefix(n.To, s3Scheme):
		bucket, key, err := ParseS3(n.To, doc.To)
		if err != nil {
			return err
		}
		return n.upload(ctx, bucket, key, b)
	default:
		if dir := filepath.Dir(n.To); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("export: %w", err)
			}
		}
		if err := os.WriteFile(n.To, b, 0o600); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		n.Location = n.To
		return nil
	}
}

func (n *Export) upload(ctx context.Context, bucket, key string, body []byte) error {
	client := n.Client
	if client == nil {
		var err error
		if client, err = newS3Client(ctx, n.Config); err != nil {
			return err
		}
	}
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("export: put s3://%s/%s: %w", bucket, key, err)
	}
	n.Location = s3Scheme + bucket + "/" + key
	return nil
}

func newS3Client(ctx context.Context, cfg store.Config) (*s3.Client, error) {
	var opts []func(*config.LoadOptions) error
	endpoint := ""
	if cfg != nil {
		if cfg.S3Region() != "" {
			opts = append(opts, config.WithRegion(cfg.S3Region()))
		}
		if cfg.S3AccessKey() != "" {
			opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.S3AccessKey(),
				cfg.S3SecretKey(),
				"",
			)))
		}
		endpoint = cfg.S3Endpoint()
	}
	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("export: aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			// Self-hosted endpoints such as MinIO rarely do virtual hosts.
			o.UsePathStyle = true
		}
	}), nil
}

// ParseS3 splits s3://bucket/key. A key ending in "/" or a bare bucket gets
// a file name for day appended.
func ParseS3(raw string, day entry.Day) (string, string, error) {
	rest, ok := strings.CutPrefix(raw, s3Scheme)
	if !ok {
		return "", "", fmt.Errorf("export: %q is not an s3 url", raw)
	}
	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("export: %q has no bucket", raw)
	}
	if key == "" || strings.HasSuffix(key, "/") {
		key += "journal-" + day.String() + ".json"
	}
	return bucket, key, nil
}
