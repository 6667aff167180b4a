package s3util

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// PutBytes writes data to bucket/key with the project tag.
func PutBytes(ctx context.Context, client API, bucket, key, contentType string, data []byte) error {
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
		Tagging:     ProjectTagging(),
	})
	if err != nil {
		return fmt.Errorf("S3 PutObject %s: %w", key, err)
	}
	return nil
}

// Publisher uploads finished videos to <prefix>/<run id>/<idea dir>/<file>.
type Publisher struct {
	Client API
	Bucket string
	Prefix string
}

// Key returns the object key for a local file under a run. relPath uses
// the local separator and is converted to '/'.
func (p *Publisher) Key(runID, relPath string) string {
	parts := []string{}
	if prefix := strings.Trim(p.Prefix, "/"); prefix != "" {
		parts = append(parts, prefix)
	}
	if runID != "" {
		parts = append(parts, runID)
	}
	parts = append(parts, filepath.ToSlash(relPath))
	return path.Join(parts...)
}

// Publish uploads localPath and returns its s3:// URL.
func (p *Publisher) Publish(ctx context.Context, runID, localPath, relPath string) (string, error) {
	key := p.Key(runID, relPath)

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open video: %w", err)
	}
	defer f.Close()

	contentType := "video/mp4"
	_, err = p.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &p.Bucket,
		Key:         &key,
		Body:        f,
		ContentType: &contentType,
		Tagging:     ProjectTagging(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload video to S3: %w", err)
	}

	url := "s3://" + p.Bucket + "/" + key
	log.Info().Str("path", localPath).Str("url", url).Msg("Video published")
	return url, nil
}
