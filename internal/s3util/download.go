// Package s3util holds the S3 helpers shared by the summary store, video
// publishing and the scheduled Lambda.
package s3util

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"
)

// API is the subset of *s3.Client used here.
type API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var _ API = (*s3.Client)(nil)

// GetBytes reads a whole object. found is false, with a nil error, when
// the key does not exist.
func GetBytes(ctx context.Context, client API, bucket, key string) (data []byte, found bool, err error) {
	log.Debug().Str("bucket", bucket).Str("key", key).Msg("Reading from S3")
	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket, Key: &key,
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("S3 GetObject: %w", err)
	}
	defer result.Body.Close()

	data, err = io.ReadAll(result.Body)
	if err != nil {
		return nil, false, fmt.Errorf("read: %w", err)
	}
	return data, true, nil
}
