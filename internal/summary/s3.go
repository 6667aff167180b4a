package summary

import (
	"context"

	"github.com/fpang/brainrot-studio/internal/s3util"
)

// S3Store keeps the summary as a single S3 object.
type S3Store struct {
	Client s3util.API
	Bucket string
	Key    string
}

var _ Store = (*S3Store)(nil)

// Load implements Store. A missing object is not an error.
func (s *S3Store) Load(ctx context.Context) ([]byte, error) {
	data, found, err := s3util.GetBytes(ctx, s.Client, s.Bucket, s.Key)
	if err != nil || !found {
		return nil, err
	}
	return data, nil
}

// Save implements Store.
func (s *S3Store) Save(ctx context.Context, data []byte) error {
	return s3util.PutBytes(ctx, s.Client, s.Bucket, s.Key, "application/json", data)
}

// Location implements Store.
func (s *S3Store) Location() string {
	return "s3://" + s.Bucket + "/" + s.Key
}
