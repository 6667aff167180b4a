package s3util

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// memS3 is an in-memory API implementation.
type memS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newMemS3() *memS3 {
	return &memS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(string(data)))}, nil
}

func (m *memS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[*in.Bucket+"/"+*in.Key] = data
	m.types[*in.Bucket+"/"+*in.Key] = *in.ContentType
	return &s3.PutObjectOutput{}, nil
}

func TestGetBytes_Missing(t *testing.T) {
	data, found, err := GetBytes(context.Background(), newMemS3(), "b", "nope")
	if err != nil || found || data != nil {
		t.Errorf("GetBytes() = %q, %v, %v; want not found", data, found, err)
	}
}

func TestPutThenGet(t *testing.T) {
	m := newMemS3()
	ctx := context.Background()
	if err := PutBytes(ctx, m, "b", "k.json", "application/json", []byte("[]")); err != nil {
		t.Fatal(err)
	}
	data, found, err := GetBytes(ctx, m, "b", "k.json")
	if err != nil || !found || string(data) != "[]" {
		t.Errorf("GetBytes() = %q, %v, %v", data, found, err)
	}
}

func TestPublisher_Key(t *testing.T) {
	p := &Publisher{Prefix: "/brainrot/"}
	got := p.Key("run-1", filepath.Join("openai_gpt-4.1_Bombardiro", "Bombardiro_final.mp4"))
	if got != "brainrot/run-1/openai_gpt-4.1_Bombardiro/Bombardiro_final.mp4" {
		t.Errorf("Key() = %q", got)
	}
	if got := (&Publisher{}).Key("", "a.mp4"); got != "a.mp4" {
		t.Errorf("Key() without prefix = %q", got)
	}
}

func TestPublisher_Publish(t *testing.T) {
	m := newMemS3()
	local := filepath.Join(t.TempDir(), "v.mp4")
	if err := os.WriteFile(local, []byte("mp4"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := &Publisher{Client: m, Bucket: "videos", Prefix: "brainrot"}
	url, err := p.Publish(context.Background(), "run-1", local, "dir/v.mp4")
	if err != nil {
		t.Fatalf("Publish() error: %v", err)
	}
	if url != "s3://videos/brainrot/run-1/dir/v.mp4" {
		t.Errorf("url = %q", url)
	}
	if string(m.objects["videos/brainrot/run-1/dir/v.mp4"]) != "mp4" {
		t.Error("object not stored")
	}
	if m.types["videos/brainrot/run-1/dir/v.mp4"] != "video/mp4" {
		t.Error("content type not set")
	}
}
