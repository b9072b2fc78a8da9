package feed

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 serves objects from memory.
type fakeS3 struct {
	objects map[string][]byte
	keys    []string
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.keys = append(f.keys, key)
	body, ok := f.objects[key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

// stubLoader returns canned results and records the requested paths.
type stubLoader struct {
	entries []Entry
	err     error
	paths   []string
}

func (s *stubLoader) Load(ctx context.Context, path string) ([]Entry, error) {
	s.paths = append(s.paths, path)
	return s.entries, s.err
}

func TestS3Loader_Load(t *testing.T) {
	client := &fakeS3{objects: map[string][]byte{
		"feeds/restock/2026-05-01.gz": gzipped(t, "P001,10", "P002,1"),
	}}
	loader := NewS3LoaderWithClient(client, "feeds", zerolog.Nop())

	entries, err := loader.Load(context.Background(), "restock/2026-05-01.gz")

	require.NoError(t, err)
	assert.Equal(t, []Entry{{"P001", 10}, {"P002", 1}}, entries)
	assert.Equal(t, []string{"feeds/restock/2026-05-01.gz"}, client.keys)
}

func TestS3Loader_Errors(t *testing.T) {
	client := &fakeS3{objects: map[string][]byte{
		"feeds/bad.gz": gzipped(t, "P001"),
	}}
	loader := NewS3LoaderWithClient(client, "feeds", zerolog.Nop())

	_, err := loader.Load(context.Background(), "missing.gz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket=feeds, key=missing.gz")

	_, err = loader.Load(context.Background(), "bad.gz")
	assert.ErrorIs(t, err, ErrMalformedLine)
}

func TestFallbackLoader(t *testing.T) {
	fromS3 := []Entry{{"S3", 1}}
	fromDisk := []Entry{{"DISK", 2}}

	tests := []struct {
		name      string
		s3Enabled bool
		s3Err     error
		diskErr   error
		want      []Entry
		wantS3    []string
		wantDisk  []string
		wantErr   bool
	}{
		{name: "s3 succeeds", s3Enabled: true, want: fromS3, wantS3: []string{"restock/feed.gz"}},
		{
			name:      "s3 fails falls back to disk",
			s3Enabled: true,
			s3Err:     errors.New("access denied"),
			want:      fromDisk,
			wantS3:    []string{"restock/feed.gz"},
			wantDisk:  []string{"feed.gz"},
		},
		{name: "s3 disabled", want: fromDisk, wantDisk: []string{"feed.gz"}},
		{
			name:      "both fail",
			s3Enabled: true,
			s3Err:     errors.New("access denied"),
			diskErr:   errors.New("no such file"),
			wantS3:    []string{"restock/feed.gz"},
			wantDisk:  []string{"feed.gz"},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s3 := &stubLoader{entries: fromS3, err: tt.s3Err}
			disk := &stubLoader{entries: fromDisk, err: tt.diskErr}
			loader := NewFallbackLoader(s3, disk, "restock/", tt.s3Enabled, zerolog.Nop())

			entries, err := loader.Load(context.Background(), "feed.gz")

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, entries)
			}
			assert.Equal(t, tt.wantS3, s3.paths)
			assert.Equal(t, tt.wantDisk, disk.paths)
		})
	}
}

func TestFallbackLoader_NilS3Loader(t *testing.T) {
	disk := &stubLoader{entries: []Entry{{"DISK", 1}}}
	loader := NewFallbackLoader(nil, disk, "restock/", true, zerolog.Nop())

	entries, err := loader.Load(context.Background(), "feed.gz")

	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
