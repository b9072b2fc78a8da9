package feed

import (
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipped(t *testing.T, lines ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(strings.Join(lines, "\n")))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// writeFeed creates a gzipped feed file and returns its path.
func writeFeed(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "restock.gz")
	require.NoError(t, os.WriteFile(path, gzipped(t, lines...), 0o600))
	return path
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		lines   []string
		want    []Entry
		wantErr string
	}{
		{
			name:  "plain entries",
			lines: []string{"P001,5", "P002,12"},
			want:  []Entry{{ProductID: "P001", Quantity: 5}, {ProductID: "P002", Quantity: 12}},
		},
		{
			name:  "comments blanks and spacing",
			lines: []string{"# weekly delivery", "", "  P003 , 7  ", "   ", "#P004,1"},
			want:  []Entry{{ProductID: "P003", Quantity: 7}},
		},
		{
			name:  "repeated product kept as separate entries",
			lines: []string{"P001,1", "P001,2"},
			want:  []Entry{{ProductID: "P001", Quantity: 1}, {ProductID: "P001", Quantity: 2}},
		},
		{name: "empty feed", lines: []string{""}},
		{name: "missing comma", lines: []string{"P001,1", "P002 3"}, wantErr: "line 2"},
		{name: "missing product", lines: []string{",3"}, wantErr: "malformed"},
		{name: "zero quantity", lines: []string{"P001,0"}, wantErr: "positive integer"},
		{name: "negative quantity", lines: []string{"P001,-4"}, wantErr: "positive integer"},
		{name: "non numeric quantity", lines: []string{"P001,many"}, wantErr: "positive integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := Parse(context.Background(), bytes.NewReader(gzipped(t, tt.lines...)))

			if tt.wantErr != "" {
				require.ErrorIs(t, err, ErrMalformedLine)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, entries)
		})
	}
}

func TestParse_NotGzip(t *testing.T) {
	_, err := Parse(context.Background(), strings.NewReader("P001,1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gzip")
}
