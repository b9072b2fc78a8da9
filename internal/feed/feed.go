package feed

import (
	"bufio"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrMalformedLine is returned for a feed line that is not product_id,quantity.
var ErrMalformedLine = errors.New("malformed feed line")

// Entry is one restock instruction: add Quantity units to ProductID.
type Entry struct {
	ProductID string
	Quantity  int
}

// Loader defines the interface for loading restock feeds.
type Loader interface {
	// Load reads a gzipped feed and returns its entries in file order.
	Load(ctx context.Context, path string) ([]Entry, error)
}

// Parse reads a gzipped feed of product_id,quantity lines. Blank lines and
// lines starting with # are skipped.
func Parse(ctx context.Context, r io.Reader) ([]Entry, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	var entries []Entry
	scanner := bufio.NewScanner(gzipReader)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%10_000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}

	return entries, nil
}

func parseLine(line string) (Entry, error) {
	id, qty, ok := strings.Cut(line, ",")
	id = strings.TrimSpace(id)
	if !ok || id == "" {
		return Entry{}, fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}

	n, err := strconv.Atoi(strings.TrimSpace(qty))
	if err != nil || n <= 0 {
		return Entry{}, fmt.Errorf("%w: quantity must be a positive integer in %q", ErrMalformedLine, line)
	}

	return Entry{ProductID: id, Quantity: n}, nil
}
