package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/tealeg/xlsx"
)

// ErrEmptyWorkbook is returned for a workbook without sheets.
var ErrEmptyWorkbook = errors.New("workbook has no sheets")

// Decode parses a feed, choosing the format from the name's extension:
// .xlsx workbooks, and gzipped text for everything else.
func Decode(ctx context.Context, name string, r io.Reader) ([]Entry, error) {
	if strings.EqualFold(path.Ext(name), ".xlsx") {
		return ParseWorkbook(ctx, r)
	}
	return Parse(ctx, r)
}

// ParseWorkbook reads the first sheet of an .xlsx workbook. Column A holds the
// product id and column B the quantity. Empty rows, rows whose id starts
// with # and a leading header row are skipped.
func ParseWorkbook(ctx context.Context, r io.Reader) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}

	wb, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	if len(wb.Sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}

	var entries []Entry
	for i, row := range wb.Sheets[0].Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		id, qty := cellText(row, 0), cellText(row, 1)
		if (id == "" && qty == "") || strings.HasPrefix(id, "#") {
			continue
		}
		if i == 0 {
			if _, err := strconv.Atoi(qty); err != nil {
				continue
			}
		}

		entry, err := parseLine(id + "," + qty)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func cellText(row *xlsx.Row, col int) string {
	if row == nil || col >= len(row.Cells) || row.Cells[col] == nil {
		return ""
	}
	return strings.TrimSpace(row.Cells[col].String())
}
