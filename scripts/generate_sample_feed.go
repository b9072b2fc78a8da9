package main

import (
	"compress/gzip"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/tealeg/xlsx"
)

type entry struct {
	productID string
	quantity  int
}

// Writes a sample restock feed for local runs of cmd/restock. The format
// follows the extension of -out:
//
//	go run scripts/generate_sample_feed.go
//	go run scripts/generate_sample_feed.go -out data/restock/sample.xlsx
//	go run ./cmd/restock -file data/restock/sample.gz
func main() {
	out := flag.String("out", "data/restock/sample.gz", "feed file to write (.gz or .xlsx)")
	flag.Parse()

	if err := os.MkdirAll(filepath.Dir(*out), 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	entries := []entry{
		{"P001", 25},
		{"P002", 10},
		{"P003", 40},
		{"P001", 5}, // applied in file order
	}

	file, err := os.Create(*out)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", *out, err)
	}
	defer file.Close()

	if strings.EqualFold(filepath.Ext(*out), ".xlsx") {
		err = writeWorkbook(file, entries)
	} else {
		err = writeGzip(file, entries)
	}
	if err != nil {
		log.Fatalf("Failed to write %s: %v", *out, err)
	}

	fmt.Printf("Created %s with %d entries\n", *out, len(entries))
}

func writeGzip(w io.Writer, entries []entry) error {
	gzipWriter := gzip.NewWriter(w)
	fmt.Fprintln(gzipWriter, "# product_id,quantity")
	for _, e := range entries {
		if _, err := fmt.Fprintf(gzipWriter, "%s,%d\n", e.productID, e.quantity); err != nil {
			return fmt.Errorf("failed to write entry: %w", err)
		}
	}
	return gzipWriter.Close()
}

func writeWorkbook(w io.Writer, entries []entry) error {
	wb := xlsx.NewFile()
	sheet, err := wb.AddSheet("restock")
	if err != nil {
		return err
	}

	header := sheet.AddRow()
	header.AddCell().SetString("product_id")
	header.AddCell().SetString("quantity")
	for _, e := range entries {
		row := sheet.AddRow()
		row.AddCell().SetString(e.productID)
		row.AddCell().SetInt(e.quantity)
	}

	return wb.Write(w)
}
