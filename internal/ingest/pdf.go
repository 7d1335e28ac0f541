package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	rpdf "rsc.io/pdf"
)

const maxPDFBytes = 15 * 1024 * 1024

// extractPDFText flattens every page of a PDF into plain text. The rsc.io
// parser panics on malformed files, so the panic is converted to an error.
func extractPDFText(content []byte) (text string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("pdf parser panic: %v", recovered)
			text = ""
		}
	}()

	reader, err := rpdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		for _, fragment := range page.Content().Text {
			builder.WriteString(fragment.S)
			builder.WriteString(" ")
		}
		builder.WriteString("\n")
	}

	return builder.String(), nil
}

// FetchPDFText downloads a PDF and returns its text.
func FetchPDFText(ctx context.Context, fetcher Fetcher, pdfURL string) (string, error) {
	doc, err := fetcher.Fetch(ctx, pdfURL)
	if err != nil {
		return "", err
	}
	defer doc.Body.Close()

	content, err := io.ReadAll(io.LimitReader(doc.Body, maxPDFBytes))
	if err != nil {
		return "", fmt.Errorf("pdf read failed: %w", err)
	}

	text, err := extractPDFText(content)
	if err != nil {
		return "", fmt.Errorf("pdf text extraction failed: %w", err)
	}
	return text, nil
}
