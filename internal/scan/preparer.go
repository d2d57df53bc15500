// Package scan prepares a local invoice file for the OCR service: a
// photographed JPEG/PNG is used as-is, a PDF has its first page
// rendered to an image via mupdf. The encoded result goes to the
// backend; field extraction itself never happens on the client.
package scan

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"

	"github.com/fakturo/fakturo/internal/models"
)

// Scanner is the subset of the API client used here.
type Scanner interface {
	ScanInvoice(ctx context.Context, imageBase64 string) (*models.OCRResult, error)
}

// Preparer converts local files into OCR submissions.
type Preparer struct {
	client Scanner
	logger *zap.Logger
}

// NewPreparer creates a scan preparer over the API client.
func NewPreparer(client Scanner, logger *zap.Logger) *Preparer {
	return &Preparer{
		client: client,
		logger: logger,
	}
}

// ScanFile encodes the invoice at path and submits it for extraction.
func (p *Preparer) ScanFile(ctx context.Context, path string) (*models.OCRResult, error) {
	encoded, err := p.EncodeFile(path)
	if err != nil {
		return nil, err
	}
	return p.client.ScanInvoice(ctx, encoded)
}

// EncodeFile produces the base64 JPEG payload for path.
func (p *Preparer) EncodeFile(path string) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", fmt.Errorf("invoice file not found: %s", path)
	}

	var imgBytes []byte
	var err error

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		imgBytes, err = p.renderPDFPage(path)
	case ".jpg", ".jpeg", ".png":
		imgBytes, err = p.readImageFile(path)
	default:
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(imgBytes), nil
}

// renderPDFPage renders the first PDF page to JPEG. Invoices are
// single-page documents in practice; later pages are carbon copies.
func (p *Preparer) renderPDFPage(path string) ([]byte, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, fmt.Errorf("PDF has no pages: %s", path)
	}

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("failed to render PDF page: %w", err)
	}

	p.logger.Debug("Rendered PDF page for OCR",
		zap.String("path", path),
		zap.Int("total_pages", doc.NumPage()))

	return encodeJPEG(img)
}

func (p *Preparer) readImageFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	var img image.Image
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(file)
	case ".png":
		img, err = png.Decode(file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return encodeJPEG(img)
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}
