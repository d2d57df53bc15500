package scan

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fakturo/fakturo/internal/models"
)

type fakeScanner struct {
	gotPayload string
	result     *models.OCRResult
	err        error
}

func (f *fakeScanner) ScanInvoice(_ context.Context, imageBase64 string) (*models.OCRResult, error) {
	f.gotPayload = imageBase64
	return f.result, f.err
}

func writeTestImage(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	var err error
	switch filepath.Ext(name) {
	case ".png":
		err = png.Encode(&buf, img)
	default:
		err = jpeg.Encode(&buf, img, nil)
	}
	require.NoError(t, err)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func TestEncodeFileProducesJPEGBase64(t *testing.T) {
	preparer := NewPreparer(nil, zap.NewNop())

	for _, name := range []string{"invoice.png", "invoice.jpg"} {
		t.Run(name, func(t *testing.T) {
			path := writeTestImage(t, t.TempDir(), name)

			encoded, err := preparer.EncodeFile(path)
			require.NoError(t, err)

			raw, err := base64.StdEncoding.DecodeString(encoded)
			require.NoError(t, err)

			// Whatever goes in, the payload is a decodable JPEG.
			_, err = jpeg.Decode(bytes.NewReader(raw))
			assert.NoError(t, err)
		})
	}
}

func TestEncodeFileRejectsUnsupportedType(t *testing.T) {
	preparer := NewPreparer(nil, zap.NewNop())

	path := filepath.Join(t.TempDir(), "invoice.docx")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0644))

	_, err := preparer.EncodeFile(path)
	assert.ErrorContains(t, err, "unsupported file type")
}

func TestEncodeFileMissingFile(t *testing.T) {
	preparer := NewPreparer(nil, zap.NewNop())

	_, err := preparer.EncodeFile(filepath.Join(t.TempDir(), "missing.jpg"))
	assert.ErrorContains(t, err, "not found")
}

func TestScanFileSubmitsEncodedPayload(t *testing.T) {
	scanner := &fakeScanner{result: &models.OCRResult{Supplier: "Метро"}}
	preparer := NewPreparer(scanner, zap.NewNop())

	path := writeTestImage(t, t.TempDir(), "invoice.png")
	result, err := preparer.ScanFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "Метро", result.Supplier)
	assert.NotEmpty(t, scanner.gotPayload)
	_, err = base64.StdEncoding.DecodeString(scanner.gotPayload)
	assert.NoError(t, err)
}
