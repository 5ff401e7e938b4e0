// Package texture encodes atlas images for embedding and inspection.
package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
)

// PNGMimeType is the MIME type of EncodePNG output.
const PNGMimeType = "image/png"

var encoder = png.Encoder{CompressionLevel: png.BestCompression}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if img == nil {
		return fmt.Errorf("encoding PNG: nil image")
	}
	if err := encoder.Encode(w, img); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}

// PNGBytes returns img encoded as PNG.
func PNGBytes(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SavePNG writes img to path, creating parent directories.
func SavePNG(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := EncodePNG(file, img); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
