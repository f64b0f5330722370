package build

import (
	"bytes"
	"fmt"
	"image/gif"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"
)

// ImageOptimizer re-encodes raster images and keeps the result only when it
// is smaller than the original.
type ImageOptimizer struct {
	JPEGQuality int
}

// NewImageOptimizer creates an optimizer using quality for JPEG output.
func NewImageOptimizer(quality int) *ImageOptimizer {
	return &ImageOptimizer{JPEGQuality: quality}
}

// Optimize returns the optimized bytes of an image named name. Formats it
// does not know are returned unchanged. Undecodable PNG, JPEG and GIF data
// is an error.
func (o *ImageOptimizer) Optimize(name string, data []byte) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return o.optimizePNG(data)
	case ".jpg", ".jpeg":
		return o.optimizeJPEG(data)
	case ".gif":
		// Re-encoding would drop palette tweaks and timing; only check it decodes.
		if _, err := gif.DecodeAll(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("decode gif: %w", err)
		}
		return data, nil
	default:
		return data, nil
	}
}

func (o *ImageOptimizer) optimizePNG(data []byte) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return smaller(buf.Bytes(), data), nil
}

func (o *ImageOptimizer) optimizeJPEG(data []byte) ([]byte, error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode jpeg: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: o.JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return smaller(buf.Bytes(), data), nil
}

func smaller(candidate, original []byte) []byte {
	if len(candidate) < len(original) {
		return candidate
	}
	return original
}
