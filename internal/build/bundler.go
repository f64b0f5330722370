package build

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/js"
)

// Media types understood by AssetBundler.
const (
	MediaTypeCSS        = "text/css"
	MediaTypeJavaScript = "application/javascript"
)

// AssetBundler concatenates sources and minifies the result.
type AssetBundler struct {
	minifier *minify.M
}

// NewAssetBundler creates a bundler with CSS and JavaScript minifiers.
func NewAssetBundler() *AssetBundler {
	m := minify.New()
	m.AddFunc(MediaTypeCSS, css.Minify)
	m.AddFunc(MediaTypeJavaScript, js.Minify)
	return &AssetBundler{minifier: m}
}

// Concat joins the contents of files with a newline, in the given order.
func (b *AssetBundler) Concat(ctx context.Context, files []string) ([]byte, error) {
	var buf bytes.Buffer
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(content)
	}
	return buf.Bytes(), nil
}

// Minify minifies src as mediaType.
func (b *AssetBundler) Minify(mediaType string, src []byte) ([]byte, error) {
	out, err := b.minifier.Bytes(mediaType, src)
	if err != nil {
		return nil, fmt.Errorf("minify %s: %w", mediaType, err)
	}
	return out, nil
}

// Bundle concatenates files, minifies the result and writes it to dest.
// The output depends only on the input bytes and their order.
func (b *AssetBundler) Bundle(ctx context.Context, files []string, mediaType, dest string) error {
	merged, err := b.Concat(ctx, files)
	if err != nil {
		return err
	}
	minified, err := b.Minify(mediaType, merged)
	if err != nil {
		return err
	}
	return writeFile(dest, minified)
}
