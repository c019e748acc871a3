// Package imaging は商品画像のサムネイルを作る。
package imaging

import (
	"bytes"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

type Thumbnailer struct {
	quality int
}

func NewThumbnailer() *Thumbnailer {
	return &Thumbnailer{quality: 85}
}

// Thumbnail は幅 width のJPEGを返す（縦横比は維持、元より大きくはしない）。
func (t *Thumbnailer) Thumbnail(src io.Reader, width int) ([]byte, string, error) {
	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("imaging: decode: %w", err)
	}

	if img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(t.quality)); err != nil {
		return nil, "", fmt.Errorf("imaging: encode: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}
