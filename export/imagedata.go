package export

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/url"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

var errNotDataURL = errors.New("image source is not a data URL")

// ImageData is a decoded image source ready to embed.
type ImageData struct {
	Bytes []byte
	MIME  string
}

// DecodeDataURL decodes a self-contained image reference. Base64 and
// percent-encoded payloads are accepted. WebP payloads are re-encoded as
// PNG because slide packages and PDF writers cannot embed them.
func DecodeDataURL(src string) (ImageData, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(src), "data:")
	if !ok {
		return ImageData{}, errNotDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return ImageData{}, fmt.Errorf("data URL has no payload")
	}

	mime := "image/png"
	isBase64 := false
	for i, part := range strings.Split(meta, ";") {
		switch {
		case i == 0 && part != "":
			mime = strings.ToLower(part)
		case part == "base64":
			isBase64 = true
		}
	}

	var data []byte
	var err error
	if isBase64 {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
	} else {
		var s string
		s, err = url.PathUnescape(payload)
		data = []byte(s)
	}
	if err != nil {
		return ImageData{}, fmt.Errorf("decode image payload: %w", err)
	}
	if len(data) == 0 {
		return ImageData{}, fmt.Errorf("empty image payload")
	}

	if mime == "image/webp" {
		img, err := webp.Decode(bytes.NewReader(data))
		if err != nil {
			return ImageData{}, fmt.Errorf("decode webp: %w", err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return ImageData{}, fmt.Errorf("re-encode webp as png: %w", err)
		}
		return ImageData{Bytes: buf.Bytes(), MIME: "image/png"}, nil
	}
	if mime == "image/jpg" {
		mime = "image/jpeg"
	}
	return ImageData{Bytes: data, MIME: mime}, nil
}

// scaleToWidth resizes img to the given width keeping its aspect ratio.
// Images already that wide are returned unchanged.
func scaleToWidth(img image.Image, width int) image.Image {
	b := img.Bounds()
	if width <= 0 || b.Dx() == 0 || b.Dx() == width {
		return img
	}
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
