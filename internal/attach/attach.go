// Package attach processes purchase request attachments (safety data sheets,
// supplier quotes) before they are stored.
package attach

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// MaxDimension is the maximum width or height for stored image attachments.
const MaxDimension = 1024

// JPEGQuality is the compression quality for re-encoded image attachments.
const JPEGQuality = 85

// MaxPDFSize caps PDF attachments, which are stored verbatim.
const MaxPDFSize = 10 << 20

// Result contains the processed attachment data.
type Result struct {
	Data []byte
	MIME string
}

// Process reads attachment data and validates the format by sniffing bytes,
// not trusting client headers. Image attachments (JPEG/PNG) are downscaled if
// larger than MaxDimension and re-encoded as JPEG; PDFs pass through with a
// size cap. Anything else is rejected.
func Process(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading attachment data: %w", err)
	}

	detected := http.DetectContentType(data)
	switch detected {
	case "application/pdf":
		if len(data) > MaxPDFSize {
			return nil, fmt.Errorf("PDF attachment too large: %d bytes (max %d)", len(data), MaxPDFSize)
		}
		return &Result{Data: data, MIME: detected}, nil
	case "image/jpeg", "image/png":
		return processImage(data)
	default:
		return nil, fmt.Errorf("unsupported attachment format: %s (only JPEG, PNG, and PDF accepted)", detected)
	}
}

// processImage decodes, downscales, and re-encodes an image attachment.
// Always outputs JPEG for consistency and smaller file sizes.
func processImage(data []byte) (*Result, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img = downscale(img, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	return &Result{Data: buf.Bytes(), MIME: "image/jpeg"}, nil
}

// downscale resizes the image so neither dimension exceeds maxDim.
// Uses high-quality Catmull-Rom interpolation.
// Returns the original image if already within bounds.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := w, h
	if w > h {
		newW = maxDim
		newH = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		newH = maxDim
		newW = int(float64(w) * float64(maxDim) / float64(h))
	}

	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func init() {
	// Register decoders (jpeg is registered by default, but be explicit).
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
}
