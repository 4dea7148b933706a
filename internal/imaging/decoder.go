package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	apperrors "go-object-recognizer/internal/errors"
)

// Decode parses raw bytes as an image container, auto-detecting the format
// from content. Supported formats are the ones registered above.
func Decode(raw []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, apperrors.NewDecodeError("unrecognized image format", err)
	}
	return img, nil
}

// DecodeBase64 decodes a base64 image payload. The string may carry a data-URL
// prefix (data:image/...;base64,<data>); everything up to and including the
// first comma is stripped before decoding.
func DecodeBase64(data string) (image.Image, error) {
	if strings.HasPrefix(data, "data:") {
		if idx := strings.Index(data, ","); idx >= 0 {
			data = data[idx+1:]
		}
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, apperrors.NewDecodeError("invalid base64 image data", err)
	}

	return Decode(raw)
}
