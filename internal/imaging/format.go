package imaging

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for files outside the extension allow-list
// and for formats that cannot be encoded.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Format identifies one of the allow-listed raster formats.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatGIF  Format = "gif"
	FormatWebP Format = "webp"
)

var extensions = map[string]Format{
	".png":  FormatPNG,
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".gif":  FormatGIF,
	".webp": FormatWebP,
}

// FormatFromPath maps a file name to its Format using the lower-cased
// extension. Unknown extensions yield an error wrapping ErrUnsupportedFormat.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, filepath.Base(path))
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
}

// IsSupported reports whether path carries an allow-listed extension.
func IsSupported(path string) bool {
	_, err := FormatFromPath(path)
	return err == nil
}

// HasAlpha reports whether the format can store transparency.
func (f Format) HasAlpha() bool {
	switch f {
	case FormatPNG, FormatGIF, FormatWebP:
		return true
	}
	return false
}

// CanEncode reports whether Encode supports the format.
func (f Format) CanEncode() bool {
	switch f {
	case FormatPNG, FormatJPEG, FormatGIF, FormatWebP:
		return true
	}
	return false
}

// MimeType returns the IANA media type for the format.
func (f Format) MimeType() string {
	return "image/" + string(f)
}
