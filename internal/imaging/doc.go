// Package imaging provides the image plumbing shared by the redaction engine,
// the HTTP API and the MCP server.
//
// It owns the allow-list of raster formats the tool accepts, decoding of image
// bytes, format-aware encoding back to the original file type, a small cache of
// decoded images for read-only operations and region previews.
//
// # Supported Formats
//
// Only files with one of these extensions (case-insensitive) are handled:
//   - ".png"          -> FormatPNG
//   - ".jpg", ".jpeg" -> FormatJPEG
//   - ".gif"          -> FormatGIF
//   - ".webp"         -> FormatWebP
//
// Anything else is rejected with ErrUnsupportedFormat before any decoding is
// attempted.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Rectangles follow the
// image.Rectangle convention: Min is inclusive, Max is exclusive.
//
// # Encoding
//
// Encode writes an image in a given Format. JPEG has no alpha channel, so
// images are flattened onto an opaque background first; PNG keeps alpha and
// 16-bit depth. GIF is written with a caller-supplied palette, normally the
// source palette, so transparency survives. WebP is written lossless.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The remaining functions are stateless.
package imaging
