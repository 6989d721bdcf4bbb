// Package redact implements the redaction engine: it blurs user-drawn
// quadrilateral regions of an image, optionally writes replacement text over
// them, and persists the result in place while keeping a pristine backup.
//
// # Requests
//
// A Request holds exactly four vertices in percent of the image size (0-100
// on both axes) and an optional label. Requests are validated one by one; an
// invalid request is skipped and reported in Result.Skipped without aborting
// the rest of the batch.
//
// # Pipeline
//
// Engine.Redact processes one image per call:
//
//  1. Read the file and decode it. Missing files report ErrImageNotFound,
//     undecodable data ErrDecode. Nothing is written in either case.
//  2. Create "<path>.bak" with the original bytes unless it already exists.
//  3. For each valid request, in order: convert vertices to pixels, rasterize
//     the polygon into a mask, blur the current working buffer and copy the
//     blurred pixels inside the mask, then draw the label at the centroid.
//     Later requests see the effect of earlier ones, so overlapping regions
//     accumulate blur.
//  4. Encode the working buffer in the original format. Encoding failures
//     report ErrEncode and leave the original file untouched.
//  5. Replace the original file through a temporary sibling and rename.
//
// # Fonts
//
// Labels use a preferred system font when one can be found and parsed, and
// fall back to the embedded Go Regular font otherwise. Font problems are
// never errors.
//
// # Concurrency
//
// An Engine may be shared between goroutines, but callers must serialize
// Redact and Restore calls for the same path.
package redact
