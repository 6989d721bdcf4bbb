// Package ocr finds text in images and turns it into suggested redaction
// regions.
//
// Two engines find text. EngineTesseract wraps the Tesseract OCR engine via
// gosseract/v2. EngineEdges scores sliding windows by edge density and
// direction; it recognizes nothing and needs no Tesseract data. Detected
// boxes are converted to percent coordinates by Suggest, producing requests
// the redaction engine accepts directly. Suggestions never carry the
// recognized text: the words being redacted are usually the sensitive part,
// so labels are left empty for the user to fill in.
//
// # Prerequisites
//
// The Tesseract engine needs Tesseract installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr
//   - macOS: brew install tesseract
//   - Windows: Download from https://github.com/UB-Mannheim/tesseract/wiki
//
// Language data files are required for each language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr-eng (for English)
//   - Other languages: tesseract-ocr-<lang> packages
//
// # Detection Levels
//
// Options.Level selects the granularity of the returned boxes:
//
//   - LevelWord: one box per word (default)
//   - LevelLine: one box per text line
//   - LevelBlock: one box per paragraph-like block
//
// Word boxes hug the text tightly and suit names and numbers; block boxes
// cover whole addresses or signatures in a single region.
//
// # Error Handling
//
// Functions return errors for:
//   - Missing or invalid image files
//   - Unsupported language codes
//   - Tesseract initialization failures
package ocr
