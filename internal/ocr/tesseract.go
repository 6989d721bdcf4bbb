package ocr

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// Level is the granularity of detected text boxes.
type Level string

const (
	LevelWord  Level = "word"
	LevelLine  Level = "line"
	LevelBlock Level = "block"
)

// ParseLevel validates a level name. The empty string means LevelWord.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToLower(s)) {
	case "", LevelWord:
		return LevelWord, nil
	case LevelLine:
		return LevelLine, nil
	case LevelBlock:
		return LevelBlock, nil
	}
	return "", fmt.Errorf("unknown OCR level %q (want word, line or block)", s)
}

// Engine selects the text detector.
type Engine string

const (
	// EngineTesseract recognizes text with Tesseract.
	EngineTesseract Engine = "tesseract"

	// EngineEdges scores edge density; see DetectEdgeDensity.
	EngineEdges Engine = "edges"
)

// ParseEngine validates an engine name. The empty string means
// EngineTesseract.
func ParseEngine(s string) (Engine, error) {
	switch Engine(strings.ToLower(s)) {
	case "", EngineTesseract:
		return EngineTesseract, nil
	case EngineEdges:
		return EngineEdges, nil
	}
	return "", fmt.Errorf("unknown OCR engine %q (want tesseract or edges)", s)
}

func (l Level) iteratorLevel() gosseract.PageIteratorLevel {
	switch l {
	case LevelLine:
		return gosseract.RIL_TEXTLINE
	case LevelBlock:
		return gosseract.RIL_BLOCK
	}
	return gosseract.RIL_WORD
}

// Options controls detection and suggestion.
type Options struct {
	// Engine picks Tesseract or the edge-density heuristic.
	Engine Engine

	// Language is the Tesseract language code, e.g. "eng".
	Language string

	// Level selects word, line or block boxes.
	Level Level

	// MinConfidence (0.0 to 1.0) drops boxes Tesseract is less sure about.
	MinConfidence float64

	// Padding grows every suggested box by this many pixels on each side.
	Padding int
}

// DefaultOptions returns English word-level Tesseract detection at 50% confidence with
// a 2 pixel margin.
func DefaultOptions() Options {
	return Options{
		Engine:        EngineTesseract,
		Language:      "eng",
		Level:         LevelWord,
		MinConfidence: 0.5,
		Padding:       2,
	}
}

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Rect converts the bounds to an image.Rectangle.
func (b Bounds) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// TextRegion is a detected piece of text with its location and confidence.
type TextRegion struct {
	// Text is the recognized text content.
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Bounds is the bounding box around this text in the image.
	Bounds Bounds `json:"bounds"`
}

// DetectImage finds text in img, which was decoded from imagePath, with the
// engine opts selects.
func DetectImage(imagePath string, img image.Image, opts Options) ([]TextRegion, error) {
	if opts.Engine == EngineEdges {
		return DetectEdgeDensity(img, opts), nil
	}
	return Detect(imagePath, opts)
}

// Detect runs Tesseract on the image file at imagePath and returns the text
// boxes at opts.Level.
//
// Word-level results with empty text are dropped. Confidence filtering is
// left to Suggest so callers can inspect everything Tesseract found.
func Detect(imagePath string, opts Options) ([]TextRegion, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := configure(client, opts); err != nil {
		return nil, err
	}
	if err := client.SetImage(imagePath); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}
	return boxes(client, opts.Level)
}

// DetectInRegion runs Tesseract on the part of img inside area. Returned
// bounds are relative to the full image.
//
// For example, if the area starts at (100, 50) and a word is detected at
// (10, 20) within it, the returned bounds start at (110, 70).
func DetectInRegion(img image.Image, area image.Rectangle, opts Options) ([]TextRegion, error) {
	area = area.Intersect(img.Bounds())
	if area.Empty() {
		return nil, fmt.Errorf("OCR area %v lies outside the image", area)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.Crop(img, area), imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode OCR area: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := configure(client, opts); err != nil {
		return nil, err
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	regions, err := boxes(client, opts.Level)
	if err != nil {
		return nil, err
	}
	for i := range regions {
		regions[i].Bounds.X1 += area.Min.X
		regions[i].Bounds.Y1 += area.Min.Y
		regions[i].Bounds.X2 += area.Min.X
		regions[i].Bounds.Y2 += area.Min.Y
	}
	return regions, nil
}

// Version returns the Tesseract library version.
func Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}

func configure(client *gosseract.Client, opts Options) error {
	lang := opts.Language
	if lang == "" {
		lang = "eng"
	}
	if err := client.SetLanguage(lang); err != nil {
		return fmt.Errorf("failed to set language: %w", err)
	}
	return nil
}

func boxes(client *gosseract.Client, level Level) ([]TextRegion, error) {
	found, err := client.GetBoundingBoxes(level.iteratorLevel())
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	regions := make([]TextRegion, 0, len(found))
	for _, box := range found {
		text := strings.TrimSpace(box.Word)
		if text == "" && level.iteratorLevel() == gosseract.RIL_WORD {
			continue
		}
		regions = append(regions, TextRegion{
			Text:       text,
			Confidence: float64(box.Confidence) / 100.0,
			Bounds: Bounds{
				X1: box.Box.Min.X,
				Y1: box.Box.Min.Y,
				X2: box.Box.Max.X,
				Y2: box.Box.Max.Y,
			},
		})
	}
	return regions, nil
}
