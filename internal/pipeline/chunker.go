package pipeline

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"docqa-go/internal/config"
)

const (
	// DefaultChunkSize is the sliding window length in runes.
	DefaultChunkSize = 500
	// DefaultOverlap is how many runes consecutive windows share.
	DefaultOverlap = 100
)

// ErrInvalidChunkConfig is returned when the window parameters cannot make progress.
var ErrInvalidChunkConfig = errors.New("invalid chunk configuration")

// span is a half-open rune range [start, end) of the source text.
type span struct {
	start, end int
}

// ChunkText splits text into overlapping windows of at most chunkSize runes.
// A window that does not reach the end of the text is shortened to end just
// after its last '.', '\n' or ' ' when that boundary lies past the window's
// midpoint. Chunks are trimmed and empty ones dropped.
func ChunkText(text string, chunkSize, overlap int) ([]string, error) {
	runes := []rune(text)
	spans, err := chunkSpans(runes, chunkSize, overlap)
	if err != nil {
		return nil, err
	}
	chunks := make([]string, 0, len(spans))
	for _, s := range spans {
		if chunk := strings.TrimSpace(string(runes[s.start:s.end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks, nil
}

func chunkSpans(runes []rune, chunkSize, overlap int) ([]span, error) {
	if chunkSize <= 0 || overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("%w: chunkSize=%d overlap=%d", ErrInvalidChunkConfig, chunkSize, overlap)
	}
	var spans []span
	for start := 0; start < len(runes); {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		if end < len(runes) {
			if cut := lastBoundary(runes[start:end]); cut >= 0 && float64(cut) > float64(chunkSize)*0.5 {
				end = start + cut + 1
			}
		}
		spans = append(spans, span{start: start, end: end})
		if end == len(runes) {
			break
		}
		advance := (end - start) - overlap
		if advance <= 0 {
			return nil, fmt.Errorf("%w: window at %d does not advance (length %d, overlap %d)",
				ErrInvalidChunkConfig, start, end-start, overlap)
		}
		start += advance
	}
	return spans, nil
}

// lastBoundary returns the offset of the last sentence, line or word break in window, or -1.
func lastBoundary(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		switch window[i] {
		case '.', '\n', ' ':
			return i
		}
	}
	return -1
}

// minWindowLength is the shortest non-final window chunkSpans can produce:
// the first boundary past the midpoint plus the boundary rune itself.
func minWindowLength(chunkSize int) int {
	return min(chunkSize, chunkSize/2+2)
}

var blankLine = regexp.MustCompile(`\n[ \t]*\n`)

// SplitParagraphs splits text on blank lines and returns the trimmed, non-empty paragraphs.
func SplitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, p := range blankLine.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Segmenter turns a document's text into the segments that get embedded.
type Segmenter func(text string) ([]string, error)

// ParagraphSegmenter segments on blank lines.
func ParagraphSegmenter(text string) ([]string, error) {
	return SplitParagraphs(text), nil
}

// WindowSegmenter returns a Segmenter backed by ChunkText.
func WindowSegmenter(chunkSize, overlap int) Segmenter {
	return func(text string) ([]string, error) {
		return ChunkText(text, chunkSize, overlap)
	}
}

// NewSegmenter builds the segmenter selected by the chunker config.
func NewSegmenter(cfg config.ChunkerConfig) (Segmenter, error) {
	switch cfg.Mode {
	case "paragraph", "":
		return ParagraphSegmenter, nil
	case "window":
		size, overlap := cfg.ChunkSize, cfg.Overlap
		if size == 0 {
			size, overlap = DefaultChunkSize, DefaultOverlap
		}
		if _, err := chunkSpans(nil, size, overlap); err != nil {
			return nil, err
		}
		// a window snapped to a boundary can shrink to minWindowLength runes,
		// so the overlap must stay below that for every window to advance
		if minLen := minWindowLength(size); overlap >= minLen {
			return nil, fmt.Errorf("%w: overlap %d must be below %d, the shortest window for chunkSize %d",
				ErrInvalidChunkConfig, overlap, minLen, size)
		}
		return WindowSegmenter(size, overlap), nil
	default:
		return nil, fmt.Errorf("unknown chunker mode %q", cfg.Mode)
	}
}
