package relay

import (
	"unicode/utf8"

	"github.com/sowonglabs/swap-sdk/pkg/swap"
)

// DefaultChunkLimit is the serialized size above which a payload is
// split into fragments before posting.
const DefaultChunkLimit = 1_000_000

// Chunk serializes value and splits the text into fragments of at most
// limit bytes sharing messageID. It never panics: any unexpected
// failure produces a single fragment wrapping the serializer fallback.
func Chunk(value any, messageID string, limit int) (frags []swap.ChunkFragment) {
	defer func() {
		if rec := recover(); rec != nil {
			frags = []swap.ChunkFragment{{
				Kind:      swap.FragmentKindChunk,
				MessageID: messageID,
				Index:     0,
				Total:     1,
				Payload:   fallbackJSON("Failed to stringify data", "chunking failed"),
			}}
		}
	}()

	return chunkText(Serialize(value), messageID, limit)
}

func chunkText(text, messageID string, limit int) []swap.ChunkFragment {
	if limit <= 0 {
		limit = DefaultChunkLimit
	}

	parts := splitText(text, limit)

	frags := make([]swap.ChunkFragment, len(parts))
	for i, part := range parts {
		frags[i] = swap.ChunkFragment{
			Kind:      swap.FragmentKindChunk,
			MessageID: messageID,
			Index:     i,
			Total:     len(parts),
			Payload:   part,
		}
	}

	return frags
}

// splitText slices text into contiguous parts of at most limit bytes,
// backing off so a multi-byte UTF-8 sequence is never split. An empty
// text still yields one empty part.
func splitText(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var parts []string
	for start := 0; start < len(text); {
		end := start + limit
		if end >= len(text) {
			parts = append(parts, text[start:])
			break
		}

		for end > start && !utf8.RuneStart(text[end]) {
			end--
		}
		if end == start {
			// a sequence longer than limit cannot happen with
			// valid UTF-8, cut mid-sequence rather than stall
			end = start + limit
		}

		parts = append(parts, text[start:end])
		start = end
	}

	return parts
}
