package relay

import (
	"strings"
	"testing"

	"github.com/sowonglabs/swap-sdk/pkg/swap"
)

func TestChunk(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		limit         int
		expectedCount int
	}{
		{
			name:          "under the limit",
			text:          strings.Repeat("a", 10),
			limit:         100,
			expectedCount: 1,
		},
		{
			name:          "exactly the limit",
			text:          strings.Repeat("a", 100),
			limit:         100,
			expectedCount: 1,
		},
		{
			name:          "one byte over",
			text:          strings.Repeat("a", 101),
			limit:         100,
			expectedCount: 2,
		},
		{
			name:          "many fragments",
			text:          strings.Repeat("a", 1000),
			limit:         64,
			expectedCount: 16,
		},
		{
			name:          "empty text still yields one fragment",
			text:          "",
			limit:         100,
			expectedCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frags := chunkText(tt.text, "msg-1", tt.limit)

			if len(frags) != tt.expectedCount {
				t.Fatalf("expected %d fragments, got %d", tt.expectedCount, len(frags))
			}

			var joined strings.Builder
			for i, frag := range frags {
				if frag.Kind != swap.FragmentKindChunk {
					t.Errorf("fragment %d: expected kind %q, got %q", i, swap.FragmentKindChunk, frag.Kind)
				}
				if frag.MessageID != "msg-1" {
					t.Errorf("fragment %d: expected message id msg-1, got %s", i, frag.MessageID)
				}
				if frag.Index != i {
					t.Errorf("fragment %d: expected index %d, got %d", i, i, frag.Index)
				}
				if frag.Total != tt.expectedCount {
					t.Errorf("fragment %d: expected total %d, got %d", i, tt.expectedCount, frag.Total)
				}
				if len(frag.Payload) > tt.limit {
					t.Errorf("fragment %d: payload exceeds the limit: %d > %d", i, len(frag.Payload), tt.limit)
				}

				joined.WriteString(frag.Payload)
			}

			if joined.String() != tt.text {
				t.Error("joined fragments do not reproduce the original text")
			}
		})
	}
}

func TestChunkSerializesValue(t *testing.T) {
	frags := Chunk(map[string]any{"hello": "world"}, "msg-2", 0)

	if len(frags) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(frags))
	}

	if frags[0].Payload != `{"hello":"world"}` {
		t.Errorf("unexpected payload: %s", frags[0].Payload)
	}
}

func TestChunkKeepsRunesIntact(t *testing.T) {
	text := strings.Repeat("é", 10) // 2 bytes each

	frags := chunkText(text, "msg-3", 3)

	var joined strings.Builder
	for _, frag := range frags {
		if !strings.HasPrefix(frag.Payload, "é") {
			t.Errorf("fragment payload starts mid-sequence: %q", frag.Payload)
		}
		joined.WriteString(frag.Payload)
	}

	if joined.String() != text {
		t.Error("joined fragments do not reproduce the original text")
	}
}
