package relay

import (
	"encoding/json"
	"errors"
	"math"
	"math/big"
	"strings"
	"testing"
)

func TestSerialize(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{
			name:     "nil",
			value:    nil,
			expected: `null`,
		},
		{
			name:     "string",
			value:    "hello",
			expected: `"hello"`,
		},
		{
			name:     "plain map",
			value:    map[string]any{"a": 1.5, "b": true},
			expected: `{"a":1.5,"b":true}`,
		},
		{
			name:     "list",
			value:    []any{"a", 2, nil},
			expected: `["a",2,null]`,
		},
		{
			name:     "big integer renders as decimal string",
			value:    map[string]any{"value": big.NewInt(0).SetUint64(18446744073709551615)},
			expected: `{"value":"18446744073709551615"}`,
		},
		{
			name:     "raw message passes through",
			value:    map[string]any{"id": json.RawMessage(`"abc-1"`)},
			expected: `{"id":"abc-1"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := Serialize(tt.value)
			if actual != tt.expected {
				t.Errorf("Serialize(%v): expected %s, but got %s", tt.value, tt.expected, actual)
			}
		})
	}
}

func TestSerializeError(t *testing.T) {
	out := Serialize(map[string]any{"err": errors.New("boom")})

	var parsed struct {
		Err struct {
			Name    string `json:"name"`
			Message string `json:"message"`
			Stack   string `json:"stack"`
		} `json:"err"`
	}
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatal(err)
	}

	if parsed.Err.Message != "boom" {
		t.Errorf("expected message %q, got %q", "boom", parsed.Err.Message)
	}

	if parsed.Err.Name == "" {
		t.Error("expected a non-empty error name")
	}
}

func TestSerializeCycle(t *testing.T) {
	t.Run("self-referencing map", func(t *testing.T) {
		m := map[string]any{"name": "loop"}
		m["self"] = m

		out := Serialize(m)

		if !strings.Contains(out, `"self":"[Circular]"`) {
			t.Errorf("expected the self reference to collapse to the sentinel, got %s", out)
		}

		if !strings.Contains(out, `"name":"loop"`) {
			t.Errorf("expected the rest of the value to survive, got %s", out)
		}
	})

	t.Run("pointer cycle", func(t *testing.T) {
		type node struct {
			Label string `json:"label"`
			Next  *node  `json:"next"`
		}

		a := &node{Label: "a"}
		b := &node{Label: "b", Next: a}
		a.Next = b

		out := Serialize(a)

		if !strings.Contains(out, CircularSentinel) {
			t.Errorf("expected the sentinel in %s", out)
		}
	})

	t.Run("slice cycle", func(t *testing.T) {
		s := make([]any, 2)
		s[0] = "first"
		s[1] = s

		out := Serialize(s)

		if !strings.Contains(out, CircularSentinel) {
			t.Errorf("expected the sentinel in %s", out)
		}
	})
}

func TestSerializeSharedIdentities(t *testing.T) {
	t.Run("two empty lists", func(t *testing.T) {
		out := Serialize(map[string]any{"a": []string{}, "b": []string{}})

		expected := `{"a":[],"b":[]}`
		if out != expected {
			t.Errorf("expected %s, got %s", expected, out)
		}
	})

	t.Run("subslices of one array", func(t *testing.T) {
		s := []int{1, 2, 3}

		out := Serialize([]any{s[:1], s[:2]})

		expected := `[[1],[1,2]]`
		if out != expected {
			t.Errorf("expected %s, got %s", expected, out)
		}
	})

	t.Run("pointers to zero-size values", func(t *testing.T) {
		type empty struct{}

		out := Serialize([]any{&empty{}, &empty{}})

		expected := `[{},{}]`
		if out != expected {
			t.Errorf("expected %s, got %s", expected, out)
		}
	})

	t.Run("empty slice next to a cycle", func(t *testing.T) {
		m := map[string]any{"tags": []string{}}
		m["self"] = m

		out := Serialize(m)

		if !strings.Contains(out, `"tags":[]`) {
			t.Errorf("expected the empty list to survive, got %s", out)
		}

		if !strings.Contains(out, `"self":"[Circular]"`) {
			t.Errorf("expected only the true cycle to collapse, got %s", out)
		}
	})
}

func TestSerializeFallback(t *testing.T) {
	out := Serialize(math.NaN())

	var parsed map[string]string
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatal(err)
	}

	if parsed["error"] != "Failed to stringify data" {
		t.Errorf("expected the fallback object, got %s", out)
	}

	if parsed["message"] == "" {
		t.Error("expected a failure description")
	}
}

func TestSerializeStructTags(t *testing.T) {
	type payload struct {
		Hash    string   `json:"hash"`
		Skipped string   `json:"-"`
		Empty   string   `json:"empty,omitempty"`
		Chain   *big.Int `json:"chain"`
	}

	out := Serialize(payload{Hash: "0xabc", Skipped: "x", Chain: big.NewInt(137)})

	expected := `{"chain":"137","hash":"0xabc"}`
	if out != expected {
		t.Errorf("expected %s, got %s", expected, out)
	}
}
