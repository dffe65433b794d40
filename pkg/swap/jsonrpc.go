package swap

import "encoding/json"

const JsonRPCVersion = "2.0"

type JsonRPCRequest struct {
	Version string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

func (r *JsonRPCRequest) IsValid() bool {
	return r.Version == JsonRPCVersion && len(r.ID) > 0 && r.Method != ""
}

type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type JsonRPCResponse struct {
	Version string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result"`
	Error   *JSONRPCError   `json:"error,omitempty"`
}

const (
	// ErrCodeServer covers provider failures, invalid params and
	// provider absence, matching what wallet extensions return.
	ErrCodeServer = -32000

	ErrCodeMethodNotFound = -32601
)

const FragmentKindChunk = "chunk"

// ChunkFragment is one slice of an oversized serialized message.
// Index is 0-based, Total is fixed when the message is split.
type ChunkFragment struct {
	Kind      string `json:"kind"`
	MessageID string `json:"messageId"`
	Index     int    `json:"index"`
	Total     int    `json:"total"`
	Payload   string `json:"payload"`
}

// ParseFragment sniffs data for the chunk fragment shape. There is no
// outer envelope tag, fragments are recognized by kind == "chunk".
func ParseFragment(data []byte) (ChunkFragment, bool) {
	var frag ChunkFragment
	if err := json.Unmarshal(data, &frag); err != nil {
		return frag, false
	}

	return frag, frag.Kind == FragmentKindChunk
}
