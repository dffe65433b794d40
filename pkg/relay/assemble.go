package relay

import (
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/sowonglabs/swap-sdk/pkg/swap"
)

// DefaultAssembleTimeout is how long an incomplete fragment set is kept
// before it is discarded.
const DefaultAssembleTimeout = 30 * time.Second

type pendingChunks struct {
	total    int
	received int
	parts    []string
	have     []bool
	timer    *time.Timer
}

// Assembler buffers chunk fragments by message id until a complete set
// arrives, then reconstructs the original payload. Incomplete sets
// expire after the timeout; the timer for an id is reset by every
// fragment received for it.
type Assembler struct {
	mu      sync.Mutex
	timeout time.Duration
	pending map[string]*pendingChunks
}

func NewAssembler(timeout time.Duration) *Assembler {
	if timeout <= 0 {
		timeout = DefaultAssembleTimeout
	}

	return &Assembler{
		timeout: timeout,
		pending: map[string]*pendingChunks{},
	}
}

// OnFragment inserts frag into its message's buffer. It returns the
// reconstructed payload and true once the final fragment arrives. A
// payload that no longer parses is replaced by a fallback error value
// rather than an error return, the caller always gets valid JSON.
func (a *Assembler) OnFragment(frag swap.ChunkFragment) (json.RawMessage, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pending == nil {
		// closed
		return nil, false
	}

	if frag.Total <= 0 || frag.Index < 0 || frag.Index >= frag.Total {
		log.Default().Println("dropping malformed fragment for message: ", frag.MessageID)
		return nil, false
	}

	p, ok := a.pending[frag.MessageID]
	if !ok {
		p = &pendingChunks{
			total: frag.Total,
			parts: make([]string, frag.Total),
			have:  make([]bool, frag.Total),
		}
		a.pending[frag.MessageID] = p
	}

	// total is fixed by the first fragment observed for this id
	if frag.Index >= p.total {
		log.Default().Println("dropping out-of-range fragment for message: ", frag.MessageID)
		return nil, false
	}

	if !p.have[frag.Index] {
		p.have[frag.Index] = true
		p.parts[frag.Index] = frag.Payload
		p.received++
	}

	if p.timer != nil {
		p.timer.Stop()
	}

	if p.received < p.total {
		id := frag.MessageID
		p.timer = time.AfterFunc(a.timeout, func() {
			a.expire(id)
		})
		return nil, false
	}

	delete(a.pending, frag.MessageID)

	text := strings.Join(p.parts, "")

	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return json.RawMessage(fallbackJSON("Failed to assemble chunks", err.Error())), true
	}

	return json.RawMessage(text), true
}

// Pending reports the number of buffered incomplete messages.
func (a *Assembler) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.pending)
}

func (a *Assembler) expire(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pending == nil {
		return
	}

	if _, ok := a.pending[id]; ok {
		delete(a.pending, id)
		log.Default().Println("discarding expired partial message: ", id)
	}
}

// Close cancels every pending timer and drops all buffers. No timer
// fires into released state afterwards.
func (a *Assembler) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, p := range a.pending {
		if p.timer != nil {
			p.timer.Stop()
		}
	}

	a.pending = nil
}
