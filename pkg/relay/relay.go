package relay

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sowonglabs/swap-sdk/pkg/queue"
	"github.com/sowonglabs/swap-sdk/pkg/swap"
)

// ProviderDialer acquires the wallet provider. It is called lazily, on
// the first request that needs the provider, and again on later
// requests if acquisition failed.
type ProviderDialer func(ctx context.Context) (swap.WalletProvider, error)

type Options struct {
	// FrameURL is the swap frame's address. Its origin is both the
	// only trusted message origin and the target of every post.
	FrameURL string

	// Production tightens the origin gate to the frame origin only.
	Production bool

	// ChunkLimit is the serialized size above which responses are
	// fragmented. Defaults to DefaultChunkLimit.
	ChunkLimit int

	// AssembleTimeout is how long incomplete fragment sets are kept.
	// Defaults to DefaultAssembleTimeout.
	AssembleTimeout time.Duration

	Provider ProviderDialer
	Messager swap.Messager
}

// Relay bridges one channel session to the wallet provider. All state
// is owned by the instance, sessions never interfere with each other.
type Relay struct {
	ctx        context.Context
	origin     string
	production bool
	chunkLimit int

	channel swap.Channel
	dial    ProviderDialer
	asm     *Assembler
	outq    *queue.Service

	mu       sync.Mutex
	wallet   swap.WalletProvider
	accounts []string
	closed   bool
}

func New(ctx context.Context, ch swap.Channel, opts Options) (*Relay, error) {
	if ch == nil {
		return nil, errors.New("channel is required")
	}

	origin, err := OriginOf(opts.FrameURL)
	if err != nil {
		return nil, err
	}

	chunkLimit := opts.ChunkLimit
	if chunkLimit <= 0 {
		chunkLimit = DefaultChunkLimit
	}

	r := &Relay{
		ctx:        ctx,
		origin:     origin,
		production: opts.Production,
		chunkLimit: chunkLimit,
		channel:    ch,
		dial:       opts.Provider,
		asm:        NewAssembler(opts.AssembleTimeout),
		accounts:   []string{},
	}

	r.outq = queue.NewService("relay", 0, 32, opts.Messager)
	go func() {
		if err := r.outq.Start(r); err != nil {
			log.Default().Println("outbound queue stopped: ", err)
		}
	}()

	return r, nil
}

// Origin returns the trusted frame origin.
func (r *Relay) Origin() string {
	return r.origin
}

// Receive is the channel listener: origin gate, then reassembly for
// fragments, then JSON-RPC dispatch and a targeted reply.
func (r *Relay) Receive(origin string, data []byte) {
	if r.isClosed() {
		return
	}

	if !IsAllowed(origin, r.origin, r.production) {
		log.Default().Println("dropping message from unexpected origin: ", origin)
		return
	}

	payload := json.RawMessage(data)
	if frag, ok := swap.ParseFragment(data); ok {
		assembled, done := r.asm.OnFragment(frag)
		if !done {
			return
		}
		payload = assembled
	}

	var req swap.JsonRPCRequest
	if err := json.Unmarshal(payload, &req); err != nil || req.Method == "" {
		log.Default().Println("dropping message that is not a request")
		return
	}

	r.send(r.dispatch(r.ctx, &req))
}

// send serializes resp and enqueues it for delivery toward the frame
// origin, fragmenting when over the chunk limit.
func (r *Relay) send(resp *swap.JsonRPCResponse) {
	if r.isClosed() {
		return
	}

	text := Serialize(resp)
	if len(text) <= r.chunkLimit {
		r.outq.Enqueue(*swap.NewPostMessage([]byte(text), r.origin, resp.ID))
		return
	}

	for _, frag := range chunkText(text, uuid.NewString(), r.chunkLimit) {
		b, err := json.Marshal(frag)
		if err != nil {
			b = []byte(fallbackJSON("Failed to stringify data", err.Error()))
		}
		r.outq.Enqueue(*swap.NewPostMessage(b, r.origin, resp.ID))
	}
}

// Process delivers outbound messages. A failed post is answered by
// synthesizing an error response for the same request id and posting it
// once; messages that still cannot be delivered are handed back to the
// queue, which notifies and drops them.
func (r *Relay) Process(messages []swap.Message) ([]swap.Message, []error) {
	invalidMessages := []swap.Message{}
	messageErrors := []error{}

	for _, m := range messages {
		pm, ok := m.Message.(swap.PostMessage)
		if !ok {
			invalidMessages = append(invalidMessages, m)
			messageErrors = append(messageErrors, errors.New("invalid outbound message"))
			continue
		}

		err := r.channel.Post(pm.Data, pm.TargetOrigin)
		if err == nil {
			continue
		}

		log.Default().Println("failed to post to channel: ", err)

		if pm.Synthesized {
			invalidMessages = append(invalidMessages, m)
			messageErrors = append(messageErrors, err)
			continue
		}

		synth := errorResponse(pm.RequestID, swap.ErrCodeServer, "failed to deliver response")
		if err := r.channel.Post([]byte(Serialize(synth)), pm.TargetOrigin); err != nil {
			m.Message = swap.PostMessage{
				Data:         pm.Data,
				TargetOrigin: pm.TargetOrigin,
				RequestID:    pm.RequestID,
				Synthesized:  true,
			}
			invalidMessages = append(invalidMessages, m)
			messageErrors = append(messageErrors, err)
		}
	}

	return invalidMessages, messageErrors
}

func (r *Relay) provider(ctx context.Context) (swap.WalletProvider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, errors.New("relay is disconnected")
	}

	if r.wallet != nil {
		return r.wallet, nil
	}

	if r.dial == nil {
		return nil, errors.New("no wallet extension configured")
	}

	w, err := r.dial(ctx)
	if err != nil {
		return nil, err
	}

	r.wallet = w

	return w, nil
}

func (r *Relay) setAccounts(accounts []string) {
	if accounts == nil {
		accounts = []string{}
	}

	r.mu.Lock()
	r.accounts = accounts
	r.mu.Unlock()
}

func (r *Relay) cachedAccounts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	accounts := make([]string, len(r.accounts))
	copy(accounts, r.accounts)

	return accounts
}

func (r *Relay) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.closed
}

// Disconnect tears the session down: no further inbound processing, the
// outbound queue stops, pending reassembly buffers and timers are
// cleared and the provider and channel handles are released. Safe to
// call more than once.
func (r *Relay) Disconnect() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	wallet := r.wallet
	r.wallet = nil
	r.mu.Unlock()

	r.outq.Close()
	r.asm.Close()

	if wallet != nil {
		wallet.Close()
	}

	if err := r.channel.Close(); err != nil {
		log.Default().Println("failed to close channel: ", err)
	}
}
