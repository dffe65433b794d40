package queue

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/sowonglabs/swap-sdk/pkg/swap"
)

// Service is a buffered delivery queue. Messages the processor hands
// back are retried up to maxRetries times, then reported through the
// messager and dropped.
type Service struct {
	name       string
	maxRetries int

	queue chan swap.Message
	quit  chan struct{}
	once  sync.Once

	messager swap.Messager
}

type Processor interface {
	// Process attempts a batch and returns the messages that failed
	// along with their errors, index-aligned.
	Process(messages []swap.Message) ([]swap.Message, []error)
}

func NewService(name string, maxRetries, bufferSize int, messager swap.Messager) *Service {
	return &Service{
		name:       name,
		maxRetries: maxRetries,
		queue:      make(chan swap.Message, bufferSize),
		quit:       make(chan struct{}),
		messager:   messager,
	}
}

// Enqueue hands a message to the delivery loop. Once the service is
// closed it returns without blocking, even against a full buffer; a
// caller racing Close may lose the message, never its goroutine.
func (s *Service) Enqueue(message swap.Message) {
	select {
	case <-s.quit:
	case s.queue <- message:
	}
}

// Close stops the delivery loop. Safe to call more than once.
func (s *Service) Close() {
	s.once.Do(func() {
		close(s.quit)
	})
}

func (s *Service) Start(p Processor) error {
	for {
		select {
		case message := <-s.queue:
			messages := []swap.Message{message}

			// drain whatever else is already buffered so the
			// processor sees a batch
			for len(s.queue) > 0 {
				messages = append(messages, <-s.queue)
			}

			failed, errs := p.Process(messages)
			for i, m := range failed {
				if m.RetryCount < s.maxRetries {
					m.RetryCount++

					select {
					case s.queue <- m:
					default:
						// full queue, avoid a busy loop and drop
						time.Sleep(time.Duration(m.RetryCount) * time.Second)
						s.notifyError(errs[i])
					}
					continue
				}

				s.notifyError(errs[i])
			}
		case <-s.quit:
			return nil
		}
	}
}

func (s *Service) notifyError(err error) {
	if err == nil {
		return
	}

	log.Default().Printf("[%s queue] dropping message: %s", s.name, err)

	if s.messager != nil {
		s.messager.NotifyError(context.Background(), err)
	}
}
