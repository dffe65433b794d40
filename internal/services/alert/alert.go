package alert

import (
	"context"
	"fmt"
	"log"

	"github.com/getsentry/sentry-go"

	"github.com/sowonglabs/swap-sdk/pkg/swap"
)

// Messager reports relay failures locally and, when enabled, to Sentry.
type Messager struct {
	service string

	notify bool
}

func NewMessager(service string, notify bool) swap.Messager {
	return &Messager{
		service: service,
		notify:  notify,
	}
}

func (m *Messager) Notify(ctx context.Context, message string) error {
	log.Default().Printf("[%s] %s", m.service, message)

	if m.notify {
		sentry.CaptureMessage(fmt.Sprintf("[%s] %s", m.service, message))
	}

	return nil
}

func (m *Messager) NotifyError(ctx context.Context, errorMessage error) error {
	log.Default().Printf("[%s] error: %s", m.service, errorMessage)

	if m.notify {
		sentry.CaptureException(errorMessage)
	}

	return nil
}
