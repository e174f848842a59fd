package conversions

import (
	"context"
	"sync"
	"time"

	"github.com/gravadormedico/voicepen-backend/pkg/logger"
)

// Sender delivers one purchase event.
type Sender interface {
	SendPurchase(ctx context.Context, p Purchase) error
}

// AsyncNotifier fires purchase events off the request path. The caller's
// context only contributes log fields: cancellation is detached and every send
// gets its own timeout. Failures are logged, never returned.
type AsyncNotifier struct {
	sender  Sender
	logg    *logger.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewAsyncNotifier wraps sender. A nil sender yields a notifier that drops
// everything, which is how disabled conversions are wired.
func NewAsyncNotifier(sender Sender, timeout time.Duration, logg *logger.Logger) *AsyncNotifier {
	if logg == nil {
		logg = logger.Nop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &AsyncNotifier{sender: sender, logg: logg, timeout: timeout}
}

// NotifyPurchase schedules the send and returns immediately.
func (n *AsyncNotifier) NotifyPurchase(ctx context.Context, p Purchase) {
	if n == nil || n.sender == nil {
		return
	}
	detached := context.WithoutCancel(ctx)

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		sendCtx, cancel := context.WithTimeout(detached, n.timeout)
		defer cancel()

		if err := n.sender.SendPurchase(sendCtx, p); err != nil {
			n.logg.WarnErr(n.logg.WithOrderID(detached, p.OrderID), "purchase conversion failed", err)
			return
		}
		n.logg.Debug(n.logg.WithOrderID(detached, p.OrderID), "purchase conversion sent")
	}()
}

// Wait blocks until in-flight sends finish. Used on shutdown and in tests.
func (n *AsyncNotifier) Wait() {
	if n == nil {
		return
	}
	n.wg.Wait()
}
