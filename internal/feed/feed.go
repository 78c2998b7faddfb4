// Package feed hands detection results from the pipeline goroutine to the
// render loop.
package feed

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/jennahenricsson-umain/motion-MBD/internal/landmark"
)

// DefaultInterval is the minimum time between accepted detections.
const DefaultInterval = 66 * time.Millisecond

// Update is one detection result.
type Update struct {
	Faces []landmark.Face
	At    time.Time
}

// Mailbox holds at most one pending Update. A newer Update replaces an
// unread one, so the producer never blocks.
type Mailbox struct {
	ch chan Update
}

// NewMailbox creates an empty Mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{ch: make(chan Update, 1)}
}

// Post stores u, discarding any unread Update.
func (m *Mailbox) Post(u Update) {
	for {
		select {
		case m.ch <- u:
			return
		default:
		}
		select {
		case <-m.ch:
		default:
		}
	}
}

// Drain returns the pending Update, if any.
func (m *Mailbox) Drain() (Update, bool) {
	select {
	case u := <-m.ch:
		return u, true
	default:
		return Update{}, false
	}
}

// Receiver reads the Mailbox at most once per interval.
type Receiver struct {
	mailbox *Mailbox
	limiter *rate.Limiter
	last    Update
}

// NewReceiver creates a Receiver over m.
func NewReceiver(m *Mailbox, interval time.Duration) *Receiver {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Receiver{
		mailbox: m,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Poll returns fresh faces when the throttle allows and an Update is
// pending. A poll with nothing pending does not consume the throttle.
func (r *Receiver) Poll(now time.Time) ([]landmark.Face, bool) {
	if r.limiter.TokensAt(now) < 1 {
		return nil, false
	}
	u, ok := r.mailbox.Drain()
	if !ok {
		return nil, false
	}
	r.limiter.AllowN(now, 1)
	r.last = u
	return u.Faces, true
}

// Last returns the most recently accepted Update.
func (r *Receiver) Last() Update {
	return r.last
}
