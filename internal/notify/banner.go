package notify

import (
	"sync"
	"time"
)

// DefaultTTL is how long a banner stays up without dismissal.
const DefaultTTL = 5 * time.Second

// Banner is the single-slot presentation state: either empty or showing
// one message with an expiry. Showing a new message replaces the current
// one outright, so only the latest change is ever visible.
type Banner struct {
	mu     sync.Mutex
	ttl    time.Duration
	msg    string
	expiry time.Time
	now    func() time.Time
}

func NewBanner(ttl time.Duration) *Banner {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Banner{ttl: ttl, now: time.Now}
}

// Show replaces the slot with msg and arms the expiry timer.
func (b *Banner) Show(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msg = msg
	b.expiry = b.now().Add(b.ttl)
}

// Current returns the showing message, or false once it has expired or
// been dismissed. Expiry transitions the slot back to empty.
func (b *Banner) Current() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.msg == "" {
		return "", false
	}
	if b.now().After(b.expiry) {
		b.msg = ""
		return "", false
	}
	return b.msg, true
}

// Dismiss clears the slot before its expiry.
func (b *Banner) Dismiss() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msg = ""
}
