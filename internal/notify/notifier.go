// Package notify turns ledger snapshot changes into a transient banner
// message. There is no queue: a single slot holds the most recent
// qualifying change until it expires or is dismissed.
package notify

import (
	"fmt"

	"avedash/internal/core"
)

type Kind int

const (
	Added Kind = iota
	Modified
	Removed
)

// Change is one classified ledger transition, as furnished by the
// store's subscription transport.
type Change struct {
	Kind       Kind
	IncomeType string
	Value      string
}

// Notifier collapses a snapshot's change list into at most one message.
// The first call after construction is the cold-start snapshot and is
// always suppressed; reconnecting means constructing a fresh Notifier.
type Notifier struct {
	primed bool
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

// Observe processes the changes that accompanied one snapshot delivery.
// Removals are silent. When several changes qualify, the last one in
// delivery order wins. The returned bool is false when there is nothing
// to show.
func (n *Notifier) Observe(changes []Change) (string, bool) {
	if !n.primed {
		n.primed = true
		return "", false
	}
	msg := ""
	for _, c := range changes {
		switch c.Kind {
		case Added:
			msg = fmt.Sprintf("New Entry: %s - $%s", c.IncomeType, amount(c.Value))
		case Modified:
			msg = fmt.Sprintf("Updated: %s - $%s", c.IncomeType, amount(c.Value))
		}
	}
	return msg, msg != ""
}

func amount(raw string) string {
	return core.ParseAmount(raw).String()
}
