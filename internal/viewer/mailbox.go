package viewer

import (
	"sync/atomic"

	"github.com/vovakirdan/envview/internal/core"
)

// Mailbox is a single-slot action exchange.
// Post overwrites whatever is waiting (last write wins, presses are never
// queued) and Take reads the slot and resets it to the default in one atomic
// swap, so each posted action is consumed at most once.
type Mailbox struct {
	slot atomic.Int64
	def  core.Action
}

// NewMailbox creates a mailbox holding def.
func NewMailbox(def core.Action) *Mailbox {
	m := &Mailbox{def: def}
	m.slot.Store(int64(def))
	return m
}

// Post replaces the pending action.
func (m *Mailbox) Post(a core.Action) {
	m.slot.Store(int64(a))
}

// Take returns the pending action and resets the slot to the default.
func (m *Mailbox) Take() core.Action {
	return core.Action(m.slot.Swap(int64(m.def)))
}

// Peek returns the pending action without consuming it.
func (m *Mailbox) Peek() core.Action {
	return core.Action(m.slot.Load())
}

// Default returns the value the slot resets to.
func (m *Mailbox) Default() core.Action {
	return m.def
}
