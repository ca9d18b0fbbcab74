package channel

import "fmt"

// Token identifies a registered listener or a buffered publish.
// Tokens are handles into the owning [Channel], not references to the listener or its parameters.
// Once the thing a Token names is removed, the Token goes stale and never resolves again, even if its slot is reused.
//
// The zero Token is never live.
type Token struct {
	slot uint32
	gen  uint32
}

func (t Token) IsZero() bool {
	return t == Token{}
}

func (t Token) String() string {
	if t.IsZero() {
		return "token(none)"
	}
	return fmt.Sprintf("token(%d.%d)", t.slot, t.gen)
}

type entryKind uint8

const (
	kindListener entryKind = iota + 1
	kindCall
)

type entry[K comparable] struct {
	gen      uint32
	kind     entryKind
	key      K
	listener Listener
	params   []Param
	result   ResultFunc
}

func (e *entry[K]) live() bool {
	return e.kind != 0
}

// arena stores listeners and buffered calls by slot.
// Released slots bump their generation, which is what makes old tokens stale.
type arena[K comparable] struct {
	entries []entry[K]
	free    []uint32
}

func (a *arena[K]) alloc(e entry[K]) Token {
	var slot uint32
	if n := len(a.free); n > 0 {
		slot = a.free[n-1]
		a.free = a.free[:n-1]
		e.gen = a.entries[slot].gen
	} else {
		slot = uint32(len(a.entries))
		a.entries = append(a.entries, entry[K]{})
		e.gen = 1
	}
	a.entries[slot] = e
	return Token{slot: slot, gen: e.gen}
}

func (a *arena[K]) get(t Token) (*entry[K], bool) {
	if int(t.slot) >= len(a.entries) {
		return nil, false
	}
	e := &a.entries[t.slot]
	if !e.live() || e.gen != t.gen {
		return nil, false
	}
	return e, true
}

func (a *arena[K]) release(t Token) bool {
	e, ok := a.get(t)
	if !ok {
		return false
	}
	next := e.gen + 1
	if next == 0 {
		next = 1
	}
	*e = entry[K]{gen: next}
	a.free = append(a.free, t.slot)
	return true
}
