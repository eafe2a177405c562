package rsz

import (
	"github.com/wippyai/rsz/errors"
)

type slotState uint8

const (
	slotPending slotState = iota
	slotDecoding
	slotDecoded
	slotExtern
)

// slot tracks one object table index through decoding and reference
// accounting.
type slot struct {
	obj     *Object
	path    string
	state   slotState
	claimed bool // held by a Child field
	root    bool
	shares  int
}

// arena is the object table of a single decode, indexed by descriptor
// position. Index 0 is the sentinel and is never populated.
type arena struct {
	slots []slot
}

func newArena(n int) *arena {
	return &arena{slots: make([]slot, n)}
}

func (a *arena) get(idx uint32, at int64) (*slot, error) {
	if idx == 0 || int(idx) >= len(a.slots) {
		return nil, errors.OutOfBounds(errors.PhaseObjects, at, int(idx), len(a.slots))
	}
	return &a.slots[idx], nil
}

func (a *arena) setExtern(idx uint32, path string) {
	a.slots[idx].state = slotExtern
	a.slots[idx].path = path
}

func (a *arena) begin(idx uint32) {
	a.slots[idx].state = slotDecoding
}

func (a *arena) finish(idx uint32, obj *Object) {
	a.slots[idx].state = slotDecoded
	a.slots[idx].obj = obj
}

// ready returns the decoded object at idx. References may only point at
// objects that precede the referrer in the data segment.
func (a *arena) ready(idx uint32, at int64) (*slot, error) {
	s, err := a.get(idx, at)
	if err != nil {
		return nil, err
	}
	switch s.state {
	case slotPending, slotDecoding:
		return nil, errors.New(errors.PhaseObjects, errors.KindCyclicReference).
			Offset(at).
			Actual(idx).
			Detail("object %d is not decoded yet", idx).
			Build()
	case slotExtern:
		return nil, errors.New(errors.PhaseObjects, errors.KindExternMismatch).
			Offset(at).
			Actual(idx).
			Detail("object %d is an external reference to %q", idx, s.path).
			Build()
	}
	return s, nil
}

// claim takes exclusive ownership of idx for a Child field.
func (a *arena) claim(idx uint32, at int64) (*Object, error) {
	s, err := a.ready(idx, at)
	if err != nil {
		return nil, err
	}
	if s.claimed || s.shares > 0 {
		return nil, a.sharedChild(idx, at, s)
	}
	s.claimed = true
	return s.obj, nil
}

// share records one more Shared reference to idx and returns the memoized
// object.
func (a *arena) share(idx uint32, at int64) (*Object, error) {
	s, err := a.ready(idx, at)
	if err != nil {
		return nil, err
	}
	if s.claimed {
		return nil, a.sharedChild(idx, at, s)
	}
	s.shares++
	return s.obj, nil
}

func (a *arena) sharedChild(idx uint32, at int64, s *slot) error {
	return errors.New(errors.PhaseObjects, errors.KindSharedChild).
		Offset(at).
		Symbol(s.obj.Symbol).
		Actual(idx).
		Detail("object %d is owned by another field", idx).
		Build()
}

// extern returns the path of the extern slot at idx.
func (a *arena) extern(idx uint32, at int64) (string, error) {
	s, err := a.get(idx, at)
	if err != nil {
		return "", err
	}
	if s.state != slotExtern {
		return "", errors.New(errors.PhaseObjects, errors.KindExternMismatch).
			Offset(at).
			Actual(idx).
			Detail("object %d is not named in the string table", idx).
			Build()
	}
	return s.path, nil
}

// markRoot records idx as a root. Roots cannot also be owned children.
func (a *arena) markRoot(idx uint32, at int64) (*Object, error) {
	s, err := a.ready(idx, at)
	if err != nil {
		return nil, err
	}
	if s.claimed || s.root {
		return nil, a.sharedChild(idx, at, s)
	}
	s.root = true
	return s.obj, nil
}

// checkReferenced reports the first decoded object that is neither a root
// nor referenced by any field.
func (a *arena) checkReferenced() error {
	for i := 1; i < len(a.slots); i++ {
		s := &a.slots[i]
		if s.state == slotDecoded && !s.claimed && !s.root && s.shares == 0 {
			return errors.New(errors.PhaseObjects, errors.KindUnreferencedObject).
				Offset(s.obj.Offset).
				Symbol(s.obj.Symbol).
				Actual(uint32(i)).
				Detail("object %d is neither a root nor referenced", i).
				Build()
		}
	}
	return nil
}
