package interaction

// Owner identifies the behavior holding the Lock.
type Owner int

const (
	OwnerNone Owner = iota
	OwnerDrinking
	OwnerStudying
)

func (o Owner) String() string {
	switch o {
	case OwnerDrinking:
		return "drinking"
	case OwnerStudying:
		return "studying"
	}
	return "none"
}

// MarshalText encodes the owner by name.
func (o Owner) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Lock is the mutual-exclusion token between the behavior machines. It is
// only touched from the frame loop and needs no synchronization.
type Lock struct {
	owner Owner
}

// Owner returns the current holder.
func (l *Lock) Owner() Owner {
	return l.owner
}

// Available reports whether o may progress: the lock is free or o holds it.
func (l *Lock) Available(o Owner) bool {
	return l.owner == OwnerNone || l.owner == o
}

// Acquire takes the lock for o. It fails when another owner holds it.
func (l *Lock) Acquire(o Owner) bool {
	if !l.Available(o) {
		return false
	}
	l.owner = o
	return true
}

// Release frees the lock if o holds it.
func (l *Lock) Release(o Owner) {
	if l.owner == o {
		l.owner = OwnerNone
	}
}
