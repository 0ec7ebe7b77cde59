package songlist

// Capability names one kind of listener an entry can carry.
type Capability int

const (
	CapPlay Capability = iota
	CapFavorite
	CapRemove
)

func (c Capability) String() string {
	switch c {
	case CapPlay:
		return "play"
	case CapFavorite:
		return "favorite"
	case CapRemove:
		return "remove"
	default:
		return "unknown"
	}
}

type binding struct {
	cap Capability
	key string
}

// registry records which (capability, entry) pairs have a listener.
// Binding is idempotent, so re-running a bind pass never stacks listeners.
type registry struct {
	bound map[binding]struct{}
}

func newRegistry() *registry {
	return &registry{bound: make(map[binding]struct{})}
}

// bind reports whether the pair was newly bound.
func (r *registry) bind(cap Capability, key string) bool {
	b := binding{cap, key}
	if _, ok := r.bound[b]; ok {
		return false
	}
	r.bound[b] = struct{}{}
	return true
}

func (r *registry) isBound(cap Capability, key string) bool {
	_, ok := r.bound[binding{cap, key}]
	return ok
}

func (r *registry) unbind(key string) {
	for _, c := range []Capability{CapPlay, CapFavorite, CapRemove} {
		delete(r.bound, binding{c, key})
	}
}

// listeners counts bindings for key across capabilities.
func (r *registry) listeners(key string) int {
	n := 0
	for _, c := range []Capability{CapPlay, CapFavorite, CapRemove} {
		if r.isBound(c, key) {
			n++
		}
	}
	return n
}

// bindEntry binds every capability e carries and returns how many were new.
func (r *registry) bindEntry(e *Entry) int {
	n := 0
	if e.Play != nil && r.bind(CapPlay, e.Key) {
		n++
	}
	if e.Favorite != nil && r.bind(CapFavorite, e.Key) {
		n++
	}
	if e.Remove != nil && r.bind(CapRemove, e.Key) {
		n++
	}
	return n
}
