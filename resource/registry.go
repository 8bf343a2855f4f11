package resource

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/puzpuzpuz/xsync/v2"
)

// Registry is a lookup of Kinds across KindGroups, keyed by manifest identity.
// It is safe for concurrent use.
type Registry struct {
	kinds *xsync.MapOf[string, *Kind]
}

// NewRegistry returns a new Registry containing the kinds of the provided groups.
// It returns an error if any kind is nil or registered more than once.
func NewRegistry(groups ...*KindGroup) (*Registry, error) {
	r := &Registry{
		kinds: xsync.NewMapOf[*Kind](),
	}
	if err := r.Register(groups...); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds every kind in each group to the Registry.
// All kinds are attempted, and every conflict is returned together.
func (r *Registry) Register(groups ...*KindGroup) error {
	var errs *multierror.Error
	for _, g := range groups {
		if g == nil {
			errs = multierror.Append(errs, fmt.Errorf("kind group cannot be nil"))
			continue
		}
		for _, k := range g.Kinds() {
			avk := k.APIVersionKind()
			if existing, loaded := r.kinds.LoadOrStore(avk.String(), k); loaded && existing != k {
				errs = multierror.Append(errs, fmt.Errorf("kind %s is already registered", avk))
			}
		}
	}
	return errs.ErrorOrNil()
}

// KindFor returns the Kind registered for the apiVersion and kind, if there is one
func (r *Registry) KindFor(avk APIVersionKind) (*Kind, bool) {
	return r.kinds.Load(avk.String())
}

// Kinds returns all registered Kinds, sorted by apiVersion and kind
func (r *Registry) Kinds() []*Kind {
	kinds := make([]*Kind, 0, r.kinds.Size())
	r.kinds.Range(func(_ string, k *Kind) bool {
		kinds = append(kinds, k)
		return true
	})
	sort.Slice(kinds, func(i, j int) bool {
		return kinds[i].APIVersionKind().String() < kinds[j].APIVersionKind().String()
	})
	return kinds
}
