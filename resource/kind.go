package resource

import (
	"fmt"

	"k8s.io/apimachinery/pkg/runtime/schema"
)

var _ Schema = &Kind{}

// Kind describes a kubernetes-compatible kind: its Group, Version, Kind, Plural, and Scope.
// Generated bindings expose one Kind per resource type, and register it in a KindGroup for their group/version.
type Kind struct {
	// GVK is the group, version, and kind, returned by Group(), Version(), and Kind() respectively
	GVK schema.GroupVersionKind
	// PluralKind is the plural name of the Kind, returned via Plural()
	PluralKind string
	// KindScope is the scope of the Kind, returned by Scope()
	KindScope SchemaScope
}

// NewKind is a convenience function for creating a new Kind.
// It defaults all fields not required as arguments.
func NewKind(group, version, kind string) *Kind {
	return &Kind{
		GVK: schema.GroupVersionKind{
			Group:   group,
			Version: version,
			Kind:    kind,
		},
		PluralKind: defaultPlural(kind),
		KindScope:  NamespacedScope,
	}
}

func (k *Kind) Group() string {
	return k.GVK.Group
}
func (k *Kind) Version() string {
	return k.GVK.Version
}
func (k *Kind) Kind() string {
	return k.GVK.Kind
}
func (k *Kind) Plural() string {
	if k.PluralKind == "" {
		return defaultPlural(k.GVK.Kind)
	}
	return k.PluralKind
}
func (k *Kind) Scope() SchemaScope {
	if k.KindScope == "" {
		return NamespacedScope
	}
	return k.KindScope
}

// APIVersionKind returns the manifest identity for the Kind
func (k *Kind) APIVersionKind() APIVersionKind {
	return NewAPIVersionKind(k.GVK.Group, k.GVK.Version, k.GVK.Kind)
}

// GroupVersionResource returns the GroupVersionResource for the Kind, using Plural() as the resource
func (k *Kind) GroupVersionResource() schema.GroupVersionResource {
	return k.GVK.GroupVersion().WithResource(k.Plural())
}

// NewKindGroup returns a new KindGroup with the provided group and version
func NewKindGroup(group, version string) *KindGroup {
	return &KindGroup{
		group:   group,
		version: version,
		kinds:   make([]*Kind, 0),
	}
}

// KindGroup is a set of Kinds which share the same Group and Version.
type KindGroup struct {
	group   string
	version string
	kinds   []*Kind
}

// Group returns the group value shared by all kinds in the KindGroup
func (k *KindGroup) Group() string {
	return k.group
}

// Version returns the version value shared by all kinds in the KindGroup
func (k *KindGroup) Version() string {
	return k.version
}

// Kinds returns the list of kinds registered with the group
func (k *KindGroup) Kinds() []*Kind {
	return k.kinds
}

// AddKind adds a Kind to the group, if its Group() and Version() values match the KindGroup's.
// Otherwise, it returns an error.
func (k *KindGroup) AddKind(kind *Kind) error {
	if kind == nil {
		return fmt.Errorf("kind cannot be nil")
	}
	if k.kinds == nil {
		k.kinds = make([]*Kind, 0)
		if k.group == "" {
			k.group = kind.Group()
		}
		if k.version == "" {
			k.version = kind.Version()
		}
	}
	if k.group != kind.Group() || k.version != kind.Version() {
		return fmt.Errorf("kind group is restricted to group/version %s/%s, provided kind is %s/%s", k.group, k.version, kind.Group(), kind.Version())
	}
	for _, existing := range k.kinds {
		if existing.Kind() == kind.Kind() {
			return fmt.Errorf("kind '%s' is already registered in group %s/%s", kind.Kind(), k.group, k.version)
		}
	}
	k.kinds = append(k.kinds, kind)
	return nil
}

// MustAddKind calls AddKind and panics if it returns an error.
// It is intended for package-level registration in generated code.
func (k *KindGroup) MustAddKind(kind *Kind) *Kind {
	if err := k.AddKind(kind); err != nil {
		panic(err)
	}
	return kind
}

// KindFor returns the registered Kind with the provided kind name, if it exists
func (k *KindGroup) KindFor(kind string) (*Kind, bool) {
	for _, existing := range k.kinds {
		if existing.Kind() == kind {
			return existing, true
		}
	}
	return nil, false
}
