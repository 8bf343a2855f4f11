package resource

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/runtime/schema"
)

type SchemaScope string

const (
	NamespacedScope = SchemaScope("Namespaced")
	ClusterScope    = SchemaScope("Cluster")
)

// APIVersionKind is the identity of a resource type as it appears at the top of a kubernetes manifest.
// It is fixed for a given generated kind and is never mutated.
type APIVersionKind struct {
	APIVersion string `json:"apiVersion"`
	Kind       string `json:"kind"`
}

// NewAPIVersionKind returns the APIVersionKind for the provided group, version, and kind.
// An empty group produces a core-style apiVersion (just the version).
func NewAPIVersionKind(group, version, kind string) APIVersionKind {
	apiVersion, k := schema.GroupVersionKind{Group: group, Version: version, Kind: kind}.ToAPIVersionAndKind()
	return APIVersionKind{
		APIVersion: apiVersion,
		Kind:       k,
	}
}

// GroupVersionKind parses the APIVersion and returns the apimachinery GroupVersionKind
func (a APIVersionKind) GroupVersionKind() (schema.GroupVersionKind, error) {
	gv, err := schema.ParseGroupVersion(a.APIVersion)
	if err != nil {
		return schema.GroupVersionKind{}, fmt.Errorf("invalid apiVersion '%s': %w", a.APIVersion, err)
	}
	return gv.WithKind(a.Kind), nil
}

// Manifest returns a new Manifest containing only the apiVersion and kind keys
func (a APIVersionKind) Manifest() Manifest {
	return Manifest{
		"apiVersion": a.APIVersion,
		"kind":       a.Kind,
	}
}

// String returns "<apiVersion>/<kind>"
func (a APIVersionKind) String() string {
	return a.APIVersion + "/" + a.Kind
}

// Schema represents schema information for a kind
type Schema interface {
	// Group returns the Schema group
	Group() string
	// Version returns the Schema version
	Version() string
	// Kind returns the Schema kind
	Kind() string
	// Plural returns the plural name of the Schema kind
	Plural() string
	// Scope returns the scope of the schema object
	Scope() SchemaScope
}

func defaultPlural(kind string) string {
	return fmt.Sprintf("%ss", strings.ToLower(kind))
}
