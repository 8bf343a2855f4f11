package apiobject

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/grafana/kindimports/chart"
	"github.com/grafana/kindimports/construct"
	"github.com/grafana/kindimports/names"
	"github.com/grafana/kindimports/resource"
)

const metadataKey = "metadata"

// MetadataOption is a function which updates an object's metadata at construction time.
// Options are applied after any metadata contained in the manifest.
type MetadataOption func(m *metav1.ObjectMeta)

// WithName sets an explicit name, disabling name generation
func WithName(name string) MetadataOption {
	return func(m *metav1.ObjectMeta) {
		m.Name = name
	}
}

// WithNamespace sets the namespace, overriding any chart default
func WithNamespace(namespace string) MetadataOption {
	return func(m *metav1.ObjectMeta) {
		m.Namespace = namespace
	}
}

// WithLabel sets a specific key in the labels
func WithLabel(key, value string) MetadataOption {
	return func(m *metav1.ObjectMeta) {
		if m.Labels == nil {
			m.Labels = make(map[string]string)
		}
		m.Labels[key] = value
	}
}

// WithAnnotation sets a specific key in the annotations
func WithAnnotation(key, value string) MetadataOption {
	return func(m *metav1.ObjectMeta) {
		if m.Annotations == nil {
			m.Annotations = make(map[string]string)
		}
		m.Annotations[key] = value
	}
}

// APIObject is a kubernetes object which is a member of a construct tree.
// It holds the manifest it was constructed with, along with metadata derived from the manifest,
// the enclosing chart, and any MetadataOptions.
type APIObject struct {
	node     *construct.Node
	avk      resource.APIVersionKind
	manifest resource.Manifest
	meta     metav1.ObjectMeta
	// extraMeta holds manifest metadata keys not tracked in meta
	extraMeta map[string]any
	chart     *chart.Chart
}

var _ construct.Construct = &APIObject{}

// New creates a new APIObject from the provided manifest and registers it in scope under id.
// The manifest must contain string apiVersion and kind keys.
// If the manifest has no metadata.name and WithName is not provided, a name is generated from the object's path.
// Errors from registration in the scope (such as a *construct.DuplicateIDError) are returned unchanged.
func New(scope construct.Construct, id string, manifest resource.Manifest, opts ...MetadataOption) (*APIObject, error) {
	avk, err := manifest.APIVersionKind()
	if err != nil {
		return nil, fmt.Errorf("invalid manifest for '%s': %w", id, err)
	}
	meta, extra, err := splitMetadata(manifest[metadataKey])
	if err != nil {
		return nil, fmt.Errorf("invalid metadata for '%s': %w", id, err)
	}

	obj := &APIObject{
		avk:       avk,
		manifest:  manifest.Copy(),
		extraMeta: extra,
	}
	delete(obj.manifest, metadataKey)

	node, err := construct.NewNode(scope, id, obj)
	if err != nil {
		return nil, err
	}
	obj.node = node
	if c, err := chart.Of(scope); err == nil {
		obj.chart = c
	}

	for _, opt := range opts {
		opt(&meta)
	}
	obj.meta = obj.applyChartDefaults(meta)
	node.AddValidation(construct.ValidationFunc(obj.validateMetadata))
	return obj, nil
}

// FromObject creates a new APIObject from a typed kubernetes object, such as a *corev1.Namespace, and registers it
// in scope under id. The object's TypeMeta must be set. The object's status is not part of the manifest.
func FromObject(scope construct.Construct, id string, obj runtime.Object, opts ...MetadataOption) (*APIObject, error) {
	if obj == nil {
		return nil, fmt.Errorf("invalid object for '%s': object cannot be nil", id)
	}
	u, err := runtime.DefaultUnstructuredConverter.ToUnstructured(obj)
	if err != nil {
		return nil, fmt.Errorf("invalid object for '%s': %w", id, err)
	}
	delete(u, "status")
	return New(scope, id, u, opts...)
}

func (o *APIObject) applyChartDefaults(meta metav1.ObjectMeta) metav1.ObjectMeta {
	if meta.Name == "" {
		if o.chart != nil {
			meta.Name = o.chart.GenerateObjectName(o)
		} else {
			meta.Name = names.ToDNSLabel(o.node.PathComponents(), names.Options{})
		}
	}
	if o.chart == nil {
		return meta
	}
	if meta.Namespace == "" {
		meta.Namespace = o.chart.Namespace()
	}
	labels := o.chart.Labels()
	if len(labels) > 0 || len(meta.Labels) > 0 {
		for k, v := range meta.Labels {
			labels[k] = v
		}
		meta.Labels = labels
	}
	return meta
}

func (o *APIObject) validateMetadata() []error {
	errs := make([]error, 0)
	for _, msg := range validation.IsDNS1123Subdomain(o.meta.Name) {
		errs = append(errs, fmt.Errorf("invalid name '%s': %s", o.meta.Name, msg))
	}
	if o.meta.Namespace != "" {
		for _, msg := range validation.IsDNS1123Label(o.meta.Namespace) {
			errs = append(errs, fmt.Errorf("invalid namespace '%s': %s", o.meta.Namespace, msg))
		}
	}
	return errs
}

// Node returns the APIObject's construct Node
func (o *APIObject) Node() *construct.Node {
	return o.node
}

// APIVersion returns the apiVersion of the object
func (o *APIObject) APIVersion() string {
	return o.avk.APIVersion
}

// Kind returns the kind of the object
func (o *APIObject) Kind() string {
	return o.avk.Kind
}

// APIVersionKind returns the identity of the object's type
func (o *APIObject) APIVersionKind() resource.APIVersionKind {
	return o.avk
}

// GroupVersionKind returns the apimachinery GroupVersionKind of the object
func (o *APIObject) GroupVersionKind() (schema.GroupVersionKind, error) {
	return o.avk.GroupVersionKind()
}

// Name returns the object's metadata.name
func (o *APIObject) Name() string {
	return o.meta.Name
}

// Metadata returns a pointer to the object's metadata, which can be mutated until the object is rendered
func (o *APIObject) Metadata() *metav1.ObjectMeta {
	return &o.meta
}

// AddLabel sets a label on the object
func (o *APIObject) AddLabel(key, value string) {
	WithLabel(key, value)(&o.meta)
}

// AddAnnotation sets an annotation on the object
func (o *APIObject) AddAnnotation(key, value string) {
	WithAnnotation(key, value)(&o.meta)
}

// Chart returns the chart which contains the object, or nil if the object is not in a chart
func (o *APIObject) Chart() *chart.Chart {
	return o.chart
}

// Manifest returns a copy of the manifest the object was constructed with, without metadata
func (o *APIObject) Manifest() resource.Manifest {
	return o.manifest.Copy()
}

// ToJSON renders the object as a manifest, with the object's current metadata under the metadata key
func (o *APIObject) ToJSON() (map[string]any, error) {
	if _, err := o.manifest.APIVersionKind(); err != nil {
		return nil, err
	}
	return resource.MergeManifest(o.manifest, map[string]any{
		metadataKey: o.renderMetadata(),
	}), nil
}

// ToUnstructured renders the object as an *unstructured.Unstructured
func (o *APIObject) ToUnstructured() (*unstructured.Unstructured, error) {
	m, err := o.ToJSON()
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal '%s': %w", o.node.Path(), err)
	}
	u := &unstructured.Unstructured{}
	if err := u.UnmarshalJSON(raw); err != nil {
		return nil, fmt.Errorf("unable to convert '%s' to unstructured: %w", o.node.Path(), err)
	}
	return u, nil
}

func (o *APIObject) renderMetadata() map[string]any {
	m := make(map[string]any, len(o.extraMeta)+4)
	for k, v := range o.extraMeta {
		m[k] = v
	}
	m["name"] = o.meta.Name
	if o.meta.Namespace != "" {
		m["namespace"] = o.meta.Namespace
	}
	if len(o.meta.Labels) > 0 {
		m["labels"] = copyStringMap(o.meta.Labels)
	}
	if len(o.meta.Annotations) > 0 {
		m["annotations"] = copyStringMap(o.meta.Annotations)
	}
	if len(o.meta.Finalizers) > 0 {
		finalizers := append([]string(nil), o.meta.Finalizers...)
		sort.Strings(finalizers)
		m["finalizers"] = finalizers
	}
	return m
}

// Of returns the APIObject c is, if it is one
func Of(c construct.Construct) (*APIObject, bool) {
	if c == nil || c.Node() == nil {
		return nil, false
	}
	obj, ok := c.Node().Host().(*APIObject)
	return obj, ok
}

// splitMetadata converts a manifest's metadata value into an ObjectMeta and a map of keys ObjectMeta doesn't hold.
// Typed metadata is converted to its unstructured form first, so fields such as ownerReferences are kept as extra keys,
// and nothing in the returned values aliases the caller's maps. Keys with nil values are dropped.
func splitMetadata(raw any) (metav1.ObjectMeta, map[string]any, error) {
	meta := metav1.ObjectMeta{}
	extra := make(map[string]any)
	var fields map[string]any
	switch cast := raw.(type) {
	case nil:
		return meta, extra, nil
	case metav1.ObjectMeta:
		u, err := runtime.DefaultUnstructuredConverter.ToUnstructured(&cast)
		if err != nil {
			return meta, nil, err
		}
		fields = u
	case *metav1.ObjectMeta:
		if cast == nil {
			return meta, extra, nil
		}
		u, err := runtime.DefaultUnstructuredConverter.ToUnstructured(cast)
		if err != nil {
			return meta, nil, err
		}
		fields = u
	case map[string]any:
		fields = cast
	default:
		return meta, nil, errors.New("metadata must be an object")
	}

	known := make(map[string]any)
	for k, v := range fields {
		if v == nil {
			continue
		}
		switch k {
		case "name", "namespace", "labels", "annotations", "finalizers":
			known[k] = v
		default:
			extra[k] = v
		}
	}
	// Normalize through JSON so map[string]string and map[string]any label values are both accepted
	b, err := json.Marshal(known)
	if err != nil {
		return meta, nil, err
	}
	u := make(map[string]any)
	if err := json.Unmarshal(b, &u); err != nil {
		return meta, nil, err
	}
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(u, &meta); err != nil {
		return meta, nil, err
	}
	return meta, extra, nil
}

func copyStringMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
