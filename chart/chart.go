package chart

import (
	"fmt"

	"github.com/grafana/kindimports/construct"
	"github.com/grafana/kindimports/names"
)

// Props are the options for a new Chart
type Props struct {
	// Namespace is applied to all API objects in the chart which do not set their own namespace
	Namespace string
	// Labels are applied to all API objects in the chart. Labels set on an object take precedence.
	Labels map[string]string
	// DisableResourceNameHashes turns off the hash suffix on generated object names
	DisableResourceNameHashes bool
}

// Chart is a scope which groups API objects which are synthesized into a single manifest file.
// Charts provide defaults (namespace, labels, naming policy) to the API objects beneath them.
type Chart struct {
	node  *construct.Node
	props Props
}

var _ construct.Construct = &Chart{}

// New creates a new Chart in scope with the provided id
func New(scope construct.Construct, id string, props Props) (*Chart, error) {
	c := &Chart{
		props: props,
	}
	n, err := construct.NewNode(scope, id, c)
	if err != nil {
		return nil, err
	}
	c.node = n
	return c, nil
}

// Node returns the Chart's construct Node
func (c *Chart) Node() *construct.Node {
	return c.node
}

// Namespace returns the Chart's default namespace
func (c *Chart) Namespace() string {
	return c.props.Namespace
}

// Labels returns a copy of the Chart's labels
func (c *Chart) Labels() map[string]string {
	labels := make(map[string]string, len(c.props.Labels))
	for k, v := range c.props.Labels {
		labels[k] = v
	}
	return labels
}

// GenerateObjectName returns a DNS-label name for obj based on its path in the construct tree
func (c *Chart) GenerateObjectName(obj construct.Construct) string {
	return names.ToDNSLabel(obj.Node().PathComponents(), names.Options{
		DisableHash: c.props.DisableResourceNameHashes,
	})
}

// Of returns the nearest Chart which contains c (including c itself)
func Of(c construct.Construct) (*Chart, error) {
	for n := c.Node(); n != nil; n = n.Scope() {
		if chart, ok := n.Host().(*Chart); ok {
			return chart, nil
		}
	}
	return nil, fmt.Errorf("cannot find a parent chart for '%s'", c.Node().Path())
}

// IsChart returns true if c is a Chart
func IsChart(c construct.Construct) bool {
	_, ok := c.(*Chart)
	return ok
}
