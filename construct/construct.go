package construct

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/puzpuzpuz/xsync/v2"
)

// PathSeparator separates construct IDs in a Node's Path
const PathSeparator = "/"

var (
	// ErrInvalidID is returned (wrapped) when a construct ID is empty or contains the PathSeparator
	ErrInvalidID = errors.New("invalid construct id")
	// ErrDuplicateID is the error a *DuplicateIDError unwraps to
	ErrDuplicateID = errors.New("duplicate construct id")
	// ErrChildNotFound is returned (wrapped) by FindChild when no child has the requested ID
	ErrChildNotFound = errors.New("child not found")
)

// Construct is any type which has a place in a construct tree
type Construct interface {
	Node() *Node
}

// Validation is a check attached to a Node, run by Node.Validate.
// Validate returns any errors found, or nil if the construct is valid.
type Validation interface {
	Validate() []error
}

// ValidationFunc adapts a function into a Validation
type ValidationFunc func() []error

// Validate calls the function
func (f ValidationFunc) Validate() []error {
	return f()
}

// DuplicateIDError is returned when a construct is added to a scope which already has a child with the same ID
type DuplicateIDError struct {
	ID        string
	ScopePath string
}

func (d *DuplicateIDError) Error() string {
	scope := d.ScopePath
	if scope == "" {
		scope = "<root>"
	}
	return fmt.Sprintf("there is already a construct with id '%s' in scope '%s'", d.ID, scope)
}

// Unwrap returns ErrDuplicateID
func (*DuplicateIDError) Unwrap() error {
	return ErrDuplicateID
}

// Node is the tree-membership half of a Construct. It tracks a construct's ID, its scope (parent),
// and its children, and enforces that IDs are unique among siblings.
type Node struct {
	id    string
	scope *Node
	host  Construct

	children *xsync.MapOf[string, *Node]
	mux      sync.RWMutex
	order    []string

	validations []Validation
}

// NewRoot creates a new Node with no scope. The root's ID is always empty.
func NewRoot(host Construct) *Node {
	return &Node{
		host:     host,
		children: xsync.NewMapOf[*Node](),
	}
}

// NewNode creates a new Node for host with the provided ID, and adds it as a child of scope.
// It returns an error wrapping ErrInvalidID if the id is empty or contains the PathSeparator,
// and a *DuplicateIDError if scope already has a child with the same ID.
func NewNode(scope Construct, id string, host Construct) (*Node, error) {
	if scope == nil || scope.Node() == nil {
		return nil, fmt.Errorf("scope cannot be nil")
	}
	if id == "" {
		return nil, fmt.Errorf("%w: id cannot be empty", ErrInvalidID)
	}
	if strings.Contains(id, PathSeparator) {
		return nil, fmt.Errorf("%w: id '%s' cannot contain '%s'", ErrInvalidID, id, PathSeparator)
	}
	parent := scope.Node()
	n := &Node{
		id:       id,
		scope:    parent,
		host:     host,
		children: xsync.NewMapOf[*Node](),
	}
	if err := parent.addChild(n); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *Node) addChild(child *Node) error {
	n.mux.Lock()
	defer n.mux.Unlock()
	if _, loaded := n.children.LoadOrStore(child.id, child); loaded {
		return &DuplicateIDError{
			ID:        child.id,
			ScopePath: n.Path(),
		}
	}
	n.order = append(n.order, child.id)
	return nil
}

// ID returns the Node's ID, which is unique among its siblings. The root's ID is empty.
func (n *Node) ID() string {
	return n.id
}

// Host returns the Construct this Node belongs to
func (n *Node) Host() Construct {
	return n.host
}

// Scope returns the parent Node, or nil for the root
func (n *Node) Scope() *Node {
	return n.scope
}

// Root returns the root of the tree this Node is in
func (n *Node) Root() *Node {
	cur := n
	for cur.scope != nil {
		cur = cur.scope
	}
	return cur
}

// Scopes returns all Nodes from the root down to and including this Node
func (n *Node) Scopes() []*Node {
	scopes := make([]*Node, 0)
	for cur := n; cur != nil; cur = cur.scope {
		scopes = append([]*Node{cur}, scopes...)
	}
	return scopes
}

// PathComponents returns the IDs of all non-root Nodes from the root down to this Node
func (n *Node) PathComponents() []string {
	components := make([]string, 0)
	for _, s := range n.Scopes() {
		if s.scope == nil {
			continue
		}
		components = append(components, s.id)
	}
	return components
}

// Path returns the PathSeparator-joined IDs of this Node and its ancestors, excluding the root
func (n *Node) Path() string {
	return strings.Join(n.PathComponents(), PathSeparator)
}

// Children returns the direct children of this Node, in the order they were added
func (n *Node) Children() []*Node {
	n.mux.RLock()
	defer n.mux.RUnlock()
	children := make([]*Node, 0, len(n.order))
	for _, id := range n.order {
		if c, ok := n.children.Load(id); ok {
			children = append(children, c)
		}
	}
	return children
}

// TryFindChild returns the direct child with the provided id, or nil if there is none
func (n *Node) TryFindChild(id string) *Node {
	c, _ := n.children.Load(id)
	return c
}

// FindChild returns the direct child with the provided id, or an error wrapping ErrChildNotFound
func (n *Node) FindChild(id string) (*Node, error) {
	c := n.TryFindChild(id)
	if c == nil {
		return nil, fmt.Errorf("%w: no child with id '%s' in scope '%s'", ErrChildNotFound, id, n.Path())
	}
	return c, nil
}

// FindAll returns this Node and all of its descendants, in pre-order
func (n *Node) FindAll() []*Node {
	all := []*Node{n}
	for _, c := range n.Children() {
		all = append(all, c.FindAll()...)
	}
	return all
}

// AddValidation attaches a Validation to this Node, which is run by Validate
func (n *Node) AddValidation(v Validation) {
	n.mux.Lock()
	defer n.mux.Unlock()
	n.validations = append(n.validations, v)
}

// Validate runs the validations of this Node and every descendant.
// All errors are collected and returned as a *multierror.Error, prefixed with the path of the failing construct.
func (n *Node) Validate() error {
	var errs *multierror.Error
	for _, node := range n.FindAll() {
		node.mux.RLock()
		validations := append([]Validation(nil), node.validations...)
		node.mux.RUnlock()
		for _, v := range validations {
			for _, err := range v.Validate() {
				errs = multierror.Append(errs, fmt.Errorf("%s: %w", node.displayPath(), err))
			}
		}
	}
	return errs.ErrorOrNil()
}

func (n *Node) displayPath() string {
	if p := n.Path(); p != "" {
		return p
	}
	return "<root>"
}

// Group is a plain construct with no behavior of its own, used to group other constructs under a common scope
type Group struct {
	node *Node
}

// New creates a new Group in scope with the provided id
func New(scope Construct, id string) (*Group, error) {
	g := &Group{}
	n, err := NewNode(scope, id, g)
	if err != nil {
		return nil, err
	}
	g.node = n
	return g, nil
}

// Node returns the Group's Node
func (g *Group) Node() *Node {
	return g.node
}
