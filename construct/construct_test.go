package construct

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRoot struct {
	node *Node
}

func (r *testRoot) Node() *Node {
	return r.node
}

func newTestRoot() *testRoot {
	r := &testRoot{}
	r.node = NewRoot(r)
	return r
}

func TestNewNode(t *testing.T) {
	t.Run("nil scope", func(t *testing.T) {
		_, err := NewNode(nil, "a", nil)
		assert.EqualError(t, err, "scope cannot be nil")
	})

	t.Run("empty id", func(t *testing.T) {
		_, err := New(newTestRoot(), "")
		assert.ErrorIs(t, err, ErrInvalidID)
	})

	t.Run("id with separator", func(t *testing.T) {
		_, err := New(newTestRoot(), "a/b")
		assert.ErrorIs(t, err, ErrInvalidID)
	})

	t.Run("duplicate id", func(t *testing.T) {
		root := newTestRoot()
		parent, err := New(root, "parent")
		require.NoError(t, err)
		_, err = New(parent, "child")
		require.NoError(t, err)
		_, err = New(parent, "child")
		require.Error(t, err)
		dup := &DuplicateIDError{}
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, "child", dup.ID)
		assert.Equal(t, "parent", dup.ScopePath)
		assert.ErrorIs(t, err, ErrDuplicateID)
		assert.EqualError(t, err, "there is already a construct with id 'child' in scope 'parent'")
		assert.Len(t, parent.Node().Children(), 1)
	})

	t.Run("same id in different scopes", func(t *testing.T) {
		root := newTestRoot()
		a, err := New(root, "a")
		require.NoError(t, err)
		b, err := New(root, "b")
		require.NoError(t, err)
		_, err = New(a, "child")
		assert.NoError(t, err)
		_, err = New(b, "child")
		assert.NoError(t, err)
	})

	t.Run("duplicate at root", func(t *testing.T) {
		root := newTestRoot()
		_, err := New(root, "a")
		require.NoError(t, err)
		_, err = New(root, "a")
		assert.EqualError(t, err, "there is already a construct with id 'a' in scope '<root>'")
	})
}

func TestNode_Tree(t *testing.T) {
	root := newTestRoot()
	a, err := New(root, "a")
	require.NoError(t, err)
	b, err := New(a, "b")
	require.NoError(t, err)
	c, err := New(a, "c")
	require.NoError(t, err)
	d, err := New(b, "d")
	require.NoError(t, err)

	assert.Equal(t, "", root.Node().ID())
	assert.Equal(t, "", root.Node().Path())
	assert.Equal(t, "a/b/d", d.Node().Path())
	assert.Equal(t, []string{"a", "b", "d"}, d.Node().PathComponents())
	assert.Equal(t, root.Node(), d.Node().Root())
	assert.Equal(t, b.Node(), d.Node().Scope())
	assert.Nil(t, root.Node().Scope())
	assert.Equal(t, []*Node{root.Node(), a.Node(), b.Node(), d.Node()}, d.Node().Scopes())
	assert.Equal(t, []*Node{b.Node(), c.Node()}, a.Node().Children())
	assert.Equal(t, []*Node{root.Node(), a.Node(), b.Node(), d.Node(), c.Node()}, root.Node().FindAll())
	assert.Equal(t, d, d.Node().Host())

	assert.Equal(t, c.Node(), a.Node().TryFindChild("c"))
	assert.Nil(t, a.Node().TryFindChild("z"))
	found, err := a.Node().FindChild("b")
	require.NoError(t, err)
	assert.Equal(t, b.Node(), found)
	_, err = a.Node().FindChild("z")
	assert.ErrorIs(t, err, ErrChildNotFound)
}

func TestNode_ConcurrentAdds(t *testing.T) {
	root := newTestRoot()
	wg := sync.WaitGroup{}
	errs := make(chan error, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			// Each ID is added twice, only one add may succeed
			_, err := New(root, fmt.Sprintf("child-%d", idx%50))
			if err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	assert.Len(t, root.Node().Children(), 50)
	count := 0
	for err := range errs {
		assert.ErrorIs(t, err, ErrDuplicateID)
		count++
	}
	assert.Equal(t, 50, count)
}

func TestNode_Validate(t *testing.T) {
	t.Run("no validations", func(t *testing.T) {
		root := newTestRoot()
		_, err := New(root, "a")
		require.NoError(t, err)
		assert.NoError(t, root.Node().Validate())
	})

	t.Run("collects errors from subtree", func(t *testing.T) {
		root := newTestRoot()
		a, err := New(root, "a")
		require.NoError(t, err)
		b, err := New(a, "b")
		require.NoError(t, err)
		a.Node().AddValidation(ValidationFunc(func() []error {
			return []error{errors.New("first")}
		}))
		b.Node().AddValidation(ValidationFunc(func() []error {
			return []error{errors.New("second"), errors.New("third")}
		}))
		b.Node().AddValidation(ValidationFunc(func() []error {
			return nil
		}))

		err = root.Node().Validate()
		require.Error(t, err)
		merr := &multierror.Error{}
		require.True(t, errors.As(err, &merr))
		require.Len(t, merr.Errors, 3)
		assert.EqualError(t, merr.Errors[0], "a: first")
		assert.EqualError(t, merr.Errors[1], "a/b: second")
		assert.EqualError(t, merr.Errors[2], "a/b: third")

		// Validating a subtree only runs that subtree's validations
		err = b.Node().Validate()
		require.True(t, errors.As(err, &merr))
		assert.Len(t, merr.Errors, 2)
	})
}
