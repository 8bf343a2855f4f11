package names

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"k8s.io/apimachinery/pkg/util/validation"
)

func TestToDNSLabel(t *testing.T) {
	t.Run("with hash", func(t *testing.T) {
		name := ToDNSLabel([]string{"MyChart", "Cron_Tab"}, Options{})
		assert.True(t, strings.HasPrefix(name, "mychart-crontab-"), name)
		assert.Len(t, name, len("mychart-crontab-")+HashLen)
		assert.Empty(t, validation.IsDNS1123Label(name))
	})

	t.Run("stable", func(t *testing.T) {
		assert.Equal(t, ToDNSLabel([]string{"a", "b"}, Options{}), ToDNSLabel([]string{"a", "b"}, Options{}))
	})

	t.Run("distinct paths with colliding components", func(t *testing.T) {
		a := ToDNSLabel([]string{"chart", "my_obj"}, Options{})
		b := ToDNSLabel([]string{"chart", "my-obj"}, Options{})
		assert.NotEqual(t, a, b)
	})

	t.Run("without hash", func(t *testing.T) {
		assert.Equal(t, "chart-obj", ToDNSLabel([]string{"Chart", "Obj"}, Options{DisableHash: true}))
	})

	t.Run("drops default and empty components", func(t *testing.T) {
		assert.Equal(t, "chart-obj", ToDNSLabel([]string{"Chart", "Default", "!!", "Obj"}, Options{DisableHash: true}))
	})

	t.Run("only hash when no usable components", func(t *testing.T) {
		name := ToDNSLabel([]string{"Default"}, Options{})
		assert.Len(t, name, HashLen)
	})

	t.Run("truncates and keeps hash", func(t *testing.T) {
		long := strings.Repeat("a", 100)
		name := ToDNSLabel([]string{long}, Options{})
		assert.Len(t, name, DefaultMaxLen)
		assert.Empty(t, validation.IsDNS1123Label(name))

		short := ToDNSLabel([]string{long}, Options{MaxLen: 20})
		assert.Len(t, short, 20)
		assert.Equal(t, name[len(name)-HashLen:], short[len(short)-HashLen:])
	})

	t.Run("truncates without hash", func(t *testing.T) {
		name := ToDNSLabel([]string{strings.Repeat("b", 100)}, Options{DisableHash: true})
		assert.Len(t, name, DefaultMaxLen)
	})
}
