package entry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, "hello", Sanitize([]byte("hello")))
	assert.Equal(t, "a�b", Sanitize([]byte{'a', 0xff, 'b'}), "invalid bytes should be replaced, not dropped")
}

func TestTemplates(t *testing.T) {
	e := New(1, "foo.rs", Identity{}, Placeholder{Pattern: "cat {}"}, false)
	assert.Equal(t, "foo.rs", e.Display())
	assert.Equal(t, "cat foo.rs", e.Output())

	// render must be pure
	e2 := New(2, "foo.rs", Identity{}, Placeholder{Pattern: "cat {}"}, false)
	assert.Equal(t, e.Output(), e2.Output())
}

func TestLess(t *testing.T) {
	a := New(1, "a", Identity{}, Identity{}, false)
	b := New(2, "b", Identity{}, Identity{}, false)
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
}

func TestIDGen(t *testing.T) {
	ig := NewIDGen()
	prev := ig.Next()
	for i := 0; i < 100; i++ {
		n := ig.Next()
		if n <= prev {
			t.Fatalf("ids must be monotonic: %d after %d", n, prev)
		}
		prev = n
	}
}
