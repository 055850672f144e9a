package authority

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// prefixAdapter matches any URI starting with prefix.
type prefixAdapter struct {
	name   string
	prefix string
}

func (p prefixAdapter) Name() string            { return p.name }
func (p prefixAdapter) Matches(uri string) bool { return strings.HasPrefix(uri, p.prefix) }
func (p prefixAdapter) Options() Options        { return Options{} }

func (p prefixAdapter) ResourceURL(uri, _ string) (string, error) {
	return uri + ".json", nil
}

func (p prefixAdapter) ExtractFields(_ string, body []byte, _ string) (*Fields, error) {
	f := NewFields()
	f.Set("Body", string(body))
	return f, nil
}

func TestRegistry_FindMatch(t *testing.T) {
	r := NewRegistry()
	r.Register(prefixAdapter{name: "A", prefix: "https://example.org/"})
	r.Register(prefixAdapter{name: "B", prefix: "https://example.org/things/"})

	t.Run("first registered wins on overlap", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			a, ok := r.FindMatch("https://example.org/things/1")
			require.True(t, ok)
			assert.Equal(t, "A", a.Name())
		}
	})

	t.Run("no match is not an error", func(t *testing.T) {
		a, ok := r.FindMatch("https://other.example/1")
		assert.False(t, ok)
		assert.Nil(t, a)
	})
}

func TestRegistry_FindMatch_ReversedOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(prefixAdapter{name: "B", prefix: "https://example.org/things/"})
	r.Register(prefixAdapter{name: "A", prefix: "https://example.org/"})

	a, ok := r.FindMatch("https://example.org/things/1")
	require.True(t, ok)
	assert.Equal(t, "B", a.Name())
}

func TestRegistry_DuplicateNameLastWins(t *testing.T) {
	r := NewRegistry()
	r.Register(prefixAdapter{name: "Same", prefix: "https://first.example/"})
	r.Register(prefixAdapter{name: "Other", prefix: "https://other.example/"})
	r.Register(prefixAdapter{name: "Same", prefix: "https://second.example/"})

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"Same", "Other"}, r.Names())

	_, ok := r.FindMatch("https://first.example/x")
	assert.False(t, ok, "overwritten adapter must no longer resolve")

	a, ok := r.FindMatch("https://second.example/x")
	require.True(t, ok)
	assert.Equal(t, "Same", a.Name())

	got, ok := r.Get("Same")
	require.True(t, ok)
	assert.Equal(t, "https://second.example/", got.(prefixAdapter).prefix)
}

func TestRegistry_Adapters(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Adapters())

	r.Register(prefixAdapter{name: "One", prefix: "a"})
	r.Register(prefixAdapter{name: "Two", prefix: "b"})

	adapters := r.Adapters()
	require.Len(t, adapters, 2)
	assert.Equal(t, "One", adapters[0].Name())
	assert.Equal(t, "Two", adapters[1].Name())
}
