package observer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	n int
}

func TestRegistry_RegisterIsIdempotent(t *testing.T) {
	var r Registry[*counter]
	c := &counter{}

	assert.True(t, r.Register(c))
	assert.False(t, r.Register(c), "second register should be rejected")
	assert.Equal(t, 1, r.Len())

	r.Each(func(l *counter) { l.n++ })
	assert.Equal(t, 1, c.n, "listener must not be notified twice")
}

func TestRegistry_RegisterNilIgnored(t *testing.T) {
	var r Registry[*counter]
	assert.False(t, r.Register(nil))
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_UnregisterAbsentIsNoop(t *testing.T) {
	var r Registry[*counter]
	assert.False(t, r.Unregister(&counter{}))

	c := &counter{}
	r.Register(c)
	assert.True(t, r.Unregister(c))
	assert.False(t, r.Unregister(c))
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_UnregisterSelfDuringEach(t *testing.T) {
	var r Registry[*counter]
	a, b, c := &counter{}, &counter{}, &counter{}
	r.Register(a)
	r.Register(b)
	r.Register(c)

	r.Each(func(l *counter) {
		l.n++
		if l == a {
			r.Unregister(a)
			r.Unregister(b)
		}
	})

	// The snapshot taken at the start still reaches every listener.
	assert.Equal(t, 1, a.n)
	assert.Equal(t, 1, b.n)
	assert.Equal(t, 1, c.n)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_AddedDuringEachMissesCurrentDispatch(t *testing.T) {
	var r Registry[*counter]
	a, late := &counter{}, &counter{}
	r.Register(a)

	r.Each(func(l *counter) {
		l.n++
		r.Register(late)
	})

	assert.Equal(t, 1, a.n)
	assert.Equal(t, 0, late.n, "listener added mid-dispatch should not see that dispatch")

	r.Each(func(l *counter) { l.n++ })
	assert.Equal(t, 1, late.n)
}

func TestRegistry_ConcurrentRegistration(t *testing.T) {
	var r Registry[*counter]
	const goroutines = 50

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := &counter{}
			r.Register(c)
			r.Each(func(*counter) {})
			r.Unregister(c)
			r.Register(c)
		}()
	}
	wg.Wait()

	require.Equal(t, goroutines, r.Len())
	r.Clear()
	assert.Equal(t, 0, r.Len())
}
