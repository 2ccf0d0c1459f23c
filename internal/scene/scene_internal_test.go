package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDirectMutationUnderLiveEnumeratorPanics exercises the fail-fast
// check MoveNext performs. The public API (Add/Remove/...) can never
// trigger it — every exported mutator defers instead of applying
// directly while an enumerator is open — so this in-package test reaches
// past the exported API to call the unexported apply path directly, modeling
// a bug in this package rather than caller misuse.
func TestDirectMutationUnderLiveEnumeratorPanics(t *testing.T) {
	g := New()
	n := NewNode(0)
	require.NoError(t, g.Add(nil, n))

	e := g.PreOrder(nil)
	require.True(t, e.MoveNext())

	// Bypass deferral entirely to simulate the invariant violation.
	g.applyAdd(g.root, NewNode(0))
	g.version++

	assert.Panics(t, func() {
		e.MoveNext()
	})
}
