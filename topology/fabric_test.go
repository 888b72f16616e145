package topology

import (
	"testing"

	"github.com/ayourtch/fabricsim/mock"
	"github.com/ayourtch/fabricsim/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLinear(t *testing.T) {
	cfg := mock.LinearCfg()
	f, err := New(&cfg)
	require.NoError(t, err)

	assert.Equal(t, []state.RouterId{"a", "b", "c"}, f.Routers())
	require.NotNil(t, f.Router("b"))
	assert.Nil(t, f.Router("ghost"))

	assert.Len(t, f.LinksFrom("a"), 1)
	assert.Len(t, f.LinksFrom("b"), 2)
	assert.Nil(t, f.Link("a", "c"))

	ab := f.Link("a", "b")
	require.NotNil(t, ab)
	assert.Same(t, ab, f.Link("b", "a"))
	assert.Equal(t, uint32(state.DefaultLinkCost), ab.Cost)
	assert.Equal(t, uint32(state.DefaultMtu), ab.Mtu)
	assert.Zero(t, ab.Loss)
}

func TestLinkEndpointsSorted(t *testing.T) {
	cfg := state.Config{
		Routers: []state.RouterId{"x", "y"},
		Links:   []state.LinkCfg{{A: "y", B: "x"}},
	}
	state.ExpandConfig(&cfg)
	f, err := New(&cfg)
	require.NoError(t, err)

	l := f.Link("x", "y")
	require.NotNil(t, l)
	assert.Equal(t, state.RouterId("x"), l.A)
	assert.Equal(t, state.RouterId("y"), l.B)
	assert.Equal(t, state.RouterId("y"), l.Other("x"))
	assert.Equal(t, state.RouterId("x"), l.Other("y"))
}

func TestLinksFromOrdered(t *testing.T) {
	// declare b's neighbours in reverse order; adjacency must come out
	// sorted by neighbour id regardless
	cfg := state.Config{
		Routers: []state.RouterId{"a", "b", "c", "d"},
		Links: []state.LinkCfg{
			{A: "b", B: "d"},
			{A: "b", B: "c"},
			{A: "b", B: "a"},
		},
	}
	state.ExpandConfig(&cfg)
	f, err := New(&cfg)
	require.NoError(t, err)

	var neighbours []state.RouterId
	for _, l := range f.LinksFrom("b") {
		neighbours = append(neighbours, l.Other("b"))
	}
	assert.Equal(t, []state.RouterId{"a", "c", "d"}, neighbours)
}

func TestUnknownLinkReference(t *testing.T) {
	cfg := state.Config{
		Routers: []state.RouterId{"a"},
		Links:   []state.LinkCfg{{A: "a", B: "ghost"}},
	}
	state.ExpandConfig(&cfg)
	_, err := New(&cfg)
	require.Error(t, err)

	var ref *UnknownRouterReferenceError
	require.ErrorAs(t, err, &ref)
	assert.Equal(t, state.RouterId("ghost"), ref.Ref)
}

func TestUnknownIngressReference(t *testing.T) {
	cfg := mock.LinearCfg()
	cfg.Interfaces[0].Router = "ghost"
	_, err := New(&cfg)

	var ref *UnknownRouterReferenceError
	require.ErrorAs(t, err, &ref)
	assert.Equal(t, "ingress map", ref.Context)
}

func TestIngressEgressMaps(t *testing.T) {
	cfg := mock.LinearCfg()
	f, err := New(&cfg)
	require.NoError(t, err)

	r, ok := f.IngressRouter("tunA")
	assert.True(t, ok)
	assert.Equal(t, state.RouterId("a"), r)
	_, ok = f.IngressRouter("tunZ")
	assert.False(t, ok)

	name, ok := f.EgressInterface("c")
	assert.True(t, ok)
	assert.Equal(t, "tunB", name)
	_, ok = f.EgressInterface("b")
	assert.False(t, ok)
}

func TestStatsSnapshot(t *testing.T) {
	cfg := mock.LinearCfg()
	f, err := New(&cfg)
	require.NoError(t, err)

	f.Router("a").Stats.IncReceived()
	f.Router("a").Stats.IncForwarded()
	f.Router("b").Stats.IncLost()
	f.Router("c").Stats.IncIcmpGenerated()

	snap := f.StatsSnapshot()
	assert.Equal(t, uint64(1), snap["a"].Received)
	assert.Equal(t, uint64(1), snap["a"].Forwarded)
	assert.Equal(t, uint64(1), snap["b"].Lost)
	assert.Equal(t, uint64(1), snap["c"].IcmpGenerated)

	// snapshots are copies, later increments do not leak in
	f.Router("a").Stats.IncReceived()
	assert.Equal(t, uint64(1), snap["a"].Received)
	assert.Equal(t, uint64(2), f.Router("a").Stats.Snapshot().Received)
}
