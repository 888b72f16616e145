package routing

import (
	"testing"

	"github.com/ayourtch/fabricsim/mock"
	"github.com/ayourtch/fabricsim/state"
	"github.com/ayourtch/fabricsim/topology"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildFabric(t *testing.T, cfg state.Config) *topology.Fabric {
	t.Helper()
	f, err := topology.New(&cfg)
	require.NoError(t, err)
	return f
}

func TestComputeTablesLinear(t *testing.T) {
	f := buildFabric(t, mock.LinearCfg())
	tables := ComputeTables(f)

	assert.Equal(t, Table{"b": "b", "c": "b"}, tables["a"])
	assert.Equal(t, Table{"a": "a", "c": "c"}, tables["b"])
	assert.Equal(t, Table{"a": "b", "b": "b"}, tables["c"])
}

func TestComputeTablesRespectsCost(t *testing.T) {
	// direct a-b link is expensive, the detour through c wins
	//
	//	a --10-- b
	//	 \      /
	//	  1    1
	//	   \  /
	//	    c
	cfg := state.Config{
		Routers: []state.RouterId{"a", "b", "c"},
		Links: []state.LinkCfg{
			{A: "a", B: "b", Cost: 10},
			{A: "a", B: "c", Cost: 1},
			{A: "c", B: "b", Cost: 1},
		},
	}
	state.ExpandConfig(&cfg)
	tables := ComputeTables(buildFabric(t, cfg))

	assert.Equal(t, state.RouterId("c"), tables["a"]["b"])
	assert.Equal(t, state.RouterId("c"), tables["b"]["a"])
}

func TestComputeTablesTieBreak(t *testing.T) {
	// two equal-cost paths from a to d; the single-path table must pick
	// the smaller neighbour id, b, no matter the declaration order
	f := buildFabric(t, mock.DiamondCfg())
	tables := ComputeTables(f)
	assert.Equal(t, state.RouterId("b"), tables["a"]["d"])
	assert.Equal(t, state.RouterId("b"), tables["d"]["a"])
}

func TestComputeTablesUnreachable(t *testing.T) {
	cfg := state.Config{
		Routers: []state.RouterId{"a", "b", "island"},
		Links:   []state.LinkCfg{{A: "a", B: "b"}},
	}
	state.ExpandConfig(&cfg)
	tables := ComputeTables(buildFabric(t, cfg))

	_, ok := tables["a"]["island"]
	assert.False(t, ok)
	_, ok = tables["island"]["a"]
	assert.False(t, ok)
	assert.Equal(t, state.RouterId("b"), tables["a"]["b"])
}

func TestComputeTablesNoSelfEntry(t *testing.T) {
	tables := ComputeTables(buildFabric(t, mock.LinearCfg()))
	for r, table := range tables {
		_, ok := table[r]
		assert.False(t, ok, "router %s has a table entry for itself", r)
	}
}

func TestComputeTablesDeterministic(t *testing.T) {
	f := buildFabric(t, mock.GridCfg(4))
	first := ComputeTables(f)
	for i := 0; i < 5; i++ {
		assert.Empty(t, cmp.Diff(first, ComputeTables(f)))
	}

	firstMulti := ComputeMultiPathTables(f)
	for i := 0; i < 5; i++ {
		assert.Empty(t, cmp.Diff(firstMulti, ComputeMultiPathTables(f)))
	}
}

func TestComputeMultiPathTablesDiamond(t *testing.T) {
	f := buildFabric(t, mock.DiamondCfg())
	multi := ComputeMultiPathTables(f)

	assert.Equal(t, []state.RouterId{"b", "c"}, multi["a"]["d"])
	assert.Equal(t, []state.RouterId{"b", "c"}, multi["d"]["a"])
	// no fan-out where only one shortest path exists
	assert.Equal(t, []state.RouterId{"a"}, multi["b"]["a"])
	assert.Equal(t, []state.RouterId{"d"}, multi["c"]["d"])
}

func TestMultiPathContainsSinglePath(t *testing.T) {
	f := buildFabric(t, mock.GridCfg(3))
	single := ComputeTables(f)
	multi := ComputeMultiPathTables(f)

	for r, table := range single {
		for dst, nh := range table {
			hops, ok := multi[r][dst]
			require.True(t, ok, "%s -> %s missing from multipath", r, dst)
			assert.Contains(t, hops, nh)
			// ties resolve to the first multipath candidate
			assert.Equal(t, hops[0], nh)
		}
	}
}

func TestMultiPathHopsAreShortest(t *testing.T) {
	f := buildFabric(t, mock.GridCfg(3))
	multi := ComputeMultiPathTables(f)
	dist := floydWarshall(f)

	for r, table := range multi {
		for dst, hops := range table {
			for _, nh := range hops {
				l := f.Link(r, nh)
				require.NotNil(t, l)
				assert.Equal(t, dist[r][dst], uint64(l.Cost)+dist[nh][dst],
					"%s -> %s via %s is not a shortest path", r, dst, nh)
			}
		}
	}
}

// floydWarshall is an independent all-pairs shortest path oracle.
func floydWarshall(f *topology.Fabric) map[state.RouterId]map[state.RouterId]uint64 {
	const inf = ^uint64(0) / 2
	ids := f.Routers()
	dist := make(map[state.RouterId]map[state.RouterId]uint64, len(ids))
	for _, a := range ids {
		dist[a] = make(map[state.RouterId]uint64, len(ids))
		for _, b := range ids {
			if a == b {
				dist[a][b] = 0
			} else {
				dist[a][b] = inf
			}
		}
		for _, l := range f.LinksFrom(a) {
			dist[a][l.Other(a)] = uint64(l.Cost)
		}
	}
	for _, k := range ids {
		for _, a := range ids {
			for _, b := range ids {
				if dist[a][k]+dist[k][b] < dist[a][b] {
					dist[a][b] = dist[a][k] + dist[k][b]
				}
			}
		}
	}
	return dist
}
