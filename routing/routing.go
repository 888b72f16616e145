// Package routing computes next-hop tables over a fabric. Tables are built
// once after fabric construction and are immutable afterward; recomputation
// is a whole-table rebuild.
package routing

import (
	"container/heap"

	"github.com/ayourtch/fabricsim/state"
	"github.com/ayourtch/fabricsim/topology"
)

// Table maps a destination router to the single next hop toward it. A
// destination that is unreachable is simply absent.
type Table map[state.RouterId]state.RouterId

// Tables holds one Table per router.
type Tables map[state.RouterId]Table

// MultiPathTable maps a destination router to every equal-cost next hop
// toward it, ordered by router id ascending.
type MultiPathTable map[state.RouterId][]state.RouterId

// MultiPathTables holds one MultiPathTable per router.
type MultiPathTables map[state.RouterId]MultiPathTable

// ComputeTables builds the single-path table for every router. Among
// equal-cost next hops the lexicographically smallest neighbour id wins,
// which makes the result reproducible for identical topology input.
func ComputeTables(f *topology.Fabric) Tables {
	tables := make(Tables)
	for _, id := range f.Routers() {
		tables[id] = make(Table)
	}
	for _, dst := range f.Routers() {
		dist := distancesTo(f, dst)
		for _, r := range f.Routers() {
			if r == dst {
				continue
			}
			dr, ok := dist[r]
			if !ok {
				continue // unreachable, no entry
			}
			// links are ordered by neighbour id, so the first match
			// is the lexicographic tie-break winner
			for _, l := range f.LinksFrom(r) {
				n := l.Other(r)
				if dn, ok := dist[n]; ok && dn+uint64(l.Cost) == dr {
					tables[r][dst] = n
					break
				}
			}
		}
	}
	return tables
}

// ComputeMultiPathTables builds the equal-cost multipath table for every
// router: all next hops that start a minimal-cost path, ordered by
// neighbour id ascending.
func ComputeMultiPathTables(f *topology.Fabric) MultiPathTables {
	tables := make(MultiPathTables)
	for _, id := range f.Routers() {
		tables[id] = make(MultiPathTable)
	}
	for _, dst := range f.Routers() {
		dist := distancesTo(f, dst)
		for _, r := range f.Routers() {
			if r == dst {
				continue
			}
			dr, ok := dist[r]
			if !ok {
				continue
			}
			var hops []state.RouterId
			for _, l := range f.LinksFrom(r) {
				n := l.Other(r)
				if dn, ok := dist[n]; ok && dn+uint64(l.Cost) == dr {
					hops = append(hops, n)
				}
			}
			if len(hops) > 0 {
				tables[r][dst] = hops
			}
		}
	}
	return tables
}

// distancesTo runs Dijkstra from dst. Links are bidirectional with
// non-negative cost, so distances toward dst equal distances from it.
func distancesTo(f *topology.Fabric, dst state.RouterId) map[state.RouterId]uint64 {
	dist := make(map[state.RouterId]uint64)
	pq := &distQueue{{id: dst, dist: 0}}
	for pq.Len() > 0 {
		cur := heap.Pop(pq).(distEntry)
		if _, done := dist[cur.id]; done {
			continue
		}
		dist[cur.id] = cur.dist
		for _, l := range f.LinksFrom(cur.id) {
			n := l.Other(cur.id)
			if _, done := dist[n]; !done {
				heap.Push(pq, distEntry{id: n, dist: cur.dist + uint64(l.Cost)})
			}
		}
	}
	return dist
}

type distEntry struct {
	id   state.RouterId
	dist uint64
}

type distQueue []distEntry

func (q distQueue) Len() int           { return len(q) }
func (q distQueue) Less(i, j int) bool { return q[i].dist < q[j].dist }
func (q distQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *distQueue) Push(x any) {
	*q = append(*q, x.(distEntry))
}

func (q *distQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	*q = old[:n-1]
	return e
}
