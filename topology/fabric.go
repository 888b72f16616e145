package topology

import (
	"fmt"
	"slices"

	"github.com/ayourtch/fabricsim/state"
)

// UnknownRouterReferenceError is returned when a link or ingress mapping
// names a router that is not part of the fabric. It is fatal at
// construction, the simulation never starts with a dangling reference.
type UnknownRouterReferenceError struct {
	Ref     state.RouterId
	Context string
}

func (e *UnknownRouterReferenceError) Error() string {
	return fmt.Sprintf("unknown router reference %s in %s", e.Ref, e.Context)
}

// Router is one node of the fabric. Identity is immutable for the lifetime
// of a run; only the statistics mutate.
type Router struct {
	Id    state.RouterId
	Stats RouterStats
}

// Link is one bidirectional link. Endpoints are stored sorted so that a
// link's identity does not depend on declaration order.
type Link struct {
	A    state.RouterId
	B    state.RouterId
	Cost uint32
	Mtu  uint32
	Loss float64
}

// Other returns the far endpoint as seen from r.
func (l *Link) Other(r state.RouterId) state.RouterId {
	if l.A == r {
		return l.B
	}
	return l.A
}

func (l *Link) Has(r state.RouterId) bool {
	return l.A == r || l.B == r
}

// Fabric owns the full router/link graph for one simulation run. It is built
// once from configuration and read-shared afterward; the only mutable state
// it carries are the per-router statistics counters.
type Fabric struct {
	routers map[state.RouterId]*Router
	adj     map[state.RouterId][]*Link
	ingress map[string]state.RouterId // interface name -> ingress router
	egress  map[state.RouterId]string // reverse of ingress
}

func New(cfg *state.Config) (*Fabric, error) {
	f := &Fabric{
		routers: make(map[state.RouterId]*Router),
		adj:     make(map[state.RouterId][]*Link),
		ingress: make(map[string]state.RouterId),
		egress:  make(map[state.RouterId]string),
	}
	for _, id := range cfg.Routers {
		f.routers[id] = &Router{Id: id}
		f.adj[id] = make([]*Link, 0)
	}
	for _, lc := range cfg.Links {
		if _, ok := f.routers[lc.A]; !ok {
			return nil, &UnknownRouterReferenceError{Ref: lc.A, Context: "link"}
		}
		if _, ok := f.routers[lc.B]; !ok {
			return nil, &UnknownRouterReferenceError{Ref: lc.B, Context: "link"}
		}
		a, b := lc.A, lc.B
		if b < a {
			a, b = b, a
		}
		link := &Link{A: a, B: b, Cost: lc.Cost, Mtu: lc.Mtu, Loss: lc.Loss}
		f.adj[a] = append(f.adj[a], link)
		f.adj[b] = append(f.adj[b], link)
	}
	// deterministic neighbour order, independent of config declaration order
	for id := range f.adj {
		slices.SortFunc(f.adj[id], func(x, y *Link) int {
			if x.Other(id) < y.Other(id) {
				return -1
			}
			if x.Other(id) > y.Other(id) {
				return 1
			}
			return 0
		})
	}
	for _, ifc := range cfg.Interfaces {
		if _, ok := f.routers[ifc.Router]; !ok {
			return nil, &UnknownRouterReferenceError{Ref: ifc.Router, Context: "ingress map"}
		}
		f.ingress[ifc.Name] = ifc.Router
		f.egress[ifc.Router] = ifc.Name
	}
	return f, nil
}

// Router returns the router with the given id, or nil.
func (f *Fabric) Router(id state.RouterId) *Router {
	return f.routers[id]
}

// Routers returns all router ids, sorted.
func (f *Fabric) Routers() []state.RouterId {
	ids := make([]state.RouterId, 0, len(f.routers))
	for id := range f.routers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// LinksFrom returns the links incident to id, ordered by neighbour id.
func (f *Fabric) LinksFrom(id state.RouterId) []*Link {
	return f.adj[id]
}

// Link returns the link connecting a and b, or nil when they are not
// directly connected.
func (f *Fabric) Link(a, b state.RouterId) *Link {
	for _, l := range f.adj[a] {
		if l.Has(b) {
			return l
		}
	}
	return nil
}

// IngressRouter resolves an external interface name to its ingress router.
func (f *Fabric) IngressRouter(ifName string) (state.RouterId, bool) {
	id, ok := f.ingress[ifName]
	return id, ok
}

// EgressInterface returns the external interface a router is mapped to, if
// it is an egress boundary.
func (f *Fabric) EgressInterface(id state.RouterId) (string, bool) {
	name, ok := f.egress[id]
	return name, ok
}

// StatsSnapshot returns an immutable copy of every router's counters.
func (f *Fabric) StatsSnapshot() map[state.RouterId]StatsSnapshot {
	snap := make(map[state.RouterId]StatsSnapshot, len(f.routers))
	for id, r := range f.routers {
		snap[id] = r.Stats.Snapshot()
	}
	return snap
}
