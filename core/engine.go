package core

import (
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/ayourtch/fabricsim/packet"
	"github.com/ayourtch/fabricsim/routing"
	"github.com/ayourtch/fabricsim/state"
	"github.com/ayourtch/fabricsim/topology"
	"github.com/jellydator/ttlcache/v3"
)

// Engine drives one packet at a time hop-by-hop across the fabric. Routing
// tables are read-only after construction, so an Engine is safe for
// concurrent use; the only shared mutable state are the per-router atomic
// counters, the RNG (guarded for the duration of a single draw) and the
// flow cache.
type Engine struct {
	log       *slog.Logger
	fabric    *topology.Fabric
	tables    routing.Tables
	multi     routing.MultiPathTables
	multipath bool

	rngMu sync.Mutex
	rng   *rand.Rand

	flows *ttlcache.Cache[flowId, state.RouterId]
}

// flowId pins a flow's multipath choice at one router.
type flowId struct {
	router state.RouterId
	key    packet.FlowKey
}

func NewEngine(log *slog.Logger, fabric *topology.Fabric, tables routing.Tables, multi routing.MultiPathTables, multipath bool, seed uint64) *Engine {
	return &Engine{
		log:       log,
		fabric:    fabric,
		tables:    tables,
		multi:     multi,
		multipath: multipath,
		rng:       rand.New(rand.NewPCG(seed, seed)),
		flows: ttlcache.New[flowId, state.RouterId](
			ttlcache.WithTTL[flowId, state.RouterId](state.FlowCacheTTL),
			ttlcache.WithDisableTouchOnHit[flowId, state.RouterId](),
		),
	}
}

// Process runs the full pipeline for one datagram entering at ingress and
// destined for the egress router. It is an explicit loop, never recursion;
// the TTL bound and the self-loop guard are the only cycle breakers.
func (e *Engine) Process(raw []byte, ingress, egress state.RouterId) Outcome {
	cur := ingress
	buf := raw
	hops := 0
	for {
		out := e.processHop(buf, cur, egress, hops)
		if out.Kind != KindForwarded {
			return out
		}
		cur = out.NextHop
		buf = out.Bytes
		hops++
	}
}

// processHop executes the per-hop pipeline at cur. A KindForwarded outcome
// means the caller should continue at NextHop with Bytes; everything else is
// terminal.
func (e *Engine) processHop(buf []byte, cur, egress state.RouterId, hops int) Outcome {
	r := e.fabric.Router(cur)
	if r == nil {
		return Outcome{Kind: KindDropped, Reason: DropNoRoute, Hops: hops}
	}
	pkt, err := packet.Parse(buf)
	// received is counted at the current router regardless of what happens
	// to the packet afterwards
	r.Stats.IncReceived()
	if err != nil {
		e.log.Debug("dropping malformed packet", "router", cur, "err", err)
		return Outcome{Kind: KindDropped, Reason: DropMalformedPacket, Hops: hops}
	}

	if cur == egress {
		return Outcome{Kind: KindDelivered, Bytes: pkt.Serialize(), Egress: cur, Hops: hops}
	}

	if !pkt.DecrementTtl() {
		if pkt.IsIcmpError() {
			// never reply to an ICMP error with another ICMP error
			e.log.Debug("expired icmp error dropped", "router", cur, "packet", pkt)
			return Outcome{Kind: KindDropped, Reason: DropTtlExpired, Hops: hops}
		}
		r.Stats.IncIcmpGenerated()
		e.log.Debug("ttl expired", "router", cur, "packet", pkt)
		return Outcome{
			Kind:   KindIcmpGenerated,
			Icmp:   packet.KindTimeExceeded,
			Bytes:  packet.TimeExceeded(pkt),
			Origin: cur,
			Hops:   hops,
		}
	}

	nh, ok := e.nextHop(cur, egress, pkt)
	if !ok {
		e.log.Debug("no route", "router", cur, "egress", egress)
		return Outcome{Kind: KindDropped, Reason: DropNoRoute, Hops: hops}
	}
	if nh == cur {
		// an inconsistent table would otherwise loop forever
		e.log.Warn("routing table points router at itself", "router", cur, "egress", egress)
		return Outcome{Kind: KindDropped, Reason: DropSelfLoopDetected, Hops: hops}
	}
	link := e.fabric.Link(cur, nh)
	if link == nil {
		e.log.Warn("routing table names a non-neighbour next hop", "router", cur, "next_hop", nh)
		return Outcome{Kind: KindDropped, Reason: DropNoRoute, Hops: hops}
	}

	if pkt.Size() > int(link.Mtu) {
		if pkt.IsIcmpError() {
			e.log.Debug("oversized icmp error dropped", "router", cur, "packet", pkt)
			return Outcome{Kind: KindDropped, Reason: DropMtuExceeded, Hops: hops}
		}
		r.Stats.IncIcmpGenerated()
		e.log.Debug("mtu exceeded", "router", cur, "size", pkt.Size(), "mtu", link.Mtu)
		return Outcome{
			Kind:   KindIcmpGenerated,
			Icmp:   packet.KindFragmentationNeeded,
			Bytes:  packet.FragmentationNeeded(pkt, link.Mtu),
			Origin: cur,
			Hops:   hops,
		}
	}

	// fresh draw per hop, lock held only for the draw itself
	if e.draw() < link.Loss {
		r.Stats.IncLost()
		e.log.Debug("simulated loss", "router", cur, "next_hop", nh, "loss", link.Loss)
		return Outcome{Kind: KindDropped, Reason: DropSimulatedLoss, Hops: hops}
	}

	r.Stats.IncForwarded()
	return Outcome{Kind: KindForwarded, NextHop: nh, Bytes: pkt.Serialize(), Hops: hops}
}

// nextHop consults the single-path or multipath table for cur. Multipath
// selection hashes the flow key; the hash alone fixes the branch, so flow
// affinity holds across runs and engine instances. The cache merely memoizes
// that deterministic choice to skip rehashing on a busy flow; dropping an
// entry changes nothing.
func (e *Engine) nextHop(cur, egress state.RouterId, pkt *packet.Packet) (state.RouterId, bool) {
	if !e.multipath {
		nh, ok := e.tables[cur][egress]
		return nh, ok
	}
	hops := e.multi[cur][egress]
	if len(hops) == 0 {
		return "", false
	}
	if len(hops) == 1 {
		return hops[0], true
	}
	key := pkt.FlowKey()
	id := flowId{router: cur, key: key}
	if item := e.flows.Get(id); item != nil {
		return item.Value(), true
	}
	nh := hops[key.Hash()%uint64(len(hops))]
	e.flows.Set(id, nh, ttlcache.DefaultTTL)
	return nh, true
}

func (e *Engine) draw() float64 {
	e.rngMu.Lock()
	v := e.rng.Float64()
	e.rngMu.Unlock()
	return v
}
