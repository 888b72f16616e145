package topology

import "sync/atomic"

// RouterStats holds the per-router counters mutated by the forwarding
// engine. Each field is an independent atomic so that unrelated routers (and
// unrelated events on the same router) never serialize on a shared lock.
type RouterStats struct {
	received      atomic.Uint64
	forwarded     atomic.Uint64
	icmpGenerated atomic.Uint64
	lost          atomic.Uint64
}

func (s *RouterStats) IncReceived()      { s.received.Add(1) }
func (s *RouterStats) IncForwarded()     { s.forwarded.Add(1) }
func (s *RouterStats) IncIcmpGenerated() { s.icmpGenerated.Add(1) }
func (s *RouterStats) IncLost()          { s.lost.Add(1) }

// StatsSnapshot is a point-in-time copy of one router's counters.
type StatsSnapshot struct {
	Received      uint64
	Forwarded     uint64
	IcmpGenerated uint64
	Lost          uint64
}

func (s *RouterStats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Received:      s.received.Load(),
		Forwarded:     s.forwarded.Load(),
		IcmpGenerated: s.icmpGenerated.Load(),
		Lost:          s.lost.Load(),
	}
}
