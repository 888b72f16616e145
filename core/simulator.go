package core

import (
	"fmt"
	"net/netip"
	"time"

	"github.com/ayourtch/fabricsim/packet"
	"github.com/ayourtch/fabricsim/perf"
	"github.com/ayourtch/fabricsim/routing"
	"github.com/ayourtch/fabricsim/state"
	"github.com/ayourtch/fabricsim/topology"
	"github.com/gaissmai/bart"
)

// Simulator is the external-facing entry point around the engine. It owns
// the fabric, the routing tables and the prefix table used to infer which
// egress interface a destination address belongs to.
type Simulator struct {
	env      *state.Env
	fabric   *topology.Fabric
	engine   *Engine
	prefixes bart.Table[string] // address prefix -> interface name
}

func NewSimulator(env *state.Env) (*Simulator, error) {
	fabric, err := topology.New(&env.Cfg)
	if err != nil {
		return nil, err
	}
	tables := routing.ComputeTables(fabric)
	multi := routing.ComputeMultiPathTables(fabric)
	s := &Simulator{
		env:    env,
		fabric: fabric,
		engine: NewEngine(env.Log, fabric, tables, multi,
			env.Cfg.Simulation.EnableMultipath, env.Cfg.Simulation.Seed),
	}
	for _, ifc := range env.Cfg.Interfaces {
		for _, p := range ifc.Prefixes {
			s.prefixes.Insert(p, ifc.Name)
		}
	}
	env.Log.Info("simulator ready",
		"routers", len(fabric.Routers()),
		"multipath", env.Cfg.Simulation.EnableMultipath)
	return s, nil
}

func (s *Simulator) Fabric() *topology.Fabric {
	return s.fabric
}

func (s *Simulator) Engine() *Engine {
	return s.engine
}

// Submit runs one raw datagram through the fabric. ingress may be an
// external interface name or a router id. When forced names an egress
// interface, address-prefix inference is bypassed entirely; otherwise the
// egress is looked up from the packet's destination address.
func (s *Simulator) Submit(raw []byte, ingress string, forced string) (Outcome, error) {
	start := time.Now()
	perf.SubmitsPerSecond.Add(1)

	in, ok := s.fabric.IngressRouter(ingress)
	if !ok {
		if s.fabric.Router(state.RouterId(ingress)) == nil {
			return Outcome{}, fmt.Errorf("unknown ingress %q", ingress)
		}
		in = state.RouterId(ingress)
	}

	var egress state.RouterId
	if forced != "" {
		r, ok := s.fabric.IngressRouter(forced)
		if !ok {
			return Outcome{}, fmt.Errorf("unknown egress interface %q", forced)
		}
		egress = r
	} else if pkt, err := packet.Parse(raw); err == nil {
		// a malformed packet skips inference; the engine will account
		// for it and report the drop
		if ifName, ok := s.prefixes.Lookup(pkt.Dst); ok {
			egress, _ = s.fabric.IngressRouter(ifName)
		}
	}

	out := s.engine.Process(raw, in, egress)

	switch out.Kind {
	case KindDelivered:
		perf.DeliveredPerSecond.Add(1)
	case KindIcmpGenerated:
		perf.IcmpPerSecond.Add(1)
	case KindDropped:
		perf.DroppedPerSecond.Add(1)
	}
	perf.ProcessLatency.Add(float64(time.Since(start).Microseconds()))
	s.env.Log.Debug("packet processed", "ingress", in, "egress", egress, "outcome", out)
	return out, nil
}

// Resolve submits a datagram and re-submits any synthesized ICMP reply
// through the same entry point, with the generating router as the new
// ingress. Synthesized replies are treated identically to external traffic;
// the chain is finite because an ICMP error never begets another one.
func (s *Simulator) Resolve(raw []byte, ingress string, forced string) (Outcome, error) {
	out, err := s.Submit(raw, ingress, forced)
	for err == nil && out.Kind == KindIcmpGenerated {
		out, err = s.Submit(out.Bytes, string(out.Origin), "")
	}
	return out, err
}

// InterfaceForAddr returns the interface whose prefixes cover addr, used to
// infer the ingress side for replayed packets.
func (s *Simulator) InterfaceForAddr(addr netip.Addr) (string, bool) {
	return s.prefixes.Lookup(addr)
}
