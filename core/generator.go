package core

import (
	"encoding/binary"
	"net/netip"
	"time"

	"github.com/ayourtch/fabricsim/packet"
	"github.com/ayourtch/fabricsim/perf"
	"github.com/ayourtch/fabricsim/state"
)

// Generator periodically injects synthetic UDP probes between every pair of
// external interfaces, rotating source ports so that traffic spreads over
// multiple flows in multipath mode.
type Generator struct {
	env *state.Env
	sim *Simulator
}

func NewGenerator(env *state.Env, sim *Simulator) *Generator {
	return &Generator{env: env, sim: sim}
}

// Run blocks until the run context is cancelled.
func (g *Generator) Run() {
	cfg := g.env.Cfg.Generator
	ifaces := g.env.Cfg.Interfaces
	if cfg == nil || len(ifaces) < 2 {
		return
	}
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	flow := 0
	for {
		select {
		case <-g.env.Context.Done():
			return
		case <-ticker.C:
			for i := range ifaces {
				for j := range ifaces {
					if i == j {
						continue
					}
					g.probe(&ifaces[i], &ifaces[j], flow)
				}
			}
			flow = (flow + 1) % cfg.Flows
		}
	}
}

func (g *Generator) probe(from, to *state.InterfaceCfg, flow int) {
	if len(from.Prefixes) == 0 || len(to.Prefixes) == 0 {
		return
	}
	src := from.Prefixes[0].Addr().Next()
	dst := to.Prefixes[0].Addr().Next()
	if src.Is4() != dst.Is4() {
		return // mixed address families, no probe between these two
	}
	raw := buildProbe(src, dst, uint16(40000+flow), 7)
	perf.GeneratedPerSecond.Add(1)
	out, err := g.sim.Resolve(raw, from.Name, "")
	if err != nil {
		g.env.Log.Warn("probe submission failed", "err", err)
		return
	}
	g.env.Log.Debug("probe", "from", from.Name, "to", to.Name, "flow", flow, "outcome", out)
}

// buildProbe assembles a minimal UDP datagram, IPv4 or IPv6 depending on the
// addresses.
func buildProbe(src, dst netip.Addr, srcPort, dstPort uint16) []byte {
	if src.Is4() {
		buf := make([]byte, 28)
		buf[0] = 0x45
		binary.BigEndian.PutUint16(buf[2:4], 28)
		buf[8] = state.GeneratorTtl
		buf[9] = packet.ProtoUDP
		s, d := src.As4(), dst.As4()
		copy(buf[12:16], s[:])
		copy(buf[16:20], d[:])
		binary.BigEndian.PutUint16(buf[10:12], packet.Checksum(buf[:20]))
		binary.BigEndian.PutUint16(buf[20:22], srcPort)
		binary.BigEndian.PutUint16(buf[22:24], dstPort)
		binary.BigEndian.PutUint16(buf[24:26], 8) // UDP length
		return buf
	}
	buf := make([]byte, 48)
	buf[0] = 0x60
	binary.BigEndian.PutUint16(buf[4:6], 8)
	buf[6] = packet.ProtoUDP
	buf[7] = state.GeneratorTtl
	s, d := src.As16(), dst.As16()
	copy(buf[8:24], s[:])
	copy(buf[24:40], d[:])
	binary.BigEndian.PutUint16(buf[40:42], srcPort)
	binary.BigEndian.PutUint16(buf[42:44], dstPort)
	binary.BigEndian.PutUint16(buf[44:46], 8)
	return buf
}
