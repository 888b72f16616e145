package core

import (
	"os"

	"github.com/ayourtch/fabricsim/mock"
	"github.com/ayourtch/fabricsim/packet"
	"github.com/ayourtch/fabricsim/perf"
)

// ReplayPacketFile feeds every datagram from the configured packet file
// through the simulator. Lines without an explicit interface get their
// ingress inferred from the source address prefix; when that fails the first
// configured interface is used. A missing file is not fatal.
func ReplayPacketFile(s *Simulator) error {
	path := s.env.Cfg.PacketFile
	entries, err := mock.ReadPacketFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.env.Log.Warn("packet file not found, nothing to replay", "path", path)
			return nil
		}
		return err
	}
	if len(entries) == 0 {
		s.env.Log.Warn("packet file contains no packets", "path", path)
		return nil
	}
	for _, entry := range entries {
		ingress := entry.Ingress
		if ingress == "" {
			if pkt, err := packet.Parse(entry.Data); err == nil {
				if name, ok := s.InterfaceForAddr(pkt.Src); ok {
					ingress = name
				}
			}
		}
		if ingress == "" {
			if len(s.env.Cfg.Interfaces) == 0 {
				s.env.Log.Warn("could not infer ingress and no interfaces configured, skipping packet")
				continue
			}
			ingress = s.env.Cfg.Interfaces[0].Name
			s.env.Log.Warn("could not infer ingress, defaulting", "interface", ingress)
		}
		perf.ReplayedPerSecond.Add(1)
		out, err := s.Resolve(entry.Data, ingress, "")
		if err != nil {
			return err
		}
		s.env.Log.Info("replayed packet", "ingress", ingress, "outcome", out)
	}
	s.env.Log.Info("packet file replay complete", "packets", len(entries))
	return nil
}
