package state

import (
	"net"
	"net/netip"
	"os"
	"slices"
	"time"

	"github.com/cilium/cilium/pkg/ip"
	"github.com/goccy/go-yaml"
)

// RouterId uniquely identifies a router within a fabric.
type RouterId string

// SimulationCfg holds run-wide simulation parameters.
type SimulationCfg struct {
	Mtu             uint32        `yaml:"mtu,omitempty"`  // default link MTU, applied to links that do not set one
	Seed            uint64        `yaml:"seed,omitempty"` // RNG seed for loss simulation, fixed seed means reproducible runs
	EnableMultipath bool          `yaml:"enable_multipath,omitempty"`
	ReportInterval  time.Duration `yaml:"report_interval,omitempty"` // how often router statistics are logged
}

// InterfaceCfg maps an external interface name to its ingress router and
// the address prefixes that are reachable through it.
type InterfaceCfg struct {
	Name     string
	Router   RouterId
	Prefixes []netip.Prefix `yaml:",omitempty"`
}

// LinkCfg describes one bidirectional link between two routers.
type LinkCfg struct {
	A    RouterId
	B    RouterId
	Cost uint32  `yaml:",omitempty"` // routing metric, defaults to 1
	Mtu  uint32  `yaml:"mtu,omitempty"`
	Loss float64 `yaml:",omitempty"` // loss probability in [0, 1]
}

// GeneratorCfg configures the synthetic traffic generator.
type GeneratorCfg struct {
	Interval time.Duration `yaml:",omitempty"`
	Flows    int           `yaml:",omitempty"` // number of distinct 5-tuples to rotate through
}

// Config is the full simulator configuration document.
type Config struct {
	Simulation SimulationCfg  `yaml:",omitempty"`
	Interfaces []InterfaceCfg `yaml:",omitempty"`
	Routers    []RouterId
	Links      []LinkCfg
	Generator  *GeneratorCfg `yaml:",omitempty"`
	PacketFile string        `yaml:"packet_file,omitempty"` // hex-encoded mock packets replayed at startup
	LogPath    string        `yaml:"log_path,omitempty"`
}

func LoadConfig(path string) (*Config, error) {
	var cfg Config
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	err = yaml.Unmarshal(file, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ExpandConfig fills in defaults and normalizes interface prefixes.
func ExpandConfig(cfg *Config) {
	if cfg.Simulation.Mtu == 0 {
		cfg.Simulation.Mtu = DefaultMtu
	}
	if cfg.Simulation.ReportInterval == 0 {
		cfg.Simulation.ReportInterval = DefaultReportInterval
	}
	for idx, l := range cfg.Links {
		if l.Cost == 0 {
			l.Cost = DefaultLinkCost
		}
		if l.Mtu == 0 {
			l.Mtu = cfg.Simulation.Mtu
		}
		cfg.Links[idx] = l
	}
	for idx, ifc := range cfg.Interfaces {
		ifc.Prefixes = CoalescePrefix(ifc.Prefixes)
		cfg.Interfaces[idx] = ifc
	}
	if cfg.Generator != nil {
		if cfg.Generator.Interval == 0 {
			cfg.Generator.Interval = DefaultGeneratorInterval
		}
		if cfg.Generator.Flows == 0 {
			cfg.Generator.Flows = DefaultGeneratorFlows
		}
	}
}

func (c *Config) HasRouter(id RouterId) bool {
	return slices.Contains(c.Routers, id)
}

func (c *Config) Interface(name string) *InterfaceCfg {
	idx := slices.IndexFunc(c.Interfaces, func(ifc InterfaceCfg) bool {
		return ifc.Name == name
	})
	if idx == -1 {
		return nil
	}
	return &c.Interfaces[idx]
}

func toIPNets(prefixes []netip.Prefix) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(prefixes))
	for _, p := range prefixes {
		if p.IsValid() {
			nets = append(nets, &net.IPNet{
				IP:   p.Addr().AsSlice(),
				Mask: net.CIDRMask(p.Bits(), p.Addr().BitLen()),
			})
		}
	}
	return nets
}

func fromIPNets(nets []*net.IPNet) []netip.Prefix {
	output := make([]netip.Prefix, 0, len(nets))
	for _, n := range nets {
		if addr, ok := netip.AddrFromSlice(n.IP); ok {
			ones, _ := n.Mask.Size()
			output = append(output, netip.PrefixFrom(addr.Unmap(), ones))
		}
	}
	return output
}

func CoalescePrefix(prefixes []netip.Prefix) []netip.Prefix {
	ipv4, ipv6 := ip.CoalesceCIDRs(toIPNets(prefixes))
	return fromIPNets(append(ipv4, ipv6...))
}
