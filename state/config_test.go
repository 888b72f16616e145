package state

import (
	"net/netip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
simulation:
  mtu: 1400
  seed: 7
  enable_multipath: true
routers:
  - a
  - b
  - c
links:
  - a: a
    b: b
  - a: b
    b: c
    cost: 5
    mtu: 1280
    loss: 0.25
interfaces:
  - name: tunA
    router: a
    prefixes:
      - 10.0.1.0/24
  - name: tunB
    router: c
    prefixes:
      - 10.0.2.0/24
      - 2001:db8::/64
packet_file: packets.txt
`

func writeConfig(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fabric.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, uint32(1400), cfg.Simulation.Mtu)
	assert.Equal(t, uint64(7), cfg.Simulation.Seed)
	assert.True(t, cfg.Simulation.EnableMultipath)
	assert.Equal(t, []RouterId{"a", "b", "c"}, cfg.Routers)

	require.Len(t, cfg.Links, 2)
	assert.Equal(t, LinkCfg{A: "b", B: "c", Cost: 5, Mtu: 1280, Loss: 0.25}, cfg.Links[1])

	require.Len(t, cfg.Interfaces, 2)
	assert.Equal(t, RouterId("a"), cfg.Interfaces[0].Router)
	assert.Equal(t, []netip.Prefix{netip.MustParsePrefix("10.0.1.0/24")}, cfg.Interfaces[0].Prefixes)
	assert.Len(t, cfg.Interfaces[1].Prefixes, 2)
	assert.Equal(t, "packets.txt", cfg.PacketFile)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigBadYaml(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "routers: [a\n"))
	assert.Error(t, err)
}

func TestExpandConfigDefaults(t *testing.T) {
	cfg := Config{
		Routers: []RouterId{"a", "b"},
		Links:   []LinkCfg{{A: "a", B: "b"}},
	}
	ExpandConfig(&cfg)

	assert.Equal(t, uint32(DefaultMtu), cfg.Simulation.Mtu)
	assert.Equal(t, DefaultReportInterval, cfg.Simulation.ReportInterval)
	assert.Equal(t, uint32(DefaultLinkCost), cfg.Links[0].Cost)
	assert.Equal(t, uint32(DefaultMtu), cfg.Links[0].Mtu)
}

func TestExpandConfigLinkInheritsSimulationMtu(t *testing.T) {
	cfg := Config{
		Simulation: SimulationCfg{Mtu: 9000},
		Routers:    []RouterId{"a", "b", "c"},
		Links: []LinkCfg{
			{A: "a", B: "b"},
			{A: "b", B: "c", Mtu: 1280},
		},
	}
	ExpandConfig(&cfg)

	assert.Equal(t, uint32(9000), cfg.Links[0].Mtu)
	// an explicit link MTU is never overridden
	assert.Equal(t, uint32(1280), cfg.Links[1].Mtu)
}

func TestExpandConfigGeneratorDefaults(t *testing.T) {
	cfg := Config{
		Routers:   []RouterId{"a"},
		Generator: &GeneratorCfg{},
	}
	ExpandConfig(&cfg)
	assert.Equal(t, DefaultGeneratorInterval, cfg.Generator.Interval)
	assert.Equal(t, DefaultGeneratorFlows, cfg.Generator.Flows)
}

func TestCoalescePrefix(t *testing.T) {
	merged := CoalescePrefix([]netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/25"),
		netip.MustParsePrefix("10.0.0.128/25"),
	})
	assert.Equal(t, []netip.Prefix{netip.MustParsePrefix("10.0.0.0/24")}, merged)
}

func TestInterfaceLookup(t *testing.T) {
	cfg := Config{
		Routers: []RouterId{"a"},
		Interfaces: []InterfaceCfg{
			{Name: "tunA", Router: "a"},
		},
	}
	require.NotNil(t, cfg.Interface("tunA"))
	assert.Equal(t, RouterId("a"), cfg.Interface("tunA").Router)
	assert.Nil(t, cfg.Interface("tunZ"))
	assert.True(t, cfg.HasRouter("a"))
	assert.False(t, cfg.HasRouter("z"))
}
