package mock

import (
	"net/netip"

	"github.com/ayourtch/fabricsim/state"
)

// LinearCfg builds the 3-router linear fabric a - b - c with tunA entering
// at a and tunB at c. Cost 1, MTU 1500, no loss.
func LinearCfg() state.Config {
	cfg := state.Config{
		Routers: []state.RouterId{"a", "b", "c"},
		Links: []state.LinkCfg{
			{A: "a", B: "b"},
			{A: "b", B: "c"},
		},
		Interfaces: []state.InterfaceCfg{
			{Name: "tunA", Router: "a", Prefixes: []netip.Prefix{netip.MustParsePrefix("10.0.1.0/24")}},
			{Name: "tunB", Router: "c", Prefixes: []netip.Prefix{netip.MustParsePrefix("10.0.2.0/24")}},
		},
	}
	state.ExpandConfig(&cfg)
	return cfg
}

// DiamondCfg builds the fabric
//
//	    b
//	  /   \
//	a       d
//	  \   /
//	    c
//
// with equal costs, so a has two equal-cost next hops toward d.
func DiamondCfg() state.Config {
	cfg := state.Config{
		Routers: []state.RouterId{"a", "b", "c", "d"},
		Links: []state.LinkCfg{
			{A: "a", B: "b"},
			{A: "a", B: "c"},
			{A: "b", B: "d"},
			{A: "c", B: "d"},
		},
		Interfaces: []state.InterfaceCfg{
			{Name: "tunA", Router: "a", Prefixes: []netip.Prefix{netip.MustParsePrefix("10.0.1.0/24")}},
			{Name: "tunB", Router: "d", Prefixes: []netip.Prefix{netip.MustParsePrefix("10.0.2.0/24")}},
		},
	}
	state.ExpandConfig(&cfg)
	return cfg
}

// GridCfg builds an n by n grid of routers named RxXyY with unit-cost links,
// tunA at Rx0y0 and tunB at the opposite corner.
func GridCfg(n int) state.Config {
	cfg := state.Config{}
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			cfg.Routers = append(cfg.Routers, gridId(x, y))
		}
	}
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if x+1 < n {
				cfg.Links = append(cfg.Links, state.LinkCfg{A: gridId(x, y), B: gridId(x+1, y)})
			}
			if y+1 < n {
				cfg.Links = append(cfg.Links, state.LinkCfg{A: gridId(x, y), B: gridId(x, y+1)})
			}
		}
	}
	cfg.Interfaces = []state.InterfaceCfg{
		{Name: "tunA", Router: gridId(0, 0), Prefixes: []netip.Prefix{netip.MustParsePrefix("10.0.1.0/24")}},
		{Name: "tunB", Router: gridId(n-1, n-1), Prefixes: []netip.Prefix{netip.MustParsePrefix("10.0.2.0/24")}},
	}
	state.ExpandConfig(&cfg)
	return cfg
}

func gridId(x, y int) state.RouterId {
	return state.RouterId("Rx" + string(rune('0'+x)) + "y" + string(rune('0'+y)))
}
