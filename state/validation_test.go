package state

import (
	"net/netip"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validCfg() Config {
	return Config{
		Routers: []RouterId{"a", "b", "c"},
		Links: []LinkCfg{
			{A: "a", B: "b"},
			{A: "b", B: "c", Loss: 0.5},
		},
		Interfaces: []InterfaceCfg{
			{Name: "tunA", Router: "a", Prefixes: []netip.Prefix{netip.MustParsePrefix("10.0.1.0/24")}},
		},
	}
}

func TestNameValidator(t *testing.T) {
	assert.NoError(t, NameValidator("r1"))
	assert.NoError(t, NameValidator("edge-router.east_1"))
	assert.Error(t, NameValidator(""))
	assert.Error(t, NameValidator("has space"))
	assert.Error(t, NameValidator("router/0"))
	assert.Error(t, NameValidator(strings.Repeat("a", 101)))
}

func TestConfigValidatorAccepts(t *testing.T) {
	cfg := validCfg()
	assert.NoError(t, ConfigValidator(&cfg))
}

func TestConfigValidatorNoRouters(t *testing.T) {
	cfg := Config{}
	assert.Error(t, ConfigValidator(&cfg))
}

func TestConfigValidatorDuplicateRouter(t *testing.T) {
	cfg := validCfg()
	cfg.Routers = append(cfg.Routers, "a")
	assert.ErrorContains(t, ConfigValidator(&cfg), "duplicate router")
}

func TestConfigValidatorBadRouterName(t *testing.T) {
	cfg := validCfg()
	cfg.Routers[0] = "not a name"
	assert.Error(t, ConfigValidator(&cfg))
}

func TestConfigValidatorSelfLink(t *testing.T) {
	cfg := validCfg()
	cfg.Links = append(cfg.Links, LinkCfg{A: "a", B: "a"})
	assert.ErrorContains(t, ConfigValidator(&cfg), "itself")
}

func TestConfigValidatorUndefinedLinkEndpoint(t *testing.T) {
	cfg := validCfg()
	cfg.Links = append(cfg.Links, LinkCfg{A: "a", B: "ghost"})
	assert.ErrorContains(t, ConfigValidator(&cfg), "undefined router")
}

func TestConfigValidatorDuplicateLink(t *testing.T) {
	cfg := validCfg()
	// same edge declared with endpoints swapped still counts as duplicate
	cfg.Links = append(cfg.Links, LinkCfg{A: "b", B: "a"})
	assert.ErrorContains(t, ConfigValidator(&cfg), "duplicate link")
}

func TestConfigValidatorLossRange(t *testing.T) {
	cfg := validCfg()
	cfg.Links[0].Loss = 1.5
	assert.ErrorContains(t, ConfigValidator(&cfg), "out of range")

	cfg = validCfg()
	cfg.Links[0].Loss = -0.1
	assert.ErrorContains(t, ConfigValidator(&cfg), "out of range")
}

func TestConfigValidatorDuplicateInterface(t *testing.T) {
	cfg := validCfg()
	cfg.Interfaces = append(cfg.Interfaces, InterfaceCfg{Name: "tunA", Router: "b"})
	assert.ErrorContains(t, ConfigValidator(&cfg), "duplicate interface")
}

func TestConfigValidatorInterfaceUndefinedRouter(t *testing.T) {
	cfg := validCfg()
	cfg.Interfaces[0].Router = "ghost"
	assert.ErrorContains(t, ConfigValidator(&cfg), "undefined router")
}

func TestConfigValidatorInvalidPrefix(t *testing.T) {
	cfg := validCfg()
	cfg.Interfaces[0].Prefixes = append(cfg.Interfaces[0].Prefixes, netip.Prefix{})
	assert.ErrorContains(t, ConfigValidator(&cfg), "invalid prefix")
}
