package state

import (
	"fmt"
	"regexp"
	"slices"
)

var namePattern, _ = regexp.Compile("^[0-9A-Za-z._-]+$")

func NameValidator(s string) error {
	if !namePattern.MatchString(s) {
		return fmt.Errorf("%s is not a valid name, must match pattern %s", s, namePattern.String())
	}
	if len(s) > 100 {
		return fmt.Errorf("len(\"%s\") = %d > 100 is too long", s, len(s))
	}
	return nil
}

func ConfigValidator(cfg *Config) error {
	if len(cfg.Routers) == 0 {
		return fmt.Errorf("topology must define at least one router")
	}
	seen := make(map[RouterId]bool)
	for _, id := range cfg.Routers {
		err := NameValidator(string(id))
		if err != nil {
			return err
		}
		if seen[id] {
			return fmt.Errorf("duplicate router id: %s", id)
		}
		seen[id] = true
	}

	edges := make(map[[2]RouterId]bool)
	for _, link := range cfg.Links {
		if link.A == link.B {
			return fmt.Errorf("link must not connect %s to itself", link.A)
		}
		if !seen[link.A] {
			return fmt.Errorf("link references undefined router %s", link.A)
		}
		if !seen[link.B] {
			return fmt.Errorf("link references undefined router %s", link.B)
		}
		a, b := link.A, link.B
		if b < a {
			a, b = b, a
		}
		if edges[[2]RouterId{a, b}] {
			return fmt.Errorf("duplicate link found: %s, %s", a, b)
		}
		edges[[2]RouterId{a, b}] = true
		if link.Loss < 0 || link.Loss > 1 {
			return fmt.Errorf("link %s-%s loss %v out of range [0, 1]", link.A, link.B, link.Loss)
		}
	}

	names := make([]string, 0, len(cfg.Interfaces))
	for _, ifc := range cfg.Interfaces {
		err := NameValidator(ifc.Name)
		if err != nil {
			return err
		}
		if slices.Contains(names, ifc.Name) {
			return fmt.Errorf("duplicate interface name: %s", ifc.Name)
		}
		names = append(names, ifc.Name)
		if !cfg.HasRouter(ifc.Router) {
			return fmt.Errorf("interface %s references undefined router %s", ifc.Name, ifc.Router)
		}
		for _, p := range ifc.Prefixes {
			if !p.IsValid() {
				return fmt.Errorf("interface %s has an invalid prefix", ifc.Name)
			}
		}
	}
	return nil
}
