package domain

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed localities.yaml
var builtinLocalities []byte

// stationCodeRe matches letter-prefixed alphanumeric station codes, e.g. "E000V00035".
var stationCodeRe = regexp.MustCompile(`^[A-Z][0-9A-Z]+$`)

// Locality is a named area and the stations that may report for it.
type Locality struct {
	Name string `yaml:"name"`
	// Codes are station code prefixes, checked in order.
	Codes []string `yaml:"codes"`
	// Note records spelling or matching caveats for downstream consumers.
	Note string `yaml:"note,omitempty"`
}

var loadBuiltin = sync.OnceValues(func() ([]Locality, error) {
	return ParseLocalities(builtinLocalities)
})

// Localities returns a copy of the built-in locality table in its defined order.
func Localities() ([]Locality, error) {
	locs, err := loadBuiltin()
	if err != nil {
		return nil, fmt.Errorf("built-in localities: %w", err)
	}
	return cloneLocalities(locs), nil
}

// ParseLocalities decodes and validates a YAML locality table.
func ParseLocalities(data []byte) ([]Locality, error) {
	var locs []Locality
	if err := yaml.Unmarshal(data, &locs); err != nil {
		return nil, fmt.Errorf("parse localities: %w", err)
	}
	if len(locs) == 0 {
		return nil, errors.New("locality table is empty")
	}

	seen := make(map[string]bool, len(locs))
	for i, l := range locs {
		if l.Name == "" {
			return nil, fmt.Errorf("locality %d: missing name", i)
		}
		if seen[l.Name] {
			return nil, fmt.Errorf("locality %q: duplicate name", l.Name)
		}
		seen[l.Name] = true

		if len(l.Codes) == 0 {
			return nil, fmt.Errorf("locality %q: no station codes", l.Name)
		}
		for _, code := range l.Codes {
			if !stationCodeRe.MatchString(code) {
				return nil, fmt.Errorf("locality %q: invalid station code %q", l.Name, code)
			}
		}
	}
	return locs, nil
}

func cloneLocalities(locs []Locality) []Locality {
	out := make([]Locality, len(locs))
	for i, l := range locs {
		out[i] = Locality{
			Name:  l.Name,
			Codes: append([]string(nil), l.Codes...),
			Note:  l.Note,
		}
	}
	return out
}
