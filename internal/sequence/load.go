package sequence

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

var ErrEmpty = errors.New("sequence: program has no clips")

// LoadFile reads a YAML playlist and sorts every envelope's keys by time.
func LoadFile(path string) (Program, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Program{}, err
	}
	var p Program
	if err := yaml.Unmarshal(b, &p); err != nil {
		return Program{}, fmt.Errorf("parse playlist %s: %w", path, err)
	}
	if len(p.Clips) == 0 {
		return Program{}, ErrEmpty
	}
	for _, c := range p.Clips {
		for _, env := range c.Params {
			sortKeys(env)
		}
		for _, env := range c.Bools {
			sortKeys(env)
		}
	}
	return p, nil
}

func sortKeys(e Envelope) {
	slices.SortStableFunc(e.Keys, func(a, b Keyframe) int {
		switch {
		case a.T < b.T:
			return -1
		case a.T > b.T:
			return 1
		}
		return 0
	})
}
