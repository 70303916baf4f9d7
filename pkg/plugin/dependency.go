package plugin

import (
	"fmt"
	"strings"
)

// ResolveDependencies orders plugins so that every plugin follows the plugins
// named by its Dependencies. The sort is stable: plugins without dependency
// constraints keep their registration order, and a plugin moves only as far
// as its dependencies require.
func ResolveDependencies(plugins []Plugin) ([]Plugin, error) {
	if len(plugins) == 0 {
		return nil, nil
	}

	byName := make(map[string]Plugin, len(plugins))
	for _, p := range plugins {
		if _, exists := byName[p.Name()]; exists {
			return nil, fmt.Errorf("duplicate plugin name: %s", p.Name())
		}
		byName[p.Name()] = p
	}

	for _, p := range plugins {
		for _, dep := range dependenciesOf(p) {
			if _, exists := byName[dep]; !exists {
				return nil, fmt.Errorf("plugin %q depends on %q which is not registered", p.Name(), dep)
			}
		}
	}

	const (
		white = iota // unvisited
		gray         // on the current DFS path
		black        // emitted
	)

	color := make(map[string]int, len(plugins))
	result := make([]Plugin, 0, len(plugins))
	var path []string

	var visit func(p Plugin) error
	visit = func(p Plugin) error {
		name := p.Name()
		switch color[name] {
		case black:
			return nil
		case gray:
			return fmt.Errorf("circular dependency detected: %s", cyclePath(path, name))
		}

		color[name] = gray
		path = append(path, name)
		for _, dep := range dependenciesOf(p) {
			if err := visit(byName[dep]); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		color[name] = black
		result = append(result, p)
		return nil
	}

	for _, p := range plugins {
		if err := visit(p); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func dependenciesOf(p Plugin) []string {
	if d, ok := p.(Dependent); ok {
		return d.Dependencies()
	}
	return nil
}

// cyclePath renders the cycle closing at name, e.g. "a -> b -> a".
func cyclePath(path []string, name string) string {
	start := 0
	for i, n := range path {
		if n == name {
			start = i
			break
		}
	}
	cycle := append(append([]string{}, path[start:]...), name)
	return strings.Join(cycle, " -> ")
}
