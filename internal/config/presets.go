package config

import (
	"sort"

	"github.com/san-kum/vizdash/internal/controls"
)

var Presets = map[string]map[string]controls.State{
	"iris": {
		"petals": controls.NewState(map[string]controls.Value{
			"x-col": controls.Scalar("petal_length"),
			"y-col": controls.Scalar("petal_width"),
		}),
		"setosa": controls.NewState(map[string]controls.Value{
			"species": controls.List("setosa"),
		}),
		"no-setosa": controls.NewState(map[string]controls.Value{
			"species": controls.List("versicolor", "virginica"),
			"x-col":   controls.Scalar("petal_length"),
		}),
	},
	"gapminder": {
		"wealth": controls.NewState(map[string]controls.Value{
			"metric": controls.Scalar("gdpPercap"),
		}),
		"asia-1952": controls.NewState(map[string]controls.Value{
			"continents": controls.List("Asia"),
			"year":       controls.Number(1952),
		}),
		"population": controls.NewState(map[string]controls.Value{
			"metric":     controls.Scalar("pop"),
			"continents": controls.List("Americas", "Asia"),
		}),
	},
}

func GetPreset(dashboard, preset string) (controls.State, bool) {
	presets, ok := Presets[dashboard]
	if !ok {
		return controls.State{}, false
	}
	st, ok := presets[preset]
	return st, ok
}

func ListPresets(dashboard string) []string {
	presets, ok := Presets[dashboard]
	if !ok {
		return nil
	}
	names := make(map[string]bool, len(presets))
	for name := range presets {
		names[name] = true
	}
	return sortedKeys(names)
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
