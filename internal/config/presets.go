package config

import (
	"sort"

	"github.com/san-kum/racepilot/internal/track"
)

// Tracks are the built-in track layouts. Routes run counter-clockwise.
var Tracks = map[string]track.Spec{
	"oval": {
		Name: "oval",
		Tiles: []string{
			"c90 s s s c90",
			"s   . . . s",
			"c90 s s s c90",
		},
		Hints: []string{
			". . . b .",
			"b . . . b",
			". b . . .",
		},
		Route: [][]int{
			{1, 0}, {2, 0}, {3, 0}, {4, 0}, {4, 1}, {4, 2},
			{3, 2}, {2, 2}, {1, 2}, {0, 2}, {0, 1}, {0, 0},
		},
	},
	"rectangle": {
		Name: "rectangle",
		Tiles: []string{
			"c90 s s s s s c90",
			"s   . . . . . s",
			"s   . g g g . s",
			"s   . . . . . s",
			"c90 s s s s s c90",
		},
		Hints: []string{
			". . . . b B .",
			"B . . . . . .",
			"b . . . . . b",
			". . . . . . B",
			". B b . . . .",
		},
		Route: [][]int{
			{1, 0}, {2, 0}, {3, 0}, {4, 0}, {5, 0}, {6, 0},
			{6, 1}, {6, 2}, {6, 3}, {6, 4},
			{5, 4}, {4, 4}, {3, 4}, {2, 4}, {1, 4}, {0, 4},
			{0, 3}, {0, 2}, {0, 1}, {0, 0},
		},
	},
	"chicane": {
		Name: "chicane",
		Tiles: []string{
			"c90 s    s    s   c90",
			"s   c45l s45  c45r s",
			"c90 s    s    s   c90",
		},
		Hints: []string{
			". . b B .",
			"b . . . b",
			". b . . .",
		},
		Route: [][]int{
			{1, 0}, {2, 0}, {3, 0}, {4, 0}, {4, 1}, {4, 2},
			{3, 2}, {2, 1}, {1, 2}, {0, 2}, {0, 1}, {0, 0},
		},
	},
}

// GetPreset returns the default configuration on the named track, or nil.
func GetPreset(name string) *Config {
	spec, ok := Tracks[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Track = copySpec(spec)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Tracks))
	for name := range Tracks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// copySpec keeps callers from mutating the shared presets.
func copySpec(s track.Spec) track.Spec {
	out := track.Spec{
		Name:  s.Name,
		Tiles: append([]string(nil), s.Tiles...),
		Hints: append([]string(nil), s.Hints...),
		Route: make([][]int, len(s.Route)),
	}
	for i, n := range s.Route {
		out.Route[i] = append([]int(nil), n...)
	}
	return out
}
