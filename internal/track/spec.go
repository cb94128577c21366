package track

import (
	"fmt"
	"strings"
)

// Spec is a compact text layout of a track, suitable for YAML.
//
// Tiles and Hints hold one string per row (row 0 first), with one
// whitespace separated token per column. Route lists [col, row] tile
// coordinates; each node sits at the center of its tile.
type Spec struct {
	Name  string   `yaml:"name"`
	Tiles []string `yaml:"tiles"`
	Hints []string `yaml:"hints,omitempty"`
	Route [][]int  `yaml:"route"`
}

var tileTokens = map[string]TileType{
	".":    TileClear,
	"s":    TileStraight,
	"s45":  TileStraight45,
	"c90":  TileCorner90,
	"c45l": TileCorner45Left,
	"c45r": TileCorner45Right,
	"f":    TileFinish,
	"g":    TileGrass,
	"sa":   TileSand,
}

var hintTokens = map[string]ComputerHint{
	".": HintNone,
	"b": HintBrakeSoft,
	"B": HintBrakeHard,
}

func (s Spec) Build() (*Track, error) {
	rows := len(s.Tiles)
	if rows == 0 {
		return nil, fmt.Errorf("track %q: no tile rows", s.Name)
	}
	if len(s.Hints) != 0 && len(s.Hints) != rows {
		return nil, fmt.Errorf("track %q: %d hint rows for %d tile rows", s.Name, len(s.Hints), rows)
	}

	cols := 0
	tiles := make([]Tile, 0)
	for r, line := range s.Tiles {
		tokens := strings.Fields(line)
		if r == 0 {
			cols = len(tokens)
		} else if len(tokens) != cols {
			return nil, fmt.Errorf("track %q: row %d has %d tiles, want %d", s.Name, r, len(tokens), cols)
		}

		var hints []string
		if len(s.Hints) != 0 {
			hints = strings.Fields(s.Hints[r])
			if len(hints) != cols {
				return nil, fmt.Errorf("track %q: hint row %d has %d entries, want %d", s.Name, r, len(hints), cols)
			}
		}

		for c, tok := range tokens {
			tt, ok := tileTokens[tok]
			if !ok {
				return nil, fmt.Errorf("track %q: unknown tile %q at %d,%d", s.Name, tok, c, r)
			}
			tile := Tile{Type: tt}
			if hints != nil {
				h, ok := hintTokens[hints[c]]
				if !ok {
					return nil, fmt.Errorf("track %q: unknown hint %q at %d,%d", s.Name, hints[c], c, r)
				}
				tile.Hint = h
			}
			tiles = append(tiles, tile)
		}
	}

	route := make(Nodes, 0, len(s.Route))
	for i, node := range s.Route {
		if len(node) != 2 {
			return nil, fmt.Errorf("track %q: route node %d must be [col, row]", s.Name, i)
		}
		col, row := node[0], node[1]
		if col < 0 || col >= cols || row < 0 || row >= rows {
			return nil, fmt.Errorf("track %q: route node %d (%d,%d) outside %dx%d grid", s.Name, i, col, row, cols, rows)
		}
		route = append(route, TileCenter(col, row))
	}

	return New(s.Name, cols, rows, tiles, route)
}
