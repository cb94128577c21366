package track

import (
	"fmt"
	"math"

	"github.com/san-kum/racepilot/internal/geom"
)

const (
	TileWidth  = 256.0
	TileHeight = 256.0
)

// ComputerHint is a designer annotation that tells computer players
// where to brake.
type ComputerHint int

const (
	HintNone ComputerHint = iota
	HintBrakeSoft
	HintBrakeHard
)

func (h ComputerHint) String() string {
	switch h {
	case HintBrakeSoft:
		return "brake"
	case HintBrakeHard:
		return "brake-hard"
	default:
		return "none"
	}
}

type TileType int

const (
	TileClear TileType = iota
	TileStraight
	TileStraight45
	TileCorner90
	TileCorner45Left
	TileCorner45Right
	TileFinish
	TileGrass
	TileSand
)

var tileNames = map[TileType]string{
	TileClear:         "clear",
	TileStraight:      "straight",
	TileStraight45:    "straight45",
	TileCorner90:      "corner90",
	TileCorner45Left:  "corner45Left",
	TileCorner45Right: "corner45Right",
	TileFinish:        "finish",
	TileGrass:         "grass",
	TileSand:          "sand",
}

func (t TileType) String() string {
	if name, ok := tileNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tile(%d)", int(t))
}

func (t TileType) IsCorner45() bool {
	return t == TileCorner45Left || t == TileCorner45Right
}

type Tile struct {
	Type TileType
	Hint ComputerHint
	Col  int
	Row  int
}

type TargetNode struct {
	Location geom.Vec2
	Index    int
}

// Route is the cyclic racing line. Get wraps the index.
type Route interface {
	Get(index int) TargetNode
	NumNodes() int
}

// Layout is the read-only view of a track that controllers consume.
type Layout interface {
	Route() Route
	TileAt(p geom.Vec2) Tile
}

// Nodes is a Route backed by a slice of node locations.
type Nodes []geom.Vec2

func (n Nodes) NumNodes() int { return len(n) }

func (n Nodes) Get(index int) TargetNode {
	i := index % len(n)
	if i < 0 {
		i += len(n)
	}
	return TargetNode{Location: n[i], Index: i}
}

type Track struct {
	Name  string
	cols  int
	rows  int
	tiles []Tile
	route Nodes
}

// New builds a track from row-major tiles. Row 0 starts at y=0.
func New(name string, cols, rows int, tiles []Tile, route Nodes) (*Track, error) {
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("track %q: invalid size %dx%d", name, cols, rows)
	}
	if len(tiles) != cols*rows {
		return nil, fmt.Errorf("track %q: expected %d tiles, got %d", name, cols*rows, len(tiles))
	}
	if len(route) < 2 {
		return nil, fmt.Errorf("track %q: route needs at least 2 nodes, got %d", name, len(route))
	}
	t := &Track{
		Name:  name,
		cols:  cols,
		rows:  rows,
		tiles: make([]Tile, len(tiles)),
		route: make(Nodes, len(route)),
	}
	copy(t.route, route)
	for i, tile := range tiles {
		tile.Col = i % cols
		tile.Row = i / cols
		t.tiles[i] = tile
	}
	return t, nil
}

func (t *Track) Cols() int { return t.cols }
func (t *Track) Rows() int { return t.rows }

func (t *Track) Route() Route { return t.route }

func (t *Track) Tile(col, row int) Tile {
	return t.tiles[row*t.cols+col]
}

// TileAt returns the tile under p. Locations outside the grid are
// clamped to the nearest edge tile.
func (t *Track) TileAt(p geom.Vec2) Tile {
	col := clampIndex(p.X/TileWidth, t.cols)
	row := clampIndex(p.Y/TileHeight, t.rows)
	return t.Tile(col, row)
}

// TileCenter is the world location of the middle of a tile.
func TileCenter(col, row int) geom.Vec2 {
	return geom.V((float64(col)+0.5)*TileWidth, (float64(row)+0.5)*TileHeight)
}

func clampIndex(f float64, n int) int {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	i := int(f)
	if i >= n {
		return n - 1
	}
	return i
}
