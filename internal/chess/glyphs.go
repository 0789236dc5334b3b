package chess

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// Piece silhouettes in unit square coordinates, y growing downwards.

type point struct{ x, y float64 }

type polygon []point

func (p polygon) path(x, y, size float64) string {
	var sb strings.Builder
	for i, pt := range p {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&sb, "%s %.2f %.2f ", cmd, x+pt.x*size, y+pt.y*size)
	}
	sb.WriteString("Z")
	return sb.String()
}

type circle struct{ x, y, r float64 }

type glyph struct {
	bodies  []polygon
	knobs   []circle
	accents []circle
}

var pedestal = polygon{{0.20, 0.88}, {0.80, 0.88}, {0.80, 0.80}, {0.20, 0.80}}

var glyphs = map[nchess.PieceType]glyph{
	nchess.Pawn: {
		bodies: []polygon{
			{{0.34, 0.80}, {0.42, 0.47}, {0.58, 0.47}, {0.66, 0.80}},
			pedestal,
		},
		knobs: []circle{{0.50, 0.36, 0.12}},
	},
	nchess.Rook: {
		bodies: []polygon{
			{{0.30, 0.80}, {0.34, 0.36}, {0.66, 0.36}, {0.70, 0.80}},
			{
				{0.26, 0.36}, {0.26, 0.17}, {0.35, 0.17}, {0.35, 0.24}, {0.45, 0.24}, {0.45, 0.17},
				{0.55, 0.17}, {0.55, 0.24}, {0.65, 0.24}, {0.65, 0.17}, {0.74, 0.17}, {0.74, 0.36},
			},
			pedestal,
		},
	},
	nchess.Knight: {
		bodies: []polygon{
			{
				{0.30, 0.80}, {0.36, 0.52}, {0.22, 0.50}, {0.20, 0.40}, {0.34, 0.26},
				{0.44, 0.14}, {0.50, 0.20}, {0.60, 0.18}, {0.72, 0.36}, {0.74, 0.80},
			},
			pedestal,
		},
		accents: []circle{{0.42, 0.30, 0.03}},
	},
	nchess.Bishop: {
		bodies: []polygon{
			{{0.35, 0.80}, {0.42, 0.56}, {0.58, 0.56}, {0.65, 0.80}},
			{{0.50, 0.18}, {0.64, 0.38}, {0.58, 0.56}, {0.42, 0.56}, {0.36, 0.38}},
			pedestal,
		},
		knobs:   []circle{{0.50, 0.14, 0.05}},
		accents: []circle{{0.50, 0.40, 0.03}},
	},
	nchess.Queen: {
		bodies: []polygon{
			{
				{0.28, 0.80}, {0.20, 0.32}, {0.36, 0.52}, {0.40, 0.24}, {0.50, 0.50},
				{0.60, 0.24}, {0.64, 0.52}, {0.80, 0.32}, {0.72, 0.80},
			},
			pedestal,
		},
		knobs: []circle{{0.20, 0.29, 0.045}, {0.40, 0.21, 0.045}, {0.60, 0.21, 0.045}, {0.80, 0.29, 0.045}},
	},
	nchess.King: {
		bodies: []polygon{
			{{0.28, 0.80}, {0.26, 0.42}, {0.74, 0.42}, {0.72, 0.80}},
			{{0.46, 0.42}, {0.46, 0.12}, {0.54, 0.12}, {0.54, 0.42}},
			{{0.38, 0.20}, {0.62, 0.20}, {0.62, 0.27}, {0.38, 0.27}},
			pedestal,
		},
	},
}
