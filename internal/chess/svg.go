package chess

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

const (
	lightSquareFill     = "#f0d9b5"
	darkSquareFill      = "#b58863"
	lightHighlightFill  = "#cdd16a"
	darkHighlightFill   = "#aaa23b"
	marginFill          = "#212121"
	whitePieceFill      = "#ffffff"
	whitePieceStroke    = "#000000"
	blackPieceFill      = "#1c1c1c"
	blackPieceStroke    = "#000000"
	blackPieceAccent    = "#e0e0e0"
	whitePieceAccent    = "#000000"
	defaultBoardSize    = 900
	minimumBoardSize    = 160
	marginToSizeDivisor = 20
)

var (
	boardRanks = []nchess.Rank{nchess.Rank8, nchess.Rank7, nchess.Rank6, nchess.Rank5, nchess.Rank4, nchess.Rank3, nchess.Rank2, nchess.Rank1}
	boardFiles = []nchess.File{nchess.FileA, nchess.FileB, nchess.FileC, nchess.FileD, nchess.FileE, nchess.FileF, nchess.FileG, nchess.FileH}
)

// Geometry describes where the 8x8 grid sits inside a rendered board image.
type Geometry struct {
	Size   int
	Margin int
	Square int
}

// GeometryFor returns the layout for a square image of the given size.
// The grid is centred and the margin keeps room for coordinates.
func GeometryFor(size int) Geometry {
	if size <= 0 {
		size = defaultBoardSize
	}
	if size < minimumBoardSize {
		size = minimumBoardSize
	}
	margin := size / marginToSizeDivisor
	square := (size - 2*margin) / 8
	margin = (size - 8*square) / 2
	return Geometry{Size: size, Margin: margin, Square: square}
}

// SquareOrigin returns the top-left pixel of sq, white at the bottom.
func (g Geometry) SquareOrigin(sq nchess.Square) (x, y int) {
	col := int(sq.File())
	row := 7 - int(sq.Rank())
	return g.Margin + col*g.Square, g.Margin + row*g.Square
}

// SVG renders the current position as a standalone SVG document.
// The last move, if any, is highlighted.
func (b *Board) SVG(size int) []byte {
	geo := GeometryFor(size)

	var highlight map[nchess.Square]bool
	if last, ok := b.LastMove(); ok {
		highlight = map[nchess.Square]bool{last.From: true, last.To: true}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" version="1.1" width="%d" height="%d" viewBox="0 0 %d %d">`, geo.Size, geo.Size, geo.Size, geo.Size)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, `<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`, geo.Size, geo.Size, marginFill)
	sb.WriteString("\n")

	pieces := b.squareMap()
	for _, rank := range boardRanks {
		for _, file := range boardFiles {
			sq := nchess.NewSquare(file, rank)
			x, y := geo.SquareOrigin(sq)
			fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s"/>`, x, y, geo.Square, geo.Square, squareFill(sq, highlight[sq]))
			sb.WriteString("\n")
		}
	}
	for _, rank := range boardRanks {
		for _, file := range boardFiles {
			sq := nchess.NewSquare(file, rank)
			piece, ok := pieces[sq]
			if !ok || piece == nchess.NoPiece {
				continue
			}
			x, y := geo.SquareOrigin(sq)
			writePiece(&sb, piece, float64(x), float64(y), float64(geo.Square))
		}
	}
	sb.WriteString("</svg>\n")
	return []byte(sb.String())
}

func squareFill(sq nchess.Square, highlighted bool) string {
	dark := (int(sq.File())+int(sq.Rank()))%2 == 0
	switch {
	case dark && highlighted:
		return darkHighlightFill
	case dark:
		return darkSquareFill
	case highlighted:
		return lightHighlightFill
	default:
		return lightSquareFill
	}
}

func writePiece(sb *strings.Builder, piece nchess.Piece, x, y, size float64) {
	g, ok := glyphs[piece.Type()]
	if !ok {
		return
	}
	fill, stroke, accent := whitePieceFill, whitePieceStroke, whitePieceAccent
	if piece.Color() == nchess.Black {
		fill, stroke, accent = blackPieceFill, blackPieceStroke, blackPieceAccent
	}
	strokeWidth := size * 0.025

	for _, poly := range g.bodies {
		fmt.Fprintf(sb, `<path d="%s" fill="%s" stroke="%s" stroke-width="%.2f"/>`, poly.path(x, y, size), fill, stroke, strokeWidth)
		sb.WriteString("\n")
	}
	for _, c := range g.knobs {
		fmt.Fprintf(sb, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s" stroke="%s" stroke-width="%.2f"/>`, x+c.x*size, y+c.y*size, c.r*size, fill, stroke, strokeWidth)
		sb.WriteString("\n")
	}
	for _, c := range g.accents {
		fmt.Fprintf(sb, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>`, x+c.x*size, y+c.y*size, c.r*size, accent)
		sb.WriteString("\n")
	}
}
