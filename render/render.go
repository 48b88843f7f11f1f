// Package render draws a board as SVG with the enable mask and sweep pairs
// overlaid.
package render

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"

	"chess-sweeper/board"
	"chess-sweeper/engine"
)

const (
	lightColor    = "#f0d9b5"
	darkColor     = "#b58863"
	disabledColor = "#7f7f7f"
	targetColor   = "#cc3333"
	arrowColor    = "#2266cc"
)

var glyphs = map[board.Piece]string{
	board.WhiteKing: "♔", board.WhiteQueen: "♕", board.WhiteRook: "♖",
	board.WhiteBishop: "♗", board.WhiteKnight: "♘", board.WhitePawn: "♙",
	board.BlackKing: "♚", board.BlackQueen: "♛", board.BlackRook: "♜",
	board.BlackBishop: "♝", board.BlackKnight: "♞", board.BlackPawn: "♟",
}

// Options controls the overlay. The zero value draws the bare board.
type Options struct {
	// SquareSize is the edge of one square in pixels; 0 means 45.
	SquareSize int
	// Disabled squares are shaded grey.
	Disabled board.SquareSet
	// Targets are outlined.
	Targets board.SquareSet
	// Pairs are drawn as lines from source to destination.
	Pairs []engine.Pair
	// Coordinates adds file and rank labels.
	Coordinates bool
}

// SVG writes b to w.
func SVG(w io.Writer, b *board.Board, opts Options) {
	size := opts.SquareSize
	if size <= 0 {
		size = 45
	}
	canvas := svg.New(w)
	canvas.Start(8*size, 8*size)
	for sq := board.Square(0); sq < board.NumSquares; sq++ {
		x, y := origin(sq, size)
		fill := lightColor
		if (sq.Rank()+sq.File())%2 == 0 {
			fill = darkColor
		}
		if opts.Disabled.Has(sq) {
			fill = disabledColor
		}
		canvas.Rect(x, y, size, size, "fill:"+fill)
		if opts.Targets.Has(sq) {
			canvas.Rect(x+2, y+2, size-4, size-4, fmt.Sprintf("fill:none;stroke:%s;stroke-width:3", targetColor))
		}
		if g, ok := glyphs[b.PieceAt(sq)]; ok {
			canvas.Text(x+size/2, y+size*4/5, g, fmt.Sprintf("text-anchor:middle;font-size:%dpx", size*4/5))
		}
	}
	if opts.Coordinates {
		style := fmt.Sprintf("font-size:%dpx;fill:#333", size/5)
		for i := 0; i < 8; i++ {
			canvas.Text(i*size+2, 8*size-2, string(rune('a'+i)), style)
			canvas.Text(8*size-size/5, (7-i)*size+size/5, string(rune('1'+i)), style)
		}
	}
	if len(opts.Pairs) > 0 {
		canvas.Gstyle(fmt.Sprintf("stroke:%s;stroke-width:%d;stroke-opacity:0.6", arrowColor, max(1, size/15)))
		for _, p := range opts.Pairs {
			x1, y1 := centre(p.From, size)
			x2, y2 := centre(p.To, size)
			canvas.Line(x1, y1, x2, y2)
			canvas.Circle(x2, y2, size/10, "fill:"+arrowColor)
		}
		canvas.Gend()
	}
	canvas.End()
}

// origin is the top-left corner of sq, rank 8 at the top.
func origin(sq board.Square, size int) (int, int) {
	return sq.File() * size, (7 - sq.Rank()) * size
}

func centre(sq board.Square, size int) (int, int) {
	x, y := origin(sq, size)
	return x + size/2, y + size/2
}
