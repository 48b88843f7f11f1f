package board

import "strings"

// Piece is either NoPiece or a (Color, Kind) pair.
// Black pieces are encoded as (kind | 8) so that
// - piece & 7 gives the kind in [1..6]
// - piece & 8 != 0 indicates Black
type Piece uint8

const (
	NoPiece     Piece = 0
	WhitePawn   Piece = 1
	WhiteKnight Piece = 2
	WhiteBishop Piece = 3
	WhiteRook   Piece = 4
	WhiteQueen  Piece = 5
	WhiteKing   Piece = 6

	BlackPawn   Piece = 1 | 8
	BlackKnight Piece = 2 | 8
	BlackBishop Piece = 3 | 8
	BlackRook   Piece = 4 | 8
	BlackQueen  Piece = 5 | 8
	BlackKing   Piece = 6 | 8
)

// Kind is a colorless piece type used for table lookups.
type Kind uint8

const (
	NoKind Kind = 0
	Pawn   Kind = 1
	Knight Kind = 2
	Bishop Kind = 3
	Rook   Kind = 4
	Queen  Kind = 5
	King   Kind = 6
)

// Kinds lists every real piece kind in ascending order.
var Kinds = [6]Kind{Pawn, Knight, Bishop, Rook, Queen, King}

func (k Kind) String() string {
	switch k {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	}
	return "none"
}

type Color uint8

const (
	White Color = 0
	Black Color = 1
)

// Other returns the opposing side.
func (c Color) Other() Color { return c ^ 1 }

func (c Color) String() string {
	if c == Black {
		return "black"
	}
	return "white"
}

// ParseColor accepts "w", "b", "white" or "black".
func ParseColor(s string) (Color, bool) {
	switch strings.ToLower(s) {
	case "w", "white":
		return White, true
	case "b", "black":
		return Black, true
	}
	return White, false
}

// MakePiece combines a color and a kind. NoKind yields NoPiece.
func MakePiece(c Color, k Kind) Piece {
	if k == NoKind || k > King {
		return NoPiece
	}
	p := Piece(k)
	if c == Black {
		p |= 8
	}
	return p
}

// Kind returns the colorless kind of the piece.
func (p Piece) Kind() Kind { return Kind(p & 7) }

// Color returns the side that owns the piece. NoPiece defaults to White.
func (p Piece) Color() Color {
	if p&8 != 0 {
		return Black
	}
	return White
}

// Valid reports whether p is NoPiece or one of the twelve real pieces.
func (p Piece) Valid() bool {
	if p == NoPiece {
		return true
	}
	k := p.Kind()
	return p&^15 == 0 && k >= Pawn && k <= King
}

func (p Piece) String() string {
	if p == NoPiece {
		return "."
	}
	return string(charFromPiece(p))
}

// ParsePiece parses a single FEN piece letter, or "." / "-" for an empty square.
func ParsePiece(s string) (Piece, bool) {
	if s == "." || s == "-" {
		return NoPiece, true
	}
	if len(s) != 1 {
		return NoPiece, false
	}
	p := pieceFromChar(rune(s[0]))
	return p, p != NoPiece
}

// Board is the piece store: a total mapping from square to piece, with
// occupancy sets and a Zobrist key kept in sync. The zero value is an empty board.
type Board struct {
	pieces    [64]Piece
	occupancy [2]SquareSet
	key       uint64
}

// PieceAt returns the piece on a square.
func (b *Board) PieceAt(sq Square) Piece { return b.pieces[int(sq)] }

// Occupied reports whether a piece stands on sq.
func (b *Board) Occupied(sq Square) bool { return b.pieces[int(sq)] != NoPiece }

// Occupancy returns the squares held by the given color.
func (b *Board) Occupancy(c Color) SquareSet { return b.occupancy[int(c)] }

// AllOccupancy returns every occupied square.
func (b *Board) AllOccupancy() SquareSet { return b.occupancy[0] | b.occupancy[1] }

// Key returns the Zobrist key of the piece placement.
func (b *Board) Key() uint64 { return b.key }

// Count returns the number of pieces on the board.
func (b *Board) Count() int { return b.AllOccupancy().Count() }

func (b *Board) addPiece(sq Square, p Piece) {
	if p == NoPiece {
		return
	}
	idx := int(sq)
	b.pieces[idx] = p
	b.occupancy[int(p.Color())] = b.occupancy[int(p.Color())].With(sq)
	b.key ^= zobristPiece[p][idx]
}

func (b *Board) removePiece(sq Square) Piece {
	idx := int(sq)
	p := b.pieces[idx]
	if p == NoPiece {
		return NoPiece
	}
	b.pieces[idx] = NoPiece
	b.occupancy[int(p.Color())] = b.occupancy[int(p.Color())].Without(sq)
	b.key ^= zobristPiece[p][idx]
	return p
}

// SetPiece sets a piece on a square, replacing any existing piece. NoPiece empties the square.
func (b *Board) SetPiece(sq Square, p Piece) {
	b.removePiece(sq)
	b.addPiece(sq, p)
}

// Reset empties the board.
func (b *Board) Reset() { *b = Board{} }

// String draws the board with rank 8 at the top.
func (b *Board) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		sb.WriteByte('1' + byte(rank))
		sb.WriteByte(' ')
		for file := 0; file < 8; file++ {
			sb.WriteString(b.pieces[rank*8+file].String())
			if file < 7 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  a b c d e f g h\n")
	return sb.String()
}
