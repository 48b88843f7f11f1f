package protocol

import (
	"fmt"

	"chess-sweeper/board"
)

// Response is the 8-bit answer to a query: bits 5:0 hold a square, bit 6 is
// the NotFound flag and bit 7 is reserved and must stay zero.
type Response uint8

const (
	squareMask   Response = 0x3F
	NotFound     Response = 0x40
	reservedMask Response = 0x80
)

// ResponseFor encodes a scanner result; NoSquare becomes NotFound.
func ResponseFor(sq board.Square) Response {
	if !sq.Valid() {
		return NotFound
	}
	return Response(sq) & squareMask
}

// Square decodes the response. ok is false for NotFound.
func (r Response) Square() (board.Square, bool) {
	if r&NotFound != 0 {
		return board.NoSquare, false
	}
	return board.Square(r & squareMask), true
}

// Validate rejects responses with the reserved bit set.
func (r Response) Validate() error {
	if r&reservedMask != 0 {
		return fmt.Errorf("%w: %#02x", ErrReservedBit, uint8(r))
	}
	return nil
}

func (r Response) String() string {
	if sq, ok := r.Square(); ok {
		return sq.String()
	}
	return "none"
}

// EmptyNibble is the wire value of an empty square.
const EmptyNibble uint8 = 0xF

// PieceNibble encodes a piece: White pawn..king = 0..5, Black pawn..king =
// 8..13, empty = 15.
func PieceNibble(p board.Piece) uint8 {
	if p == board.NoPiece {
		return EmptyNibble
	}
	n := uint8(p.Kind()) - 1
	if p.Color() == board.Black {
		n |= 8
	}
	return n
}

// PieceFromNibble decodes a piece nibble; 6, 7 and 14 are invalid.
func PieceFromNibble(n uint8) (board.Piece, error) {
	if n == EmptyNibble {
		return board.NoPiece, nil
	}
	kind := board.Kind(n&7) + 1
	if n > 15 || kind > board.King {
		return board.NoPiece, fmt.Errorf("%w: %#x", ErrInvalidPiece, n)
	}
	c := board.White
	if n&8 != 0 {
		c = board.Black
	}
	return board.MakePiece(c, kind), nil
}
