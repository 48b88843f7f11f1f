package board

import (
	"errors"
	"math/bits"
	"strings"
)

// Square represents a board position (0-63), a1 = 0, h8 = 63.
type Square int

const (
	NoSquare   Square = -1
	NumSquares Square = 64
)

// SquareAt returns the square on the given rank and file, or NoSquare when off the board.
func SquareAt(rank, file int) Square {
	if rank < 0 || rank > 7 || file < 0 || file > 7 {
		return NoSquare
	}
	return Square(rank*8 + file)
}

func (sq Square) Rank() int { return int(sq) / 8 }
func (sq Square) File() int { return int(sq) % 8 }

// Valid reports whether sq is one of the 64 board squares.
func (sq Square) Valid() bool { return sq >= 0 && sq < NumSquares }

func (sq Square) String() string {
	if !sq.Valid() {
		return "-"
	}
	return string([]byte{'a' + byte(sq.File()), '1' + byte(sq.Rank())})
}

// ParseSquare accepts algebraic names ("e4") and decimal indices ("28").
func ParseSquare(s string) (Square, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) == 2 && s[0] >= 'a' && s[0] <= 'h' && s[1] >= '1' && s[1] <= '8' {
		return Square(int(s[1]-'1')*8 + int(s[0]-'a')), nil
	}
	n := 0
	if s == "" || len(s) > 2 {
		return NoSquare, errors.New("invalid square")
	}
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return NoSquare, errors.New("invalid square")
		}
		n = n*10 + int(ch-'0')
	}
	if n >= int(NumSquares) {
		return NoSquare, errors.New("square out of range")
	}
	return Square(n), nil
}

// SquareSet has one bit per square.
type SquareSet uint64

// AllSquares has every square set.
const AllSquares SquareSet = ^SquareSet(0)

// SetOf builds a set from the given squares.
func SetOf(squares ...Square) SquareSet {
	var s SquareSet
	for _, sq := range squares {
		s = s.With(sq)
	}
	return s
}

func (s SquareSet) Has(sq Square) bool { return s&(1<<uint(sq)) != 0 }
func (s SquareSet) With(sq Square) SquareSet { return s | 1<<uint(sq) }
func (s SquareSet) Without(sq Square) SquareSet { return s &^ (1 << uint(sq)) }
func (s SquareSet) Count() int { return bits.OnesCount64(uint64(s)) }
func (s SquareSet) Empty() bool { return s == 0 }
func (s SquareSet) Union(o SquareSet) SquareSet { return s | o }
func (s SquareSet) Minus(o SquareSet) SquareSet { return s &^ o }
func (s SquareSet) Inter(o SquareSet) SquareSet { return s & o }

// First returns the lowest square in the set, or NoSquare.
func (s SquareSet) First() Square {
	if s == 0 {
		return NoSquare
	}
	return Square(bits.TrailingZeros64(uint64(s)))
}

// Last returns the highest square in the set, or NoSquare.
func (s SquareSet) Last() Square {
	if s == 0 {
		return NoSquare
	}
	return Square(63 - bits.LeadingZeros64(uint64(s)))
}

// Squares lists the members in ascending order.
func (s SquareSet) Squares() []Square {
	out := make([]Square, 0, s.Count())
	for s != 0 {
		out = append(out, s.First())
		s &= s - 1
	}
	return out
}

func (s SquareSet) String() string {
	names := make([]string, 0, s.Count())
	for _, sq := range s.Squares() {
		names = append(names, sq.String())
	}
	return "{" + strings.Join(names, " ") + "}"
}
