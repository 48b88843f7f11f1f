// Package oracle is an independent reference for the pairs a sweep must
// produce. Slider attacks come from dragontoothmg's magic bitboards; leaper
// and pawn attacks from plain shifts.
package oracle

import (
	"math/bits"

	"github.com/dylhunn/dragontoothmg"

	"chess-sweeper/board"
	"chess-sweeper/engine"
)

const (
	fileA uint64 = 0x0101010101010101
	fileB        = fileA << 1
	fileG        = fileA << 6
	fileH        = fileA << 7
)

func knightAttacks(sq uint8) uint64 {
	b := uint64(1) << sq
	return (b<<17)&^fileA | (b<<15)&^fileH | (b<<10)&^(fileA|fileB) | (b<<6)&^(fileG|fileH) |
		(b>>17)&^fileH | (b>>15)&^fileA | (b>>10)&^(fileG|fileH) | (b>>6)&^(fileA|fileB)
}

func kingAttacks(sq uint8) uint64 {
	b := uint64(1) << sq
	return b<<8 | b>>8 | (b<<1|b<<9|b>>7)&^fileA | (b>>1|b>>9|b<<7)&^fileH
}

func pawnAttacks(sq uint8, white bool) uint64 {
	b := uint64(1) << sq
	if white {
		return (b<<9)&^fileA | (b<<7)&^fileH
	}
	return (b>>7)&^fileA | (b>>9)&^fileH
}

// Pairs lists every pseudo-legal (from, to) pair of one side on a
// dragontoothmg board, leaving out pawn pushes and castling, in sweep order.
func Pairs(b *dragontoothmg.Board, white bool) []engine.Pair {
	us, them := &b.White, &b.Black
	if !white {
		us, them = them, us
	}
	occ := b.White.All | b.Black.All
	var pairs []engine.Pair
	add := func(from uint8, targets uint64) {
		for targets != 0 {
			to := bits.TrailingZeros64(targets)
			targets &= targets - 1
			pairs = append(pairs, engine.Pair{From: board.Square(from), To: board.Square(to)})
		}
	}
	each := func(set uint64, f func(sq uint8) uint64) {
		for set != 0 {
			sq := uint8(bits.TrailingZeros64(set))
			set &= set - 1
			add(sq, f(sq)&^us.All)
		}
	}
	each(us.Pawns, func(sq uint8) uint64 { return pawnAttacks(sq, white) & them.All })
	each(us.Knights, knightAttacks)
	each(us.Bishops, func(sq uint8) uint64 { return dragontoothmg.CalculateBishopMoveBitboard(sq, occ) })
	each(us.Rooks, func(sq uint8) uint64 { return dragontoothmg.CalculateRookMoveBitboard(sq, occ) })
	each(us.Queens, func(sq uint8) uint64 {
		return dragontoothmg.CalculateBishopMoveBitboard(sq, occ) | dragontoothmg.CalculateRookMoveBitboard(sq, occ)
	})
	each(us.Kings, kingAttacks)
	engine.SortPairs(pairs)
	return pairs
}

// FromBoard converts b through FEN and returns the reference pairs for side.
func FromBoard(b *board.Board, side board.Color) []engine.Pair {
	dt := dragontoothmg.ParseFen(b.FEN(side))
	return Pairs(&dt, side == board.White)
}

// FromFEN parses fen with the in-tree parser first, so malformed input is an
// error rather than a panic in dragontoothmg.
func FromFEN(fen string) ([]engine.Pair, board.Color, error) {
	b, side, err := board.ParseFEN(fen)
	if err != nil {
		return nil, side, err
	}
	return FromBoard(b, side), side, nil
}
