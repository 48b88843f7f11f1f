package engine

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"

	"chess-sweeper/board"
)

// Pair is one (source, destination) move.
type Pair struct {
	From board.Square
	To   board.Square
}

func (p Pair) String() string { return p.From.String() + p.To.String() }

// ParsePair reads "e2e4" or "12-28".
func ParsePair(s string) (Pair, error) {
	s = strings.TrimSpace(s)
	var from, to string
	if i := strings.IndexAny(s, "-:"); i >= 0 {
		from, to = s[:i], s[i+1:]
	} else if len(s) == 4 {
		from, to = s[:2], s[2:]
	} else {
		return Pair{}, fmt.Errorf("invalid pair %q", s)
	}
	f, err := board.ParseSquare(from)
	if err != nil {
		return Pair{}, fmt.Errorf("invalid pair %q: %w", s, err)
	}
	t, err := board.ParseSquare(to)
	if err != nil {
		return Pair{}, fmt.Errorf("invalid pair %q: %w", s, err)
	}
	return Pair{From: f, To: t}, nil
}

// index orders pairs by destination, then source: the order a sweep emits them.
func (p Pair) index() int { return int(p.To)<<6 | int(p.From) }

func pairAt(i int) Pair { return Pair{From: board.Square(i & 63), To: board.Square(i >> 6)} }

// SortPairs sorts pairs in sweep order.
func SortPairs(pairs []Pair) {
	keys := make([]int, len(pairs))
	for i, p := range pairs {
		keys[i] = p.index()
	}
	slices.Sort(keys)
	for i, k := range keys {
		pairs[i] = pairAt(k)
	}
}

// Sweep enumerates the pairs of one side with the two exclusion scopes kept
// apart: consumed destinations persist for the whole sweep, reported sources
// are cleared whenever a new destination is taken. The board must not change
// while a sweep is in progress; a sweep that sees the board's key move stops
// and reports ErrBoardChanged.
type Sweep struct {
	b        *board.Board
	key      uint64
	side     board.Color
	consumed board.SquareSet
	reported board.SquareSet
	dst      board.Square
	done     bool
	err      error
}

func NewSweep(b *board.Board, side board.Color) *Sweep {
	return &Sweep{b: b, key: b.Key(), side: side, dst: board.NoSquare}
}

// Next returns the next pair, or false once the sweep is exhausted or the
// board has changed under it.
func (s *Sweep) Next() (Pair, bool) {
	if !s.done && s.b.Key() != s.key {
		s.done = true
		s.err = fmt.Errorf("%w: key %016x, started at %016x", ErrBoardChanged, s.b.Key(), s.key)
	}
	for !s.done {
		if s.dst == board.NoSquare {
			s.dst = ScanForDestination(s.b, ^s.consumed, s.side)
			if s.dst == board.NoSquare {
				s.done = true
				break
			}
			s.reported = 0
		}
		if src := ScanForSource(s.b, ^s.reported, s.side, s.dst); src != board.NoSquare {
			s.reported = s.reported.With(src)
			return Pair{From: src, To: s.dst}, true
		}
		s.consumed = s.consumed.With(s.dst)
		s.dst = board.NoSquare
	}
	return Pair{}, false
}

// Err returns ErrBoardChanged if the sweep was cut short.
func (s *Sweep) Err() error { return s.err }

// Collect drains a fresh sweep of b for side.
func Collect(b *board.Board, side board.Color) []Pair {
	var pairs []Pair
	sw := NewSweep(b, side)
	for p, ok := sw.Next(); ok; p, ok = sw.Next() {
		pairs = append(pairs, p)
	}
	return pairs
}

// Divide groups pairs by destination, keeping their order.
func Divide(pairs []Pair) map[board.Square][]board.Square {
	out := make(map[board.Square][]board.Square)
	for _, p := range pairs {
		out[p.To] = append(out[p.To], p.From)
	}
	return out
}
