package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slices"

	"chess-sweeper/board"
	"chess-sweeper/engine"
	"chess-sweeper/protocol"
)

// kiwipeteWhite lists White's pairs in the kiwipete position as (from, to).
var kiwipeteWhite = [][2]int{
	{12, 40}, {21, 45}, {14, 23}, {21, 23}, {35, 44}, {36, 46}, {36, 51}, {36, 53},
	{18, 1}, {0, 1}, {11, 2}, {0, 2}, {18, 3}, {12, 3}, {0, 3}, {4, 3},
	{12, 5}, {7, 5}, {4, 5}, {7, 6}, {36, 19}, {12, 19}, {21, 19}, {11, 20},
	{21, 20}, {21, 22}, {18, 24}, {36, 26}, {12, 26}, {11, 29}, {21, 29}, {36, 30},
	{21, 30}, {18, 33}, {12, 33}, {21, 37}, {11, 38}, {21, 39}, {36, 42}, {11, 47},
}

func toPairs(raw [][2]int) []engine.Pair {
	out := make([]engine.Pair, len(raw))
	for i, r := range raw {
		out[i] = engine.Pair{From: board.Square(r[0]), To: board.Square(r[1])}
	}
	return out
}

func sorted(pairs []engine.Pair) []engine.Pair {
	out := slices.Clone(pairs)
	engine.SortPairs(out)
	return out
}

// walkEngine loads b into a fresh engine and walks it.
func walkEngine(t testing.TB, b *board.Board, side board.Color) ([]engine.Pair, engine.WalkStats) {
	t.Helper()
	e := engine.New()
	e.Load(b, side)
	pairs, st, err := engine.WalkAll(context.Background(), e, side)
	require.NoError(t, err)
	return pairs, st
}

// closedForm computes the destinations of a lone piece from rank/file
// arithmetic. Pawns are given their capture diagonals.
func closedForm(k board.Kind, c board.Color, sq board.Square) board.SquareSet {
	r, f := sq.Rank(), sq.File()
	var set board.SquareSet
	step := func(dr, df int, slide bool) {
		for rr, ff := r+dr, f+df; rr >= 0 && rr < 8 && ff >= 0 && ff < 8; rr, ff = rr+dr, ff+df {
			set = set.With(board.SquareAt(rr, ff))
			if !slide {
				return
			}
		}
	}
	orth := [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diag := [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	switch k {
	case board.Pawn:
		dr := 1
		if c == board.Black {
			dr = -1
		}
		step(dr, 1, false)
		step(dr, -1, false)
	case board.Knight:
		for _, d := range [][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}} {
			step(d[0], d[1], false)
		}
	case board.King:
		for _, d := range append(orth, diag...) {
			step(d[0], d[1], false)
		}
	case board.Rook:
		for _, d := range orth {
			step(d[0], d[1], true)
		}
	case board.Bishop:
		for _, d := range diag {
			step(d[0], d[1], true)
		}
	case board.Queen:
		for _, d := range append(orth, diag...) {
			step(d[0], d[1], true)
		}
	}
	return set
}

func TestKingCornerScenario(t *testing.T) {
	b := &board.Board{}
	b.SetPiece(0, board.WhiteKing)
	pairs, _ := walkEngine(t, b, board.White)
	assert.Equal(t, toPairs([][2]int{{0, 1}, {0, 8}, {0, 9}}), pairs)
}

func TestKnightCornerScenario(t *testing.T) {
	b := &board.Board{}
	b.SetPiece(0, board.WhiteKnight)
	pairs, _ := walkEngine(t, b, board.White)
	assert.Equal(t, toPairs([][2]int{{0, 10}, {0, 17}}), pairs)
}

func TestCompletenessEmptyBoard(t *testing.T) {
	for _, c := range []board.Color{board.White, board.Black} {
		for _, k := range board.Kinds {
			if k == board.Pawn {
				continue
			}
			for sq := board.Square(0); sq < board.NumSquares; sq++ {
				b := &board.Board{}
				b.SetPiece(sq, board.MakePiece(c, k))
				want := closedForm(k, c, sq)

				pairs, st := walkEngine(t, b, c)
				var got board.SquareSet
				for _, p := range pairs {
					require.Equal(t, sq, p.From, "%v %v on %v", c, k, sq)
					require.False(t, got.Has(p.To), "duplicate destination %v", p.To)
					got = got.With(p.To)
				}
				require.Equal(t, want, got, "%v %v on %v", c, k, sq)
				require.Equal(t, want.Count(), st.Destinations)
				require.Equal(t, pairs, engine.Collect(b, c))

				// the other side has nothing to move
				other, _ := walkEngine(t, b, c.Other())
				require.Empty(t, other)
			}
		}
	}
}

func TestCompletenessPawnCaptures(t *testing.T) {
	for _, c := range []board.Color{board.White, board.Black} {
		for sq := board.Square(0); sq < board.NumSquares; sq++ {
			b := &board.Board{}
			b.SetPiece(sq, board.MakePiece(c, board.Pawn))

			// alone, a pawn reaches nothing
			pairs, _ := walkEngine(t, b, c)
			require.Empty(t, pairs, "lone pawn on %v", sq)

			// surrounded by enemies it reaches both forward diagonals
			for s := board.Square(0); s < board.NumSquares; s++ {
				if s != sq {
					b.SetPiece(s, board.MakePiece(c.Other(), board.Knight))
				}
			}
			var got board.SquareSet
			for _, p := range engine.Collect(b, c) {
				got = got.With(p.To)
			}
			require.Equal(t, closedForm(board.Pawn, c, sq), got, "%v pawn on %v", c, sq)
		}
	}
}

func TestBlockingCorrectness(t *testing.T) {
	b, _ := mustFEN(t, "8/8/8/8/P7/8/8/R2n4 w - - 0 1")
	pairs, _ := walkEngine(t, b, board.White)
	want := toPairs([][2]int{{0, 1}, {0, 2}, {0, 3}, {0, 8}, {0, 16}})
	assert.Equal(t, want, pairs)

	// a friendly blocker is never a destination; an enemy one is
	b.SetPiece(3, board.WhiteKnight)
	for _, p := range engine.Collect(b, board.White) {
		assert.NotEqual(t, board.Square(3), p.To)
		assert.NotEqual(t, board.Square(4), p.To, "rook must not pass its own knight")
	}
}

func TestKiwipeteReference(t *testing.T) {
	b, side := mustFEN(t, board.FENKiwipete)
	require.Equal(t, board.White, side)

	want := sorted(toPairs(kiwipeteWhite))
	pairs, st := walkEngine(t, b, side)
	assert.Equal(t, want, sorted(pairs))
	assert.Equal(t, want, sorted(engine.Collect(b, side)))
	assert.Len(t, pairs, 40)
	assert.LessOrEqual(t, st.Queries, engine.MaxQueries)

	// Walk emits in sweep order already
	assert.Equal(t, want, pairs)
}

func TestNoDuplicatePairs(t *testing.T) {
	for _, fen := range []string{board.FENStartPos, board.FENKiwipete,
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1"} {
		b, _ := mustFEN(t, fen)
		for _, side := range []board.Color{board.White, board.Black} {
			pairs, st := walkEngine(t, b, side)
			seen := map[engine.Pair]bool{}
			for _, p := range pairs {
				require.False(t, seen[p], "%s: %v twice", fen, p)
				seen[p] = true
				require.NotEqual(t, p.From, p.To)
				require.Equal(t, side, b.PieceAt(p.From).Color())
			}
			require.Equal(t, len(pairs), st.Pairs)
			require.LessOrEqual(t, st.Queries, engine.MaxQueries)
			require.Equal(t, pairs, engine.Collect(b, side))
		}
	}
}

// walkWithoutReset is the caller loop minus the enable_color step.
func walkWithoutReset(t *testing.T, e *engine.Engine, side board.Color) []engine.Pair {
	var pairs []engine.Pair
	e.EnableAll()
	for i := 0; i < engine.MaxQueries; i++ {
		dst := e.FindVictim(side)
		if dst == board.NoSquare {
			return pairs
		}
		for {
			src, err := e.FindAggressor(side, dst)
			require.NoError(t, err)
			if src == board.NoSquare {
				break
			}
			pairs = append(pairs, engine.Pair{From: src, To: dst})
			require.NoError(t, e.SetEnable(src, false))
		}
		require.NoError(t, e.SetEnable(dst, false))
	}
	t.Fatal("walk did not terminate")
	return nil
}

func TestTwoTierExclusion(t *testing.T) {
	// rooks on a1 and b2 both reach b1, then both reach a2
	b, _ := mustFEN(t, "8/8/8/8/8/8/1R6/R7 w - - 0 1")

	pairs, _ := walkEngine(t, b, board.White)
	div := engine.Divide(pairs)
	assert.Equal(t, []board.Square{0, 9}, div[1])
	assert.Equal(t, []board.Square{0, 9}, div[8], "sources used for b1 must be eligible again for a2")

	e := engine.New()
	e.Load(b, board.White)
	broken := walkWithoutReset(t, e, board.White)
	assert.Less(t, len(broken), len(pairs), "skipping enable_color under-reports")
}

// deaf drops every set_enable.
type deaf struct{ *engine.Engine }

func (d deaf) Call(ctx context.Context, cmd protocol.Command) (protocol.Response, error) {
	if cmd.Op == protocol.OpSetEnable {
		return 0, nil
	}
	return d.Engine.Call(ctx, cmd)
}

func TestWalkBoundsQueries(t *testing.T) {
	e := engine.New()
	require.NoError(t, e.SetPiece(0, board.WhiteKing))
	_, st, err := engine.WalkAll(context.Background(), deaf{e}, board.White)
	assert.ErrorIs(t, err, engine.ErrNoProgress)
	assert.Equal(t, engine.MaxQueries, st.Queries-1)
}

// scripted answers every query with a fixed response.
type scripted struct{ victim, aggressor protocol.Response }

func (s scripted) Call(_ context.Context, cmd protocol.Command) (protocol.Response, error) {
	switch cmd.Op {
	case protocol.OpFindVictim:
		return s.victim, nil
	case protocol.OpFindAggressor:
		return s.aggressor, nil
	}
	return 0, nil
}

func TestWalkChecksResponses(t *testing.T) {
	_, _, err := engine.WalkAll(context.Background(), scripted{victim: 5, aggressor: 5}, board.White)
	assert.ErrorIs(t, err, engine.ErrSelfAttack)

	_, _, err = engine.WalkAll(context.Background(), scripted{victim: 0x85}, board.White)
	assert.ErrorIs(t, err, protocol.ErrReservedBit)

	_, _, err = engine.WalkAll(context.Background(), scripted{victim: 5, aggressor: 0xC0}, board.White)
	assert.ErrorIs(t, err, protocol.ErrReservedBit)
}

func TestWalkStopsOnEmitError(t *testing.T) {
	b, side := mustFEN(t, board.FENKiwipete)
	e := engine.New()
	e.Load(b, side)
	stop := errors.New("stop")
	n := 0
	st, err := engine.Walk(context.Background(), e, side, func(engine.Pair) error {
		n++
		if n == 3 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 3, st.Pairs)

	// an abandoned walk leaves disabled bits; the next walk starts clean
	assert.NotEqual(t, board.AllSquares, e.Enabled())
	pairs, _, err := engine.WalkAll(context.Background(), e, side)
	require.NoError(t, err)
	assert.Len(t, pairs, 40)
}

func TestScannersArePure(t *testing.T) {
	b, side := mustFEN(t, board.FENKiwipete)
	key := b.Key()
	mask := board.AllSquares.Without(1).Without(0)
	d1 := engine.ScanForDestination(b, mask, side)
	d2 := engine.ScanForDestination(b, mask, side)
	assert.Equal(t, d1, d2)
	assert.Equal(t, board.Square(2), d1)
	assert.Equal(t, board.Square(11), engine.ScanForSource(b, mask, side, d1))
	assert.Equal(t, key, b.Key())
	assert.Equal(t, board.NoSquare, engine.ScanForSource(b, mask, side, board.NoSquare))
	assert.Equal(t, board.NoSquare, engine.ScanForDestination(b, 0, side))
}

func TestSweepStopsWhenBoardChanges(t *testing.T) {
	b, side := mustFEN(t, board.FENKiwipete)
	sw := engine.NewSweep(b, side)
	first, ok := sw.Next()
	require.True(t, ok)
	assert.Equal(t, engine.Collect(b, side)[0], first)
	require.NoError(t, sw.Err())

	b.SetPiece(first.To, board.BlackQueen)
	_, ok = sw.Next()
	assert.False(t, ok)
	assert.ErrorIs(t, sw.Err(), engine.ErrBoardChanged)

	// restoring the placement does not revive a stopped sweep
	b.SetPiece(first.To, board.NoPiece)
	_, ok = sw.Next()
	assert.False(t, ok)

	full := engine.NewSweep(b, side)
	for _, ok := full.Next(); ok; _, ok = full.Next() {
	}
	assert.NoError(t, full.Err())
}

func TestPairParsing(t *testing.T) {
	p, err := engine.ParsePair("e2e4")
	require.NoError(t, err)
	assert.Equal(t, engine.Pair{From: 12, To: 28}, p)
	assert.Equal(t, "e2e4", p.String())

	p, err = engine.ParsePair("0-63")
	require.NoError(t, err)
	assert.Equal(t, engine.Pair{From: 0, To: 63}, p)

	_, err = engine.ParsePair("e2")
	assert.Error(t, err)
	_, err = engine.ParsePair("z9-a1")
	assert.Error(t, err)
}

func BenchmarkSweepKiwipete(b *testing.B) {
	pos, side := mustFEN(b, board.FENKiwipete)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		sw := engine.NewSweep(pos, side)
		for _, ok := sw.Next(); ok; _, ok = sw.Next() {
		}
	}
}

func BenchmarkWalkKiwipete(b *testing.B) {
	pos, side := mustFEN(b, board.FENKiwipete)
	e := engine.New()
	e.Load(pos, side)
	ctx := context.Background()
	emit := func(engine.Pair) error { return nil }
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Walk(ctx, e, side, emit); err != nil {
			b.Fatal(err)
		}
	}
}
