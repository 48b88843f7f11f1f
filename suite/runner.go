package suite

import (
	"context"
	"fmt"

	"github.com/cespare/xxhash"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"chess-sweeper/board"
	"chess-sweeper/engine"
	"chess-sweeper/protocol"
)

// Result is the outcome of one case.
type Result struct {
	Case    string
	Boards  int
	Pairs   int
	Queries int
	Missing []engine.Pair
	Extra   []engine.Pair
	Digest  uint64
	// WantPairs is the expected total pair count, 0 when the case sets none.
	WantPairs int
}

func (r Result) OK() bool {
	return len(r.Missing) == 0 && len(r.Extra) == 0 && (r.WantPairs == 0 || r.WantPairs == r.Pairs)
}

func (r Result) String() string {
	status := "ok"
	if !r.OK() {
		status = fmt.Sprintf("FAIL missing=%v extra=%v", r.Missing, r.Extra)
		if r.WantPairs != 0 && r.WantPairs != r.Pairs {
			status += fmt.Sprintf(" want %d pairs", r.WantPairs)
		}
	}
	return fmt.Sprintf("%-24s boards=%-4d pairs=%-6d queries=%-7d digest=%016x %s",
		r.Case, r.Boards, r.Pairs, r.Queries, r.Digest, status)
}

// Digest hashes a pair transcript in emission order.
func Digest(pairs []engine.Pair) uint64 {
	h := xxhash.New()
	for _, p := range pairs {
		h.Write([]byte{byte(p.From), byte(p.To)})
	}
	return h.Sum64()
}

// RandomBoard scatters n random pieces over an empty board.
func RandomBoard(n int) *board.Board {
	b := &board.Board{}
	perm := frand.Perm(int(board.NumSquares))
	for _, sq := range perm[:n] {
		c := board.Color(frand.Intn(2))
		k := board.Kinds[frand.Intn(len(board.Kinds))]
		b.SetPiece(board.Square(sq), board.MakePiece(c, k))
	}
	return b
}

// RunCase drives c through every board of tc.
func RunCase(ctx context.Context, c protocol.Caller, tc Case) (Result, error) {
	res := Result{Case: tc.Name, WantPairs: tc.Count}
	base, _, err := board.ParseFEN(tc.FEN)
	if err != nil {
		return res, err
	}
	side := tc.color()
	var transcript []engine.Pair

	sweep := func(b *board.Board) error {
		want, err := tc.reference(b, side)
		if err != nil {
			return err
		}
		got, st, err := engine.WalkAll(ctx, c, side)
		if err != nil {
			return err
		}
		res.Boards++
		res.Pairs += st.Pairs
		res.Queries += st.Queries
		transcript = append(transcript, got...)
		missing, extra := lo.Difference(want, got)
		res.Missing = append(res.Missing, missing...)
		res.Extra = append(res.Extra, extra...)
		if dups := len(got) - len(lo.Uniq(got)); dups > 0 {
			return fmt.Errorf("%d duplicate pairs", dups)
		}
		return nil
	}

	switch {
	case tc.Piece != "":
		p, _ := board.ParsePiece(tc.Piece)
		if err := engine.Load(ctx, c, base, side); err != nil {
			return res, err
		}
		for sq := board.Square(0); sq < board.NumSquares; sq++ {
			if base.Occupied(sq) {
				continue
			}
			if _, err := c.Call(ctx, protocol.SetPiece(sq, p)); err != nil {
				return res, err
			}
			b := *base
			b.SetPiece(sq, p)
			if err := sweep(&b); err != nil {
				return res, fmt.Errorf("%s on %v: %w", tc.Piece, sq, err)
			}
			if _, err := c.Call(ctx, protocol.SetPiece(sq, board.NoPiece)); err != nil {
				return res, err
			}
		}
	case tc.Random > 0:
		for i := 0; i < tc.Random; i++ {
			b := RandomBoard(tc.Pieces)
			if err := engine.Load(ctx, c, b, side); err != nil {
				return res, err
			}
			if err := sweep(b); err != nil {
				return res, fmt.Errorf("%s: %w", b.FEN(side), err)
			}
		}
	default:
		if err := engine.Load(ctx, c, base, side); err != nil {
			return res, err
		}
		if err := sweep(base); err != nil {
			return res, err
		}
	}
	res.Digest = Digest(transcript)
	return res, nil
}

// Run runs every case on its own in-process engine, at most parallel at a time.
func Run(ctx context.Context, s *Suite, parallel int) ([]Result, error) {
	results := make([]Result, len(s.Cases))
	g, ctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}
	for i, tc := range s.Cases {
		i, tc := i, tc
		g.Go(func() error {
			res, err := RunCase(ctx, engine.New(), tc)
			if err != nil {
				return fmt.Errorf("case %s: %w", tc.Name, err)
			}
			log.Debug().Str("case", tc.Name).Int("pairs", res.Pairs).Bool("ok", res.OK()).Msg("case-done")
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RunOn runs the cases one after another through a single caller, such as a
// remote engine.
func RunOn(ctx context.Context, c protocol.Caller, s *Suite) ([]Result, error) {
	results := make([]Result, 0, len(s.Cases))
	for _, tc := range s.Cases {
		res, err := RunCase(ctx, c, tc)
		if err != nil {
			return results, fmt.Errorf("case %s: %w", tc.Name, err)
		}
		results = append(results, res)
	}
	return results, nil
}
