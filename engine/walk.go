package engine

import (
	"context"
	"fmt"

	"chess-sweeper/board"
	"chess-sweeper/protocol"
)

// MaxQueries bounds the find_victim and find_aggressor calls of one sweep:
// every destination is consumed once and every source is reported at most
// once per destination.
const MaxQueries = 64*64 + 64

// WalkStats counts what a Walk did.
type WalkStats struct {
	Destinations int
	Pairs        int
	Queries      int
	Commands     int
}

// Walk enumerates every (source, destination) pair for side by driving c
// with the enable mask protocol:
//
//	enable_all
//	for dst := find_victim; dst != none; dst = find_victim {
//		for src := find_aggressor(dst); src != none; src = find_aggressor(dst) {
//			emit(src, dst)
//			set_enable(src, off)
//		}
//		set_enable(dst, off)
//		enable_color(side)
//	}
//
// Pieces must already be on the board. emit may stop the walk by returning
// an error, which Walk returns unchanged.
func Walk(ctx context.Context, c protocol.Caller, side board.Color, emit func(Pair) error) (WalkStats, error) {
	var st WalkStats
	call := func(cmd protocol.Command) (protocol.Response, error) {
		st.Commands++
		if cmd.Op.Query() {
			st.Queries++
			if st.Queries > MaxQueries {
				return 0, fmt.Errorf("%w: %d queries", ErrNoProgress, st.Queries)
			}
		}
		resp, err := c.Call(ctx, cmd)
		if err != nil {
			return 0, fmt.Errorf("%v: %w", cmd, err)
		}
		if err := resp.Validate(); err != nil {
			return 0, fmt.Errorf("%v: %w", cmd, err)
		}
		return resp, nil
	}

	if _, err := call(protocol.EnableAll()); err != nil {
		return st, err
	}
	for {
		resp, err := call(protocol.FindVictim(side))
		if err != nil {
			return st, err
		}
		dst, ok := resp.Square()
		if !ok {
			return st, nil
		}
		st.Destinations++
		for {
			resp, err := call(protocol.FindAggressor(side, dst))
			if err != nil {
				return st, err
			}
			src, ok := resp.Square()
			if !ok {
				break
			}
			if src == dst {
				return st, fmt.Errorf("%w: %v", ErrSelfAttack, dst)
			}
			st.Pairs++
			if err := emit(Pair{From: src, To: dst}); err != nil {
				return st, err
			}
			if _, err := call(protocol.SetEnable(src, false)); err != nil {
				return st, err
			}
		}
		if _, err := call(protocol.SetEnable(dst, false)); err != nil {
			return st, err
		}
		if _, err := call(protocol.EnableColor(side)); err != nil {
			return st, err
		}
	}
}

// WalkAll runs Walk and collects the pairs in emission order.
func WalkAll(ctx context.Context, c protocol.Caller, side board.Color) ([]Pair, WalkStats, error) {
	var pairs []Pair
	st, err := Walk(ctx, c, side, func(p Pair) error {
		pairs = append(pairs, p)
		return nil
	})
	return pairs, st, err
}
