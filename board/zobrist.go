package board

import "math/rand"

// Zobrist keys for each piece code on each square.
var zobristPiece [15][64]uint64

func init() {
	initZobrist()
}

func initZobrist() {
	// Fixed seed so keys are stable across runs and in logs.
	rnd := rand.New(rand.NewSource(0xC0DE))
	for p := 0; p < 15; p++ {
		for sq := 0; sq < 64; sq++ {
			zobristPiece[p][sq] = rnd.Uint64()
		}
	}
}
