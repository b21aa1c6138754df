// zobrist.go builds the Zobrist hashing tables, grounded on
// easychessanimations-zurichess/engine/zobrist.go: a fixed seed so keys
// are reproducible across runs and across the pack codec, per spec §4.C.
package board

import "math/rand"

const zobristSeed = 0x9E3779B97F4A7C15

var (
	zobristPiece  [16][64]uint64 // indexed by Piece (0..15, sparse)
	zobristCastle [16]uint64
	zobristEP     [8]uint64 // indexed by file
	zobristSide   uint64
)

func initZobrist() {
	rng := rand.New(rand.NewSource(zobristSeed))
	for p := 0; p < 16; p++ {
		for sq := 0; sq < 64; sq++ {
			zobristPiece[p][sq] = rng.Uint64()
		}
	}
	for i := range zobristCastle {
		zobristCastle[i] = rng.Uint64()
	}
	for i := range zobristEP {
		zobristEP[i] = rng.Uint64()
	}
	zobristSide = rng.Uint64()
}

func init() { initZobrist() }

func zobristForPiece(p Piece, sq Square) uint64 { return zobristPiece[p][sq] }
