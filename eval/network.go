package eval

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/kestrel-engine/kestrel/board"
)

// Quantization constants per spec.md §4.F.
const (
	activationScale = 256  // S_A: clipped-ReLU saturation point
	weightScale     = 4096 // S_W: output divisor
)

// Network is a loaded set of quantized NNUE weights. All fields are
// read-only once returned by Load; concurrent evaluators may share one
// *Network safely.
type Network struct {
	PSQTWeights []int32 // [NumFeatures]
	Biases      [H]int16
	Weights     []int16 // [NumFeatures*H], column-major per feature
	OutputBias  int16
	OutputUs    [H]int16 // applied to the side-to-move's accumulator
	OutputThem  [H]int16 // applied to the opponent's accumulator
}

// Load parses a weights file in the exact binary layout spec.md §4.F
// mandates: psqt[F] int16, transformer bias[H] int16, transformer
// weight[F*H] int16, output bias int16, then two output-weight
// vectors[H] int16, all little-endian.
func Load(r io.Reader) (*Network, error) {
	net := &Network{
		PSQTWeights: make([]int32, NumFeatures),
		Weights:     make([]int16, NumFeatures*H),
	}

	psqtRaw := make([]int16, NumFeatures)
	if err := binary.Read(r, binary.LittleEndian, psqtRaw); err != nil {
		return nil, fmt.Errorf("eval: reading psqt table: %w", err)
	}
	for i, v := range psqtRaw {
		net.PSQTWeights[i] = int32(v)
	}

	if err := binary.Read(r, binary.LittleEndian, &net.Biases); err != nil {
		return nil, fmt.Errorf("eval: reading transformer bias: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, net.Weights); err != nil {
		return nil, fmt.Errorf("eval: reading transformer weights: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &net.OutputBias); err != nil {
		return nil, fmt.Errorf("eval: reading output bias: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &net.OutputUs); err != nil {
		return nil, fmt.Errorf("eval: reading output weights (us): %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &net.OutputThem); err != nil {
		return nil, fmt.Errorf("eval: reading output weights (them): %w", err)
	}
	return net, nil
}

func clipped(v int16) int32 {
	x := int32(v)
	if x < 0 {
		return 0
	}
	if x > activationScale {
		return activationScale
	}
	return x
}

// vectorDot is the scalar fallback of the "small vector kernel" spec.md §9
// asks for: no example in the corpus ships a SIMD/assembly dot-product
// library, so this is the one deliberate stdlib-only piece of eval.
func vectorDot(acc *Accumulator, w *[H]int16) int32 {
	var sum int32
	for h := 0; h < H; h++ {
		sum += clipped(acc.Hidden[h]) * int32(w[h])
	}
	return sum
}

// Evaluate scores the position for side-to-move stm given its precomputed
// PerspectiveAccumulator, per spec.md §4.F's output stage.
func (net *Network) Evaluate(stm board.Color, pa *PerspectiveAccumulator) int {
	us, them := pa[stm], pa[stm.Opposite()]
	dot := vectorDot(&us, &net.OutputUs) + vectorDot(&them, &net.OutputThem)
	out := (dot + int32(net.OutputBias)) / weightScale
	out += (us.PSQT - them.PSQT) / 2
	return int(out)
}
