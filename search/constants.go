package search

import "math"

// Pruning and extension constants. spec.md §4.J names every one of these
// knobs but, unlike the TT's MATE_BOUND, leaves their numeric values to the
// implementation ("RFP_MARGIN", "NMP_BASE", ...). Values below follow common
// practice in the engines the corpus references and are tunable at runtime
// through the UCI options spec.md §6 lists (aspdelta, aspmindepth, lmrcoeff);
// the rest are compile-time defaults, documented in DESIGN.md as an explicit
// open-question decision.
const (
	iirMinDepth = 4 // internal iterative reduction threshold

	rfpMaxDepth = 8  // reverse futility pruning depth ceiling
	rfpMargin   = 80 // centipawns per depth

	razorMaxDepth = 4
	razorMargin   = 180

	nmpMinDepth = 2
	nmpBase     = 3
	nmpDepthDiv = 4
	nmpEvalDiv  = 200

	singularMinDepth = 8

	seeFpDepth    = 8
	seeFpTactical = -20 // * depth^2
	seeFpQuiet    = -64 // * depth

	deltaMargin = 200 // quiescence delta-pruning margin

	defaultAspMinDepth  = 5
	defaultAspInitDelta = 25
	aspirationGrowth    = 1.5
	aspMateClampBound   = 3000 // spec.md §4.J: clamp a widened bound to ±MATE once it reaches this magnitude

	defaultLmrCoeff = 0.35
)

// lmrTable[depth][moveCount] is the precomputed late-move-reduction amount,
// spec.md §4.J's `round(0.1 + log(d)*log(n)*k)`.
var lmrTable [64][64]int8

func buildLMRTable(k float64) {
	for d := 1; d < 64; d++ {
		for n := 1; n < 64; n++ {
			r := 0.1 + math.Log(float64(d))*math.Log(float64(n))*k
			lmrTable[d][n] = int8(r)
		}
	}
}

func init() { buildLMRTable(defaultLmrCoeff) }
