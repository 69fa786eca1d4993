package indicator

// Pivots represents fibonacci pivot levels derived from a prior session.
type Pivots struct {
	PP float64
	R1 float64
	R2 float64
	R3 float64
	S1 float64
	S2 float64
	S3 float64
}

// FibonacciPivots calculates fibonacci pivot levels from the high, low and close of
// a prior session.
func FibonacciPivots(high float64, low float64, close float64) Pivots {
	rng := high - low
	pp := (high + low + close) / 3

	return Pivots{
		PP: Round(pp, 5),
		R1: Round(pp+rng*0.382, 5),
		R2: Round(pp+rng*0.618, 5),
		R3: Round(pp+rng*1.0, 5),
		S1: Round(pp-rng*0.382, 5),
		S2: Round(pp-rng*0.618, 5),
		S3: Round(pp-rng*1.0, 5),
	}
}
