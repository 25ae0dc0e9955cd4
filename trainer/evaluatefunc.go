package trainer

import "math"

import "gonum.org/v1/gonum/mat"

import "github.com/neurlang/tweetclass/classifier"
import "github.com/neurlang/tweetclass/metrics"
import "github.com/neurlang/tweetclass/parallel"

// EvaluateFuncHasher digests predicted classes by sample position.
type EvaluateFuncHasher interface {
	MustPutUint16(n int, value uint16)
	Sum() [32]byte
}

// sampleSize calculates the statistically sufficient sample size
// for a given dataset size N and significance level (0–100).
func sampleSize(N int, significance byte) int {

	// Convert significance level to Z-score
	z := zScoreFromAlpha(100 - significance)

	// Assume worst-case proportion p = 0.5 for max variability
	p := 0.5
	e := float64(100-significance) * 0.01

	numerator := math.Pow(z, 2) * p * (1 - p)
	denominator := math.Pow(e, 2)

	ss := numerator / denominator

	// Apply finite population correction
	correctedSS := ss * float64(N) / (float64(N) - 1 + ss)

	if int(correctedSS) > N {
		return N
	}

	return int(correctedSS)
}

// zScoreFromAlpha returns the Z-score for a given alpha level
// Common: 90% => 1.645, 95% => 1.96, 99% => 2.576
func zScoreFromAlpha(alpha byte) float64 {
	switch {
	case alpha <= 1:
		return 2.576 // 99% confidence
	case alpha <= 5:
		return 1.96 // 95% confidence
	case alpha <= 10:
		return 1.645 // 90% confidence
	default:
		return 1.96 // default fallback
	}
}

// NewEvaluateFunc returns a function scoring the model on x and y: the batch F1 and a
// digest of the predicted classes, which changes whenever any prediction changes.
// With significance in 1..99 only the first sampleSize rows are scored.
func NewEvaluateFunc(m classifier.Model, x [][]int32, y *mat.Dense, batchSize int, significance byte,
	threads int) func() (float64, [32]byte) {

	return func() (float64, [32]byte) {
		var l = len(x)
		if significance > 0 && significance < 100 && l > 1 {
			l = sampleSize(l, significance)
		}
		if l == 0 {
			return 0, [32]byte{}
		}
		_, c := y.Dims()
		probs := m.Predict(x[:l], batchSize)
		classes := metrics.Argmax(probs)
		hsh := parallel.NewUint16Hasher(l)
		var ha EvaluateFuncHasher = hsh
		parallel.ForEach(l, threads, func(i int) {
			ha.MustPutUint16(i, uint16(classes[i]))
		})
		f1 := metrics.BatchFBeta(y.Slice(0, l, 0, c).(*mat.Dense), probs, batchSize)
		return f1, ha.Sum()
	}
}
