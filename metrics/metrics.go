// Package metrics scores class predictions.
package metrics

import "fmt"
import "math"
import "strings"
import "gonum.org/v1/gonum/floats"
import "gonum.org/v1/gonum/mat"
import "gonum.org/v1/gonum/stat"

// Epsilon keeps the batch F1 ratios finite.
const Epsilon = 1e-7

func roundClip(v float64) float64 {
	return math.RoundToEven(math.Max(0, math.Min(1, v)))
}

// FBeta is the batch F1 of one-hot targets and predicted probabilities: every cell is
// clipped to [0, 1] and rounded half to even before counting positives.
func FBeta(yTrue, yPred mat.Matrix) float64 {
	r, c := yTrue.Dims()
	if pr, pc := yPred.Dims(); pr != r || pc != c {
		panic(fmt.Sprintf("metrics: %dx%d targets but %dx%d predictions", r, c, pr, pc))
	}
	var tp, possible, predicted float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			t, p := yTrue.At(i, j), yPred.At(i, j)
			tp += roundClip(t * p)
			possible += roundClip(t)
			predicted += roundClip(p)
		}
	}
	precision := tp / (predicted + Epsilon)
	recall := tp / (possible + Epsilon)
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}

// BatchFBeta averages FBeta over consecutive batches weighted by batch size, the way a
// metric is reported by a batched evaluation.
func BatchFBeta(yTrue, yPred *mat.Dense, batchSize int) float64 {
	r, c := yTrue.Dims()
	if r == 0 {
		return 0
	}
	if batchSize <= 0 {
		batchSize = r
	}
	var values, weights []float64
	for start := 0; start < r; start += batchSize {
		end := start + batchSize
		if end > r {
			end = r
		}
		values = append(values, FBeta(yTrue.Slice(start, end, 0, c), yPred.Slice(start, end, 0, c)))
		weights = append(weights, float64(end-start))
	}
	return stat.Mean(values, weights)
}

// Argmax returns the column of the largest value of each row, the first one on ties.
func Argmax(m mat.Matrix) []int {
	r, _ := m.Dims()
	var o = make([]int, r)
	for i := range o {
		o[i] = floats.MaxIdx(mat.Row(nil, i, m))
	}
	return o
}

// Accuracy is the share of equal labels.
func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	var hit float64
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			hit++
		}
	}
	return hit / float64(len(yTrue))
}

// ConfusionMatrix counts true label i predicted as j at (i, j).
func ConfusionMatrix(yTrue, yPred []int, classes int) *mat.Dense {
	m := mat.NewDense(classes, classes, nil)
	for i := range yTrue {
		m.Set(yTrue[i], yPred[i], m.At(yTrue[i], yPred[i])+1)
	}
	return m
}

// ClassScore holds the per class figures of a report.
type ClassScore struct {
	Precision, Recall, F1 float64
	Support               int
}

// PerClass scores every class. Undefined ratios are 0.
func PerClass(yTrue, yPred []int, classes int) []ClassScore {
	cm := ConfusionMatrix(yTrue, yPred, classes)
	var o = make([]ClassScore, classes)
	for k := range o {
		tp := cm.At(k, k)
		actual := floats.Sum(mat.Row(nil, k, cm))
		predicted := floats.Sum(mat.Col(nil, k, cm))
		s := &o[k]
		s.Support = int(actual)
		if predicted > 0 {
			s.Precision = tp / predicted
		}
		if actual > 0 {
			s.Recall = tp / actual
		}
		if s.Precision+s.Recall > 0 {
			s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
		}
	}
	return o
}

// F1Macro is the unweighted mean of the per class F1.
func F1Macro(yTrue, yPred []int, classes int) float64 {
	var f1 []float64
	for _, s := range PerClass(yTrue, yPred, classes) {
		f1 = append(f1, s.F1)
	}
	return stat.Mean(f1, nil)
}

// ClassificationReport renders per class precision, recall, F1 and support, and their
// support weighted averages.
func ClassificationReport(yTrue, yPred []int, names []string) string {
	scores := PerClass(yTrue, yPred, len(names))
	width := len("avg / total")
	for _, n := range names {
		if len(n) > width {
			width = len(n)
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%*s %9s %9s %9s %9s\n\n", width, "", "precision", "recall", "f1-score", "support")
	var p, r, f, w []float64
	var total int
	for k, s := range scores {
		fmt.Fprintf(&b, "%*s %9.2f %9.2f %9.2f %9d\n", width, names[k], s.Precision, s.Recall, s.F1, s.Support)
		p = append(p, s.Precision)
		r = append(r, s.Recall)
		f = append(f, s.F1)
		w = append(w, float64(s.Support))
		total += s.Support
	}
	if total == 0 {
		w = nil
	}
	fmt.Fprintf(&b, "\n%*s %9.2f %9.2f %9.2f %9d\n", width, "avg / total",
		stat.Mean(p, w), stat.Mean(r, w), stat.Mean(f, w), total)
	return b.String()
}
