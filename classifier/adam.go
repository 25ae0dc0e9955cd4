package classifier

import "math"
import "gonum.org/v1/gonum/mat"

const (
	beta1       = 0.9
	beta2       = 0.999
	adamEpsilon = 1e-8
)

// adamRow does p -= lr * mhat / (sqrt(vhat)+eps) with bias correction, in place.
func adamRow(p, g, m, v []float64, t int, lr float64) {
	c1 := 1.0 / (1.0 - math.Pow(beta1, float64(t)))
	c2 := 1.0 / (1.0 - math.Pow(beta2, float64(t)))
	for j, gj := range g {
		m[j] = beta1*m[j] + (1.0-beta1)*gj
		v[j] = beta2*v[j] + (1.0-beta2)*gj*gj
		p[j] -= lr * (m[j] * c1) / (math.Sqrt(v[j]*c2) + adamEpsilon)
	}
}

// param is a dense weight with its Adam moments.
type param struct {
	w, m, v *mat.Dense
}

func newParam(w *mat.Dense) *param {
	r, c := w.Dims()
	return &param{w: w, m: mat.NewDense(r, c, nil), v: mat.NewDense(r, c, nil)}
}

func (p *param) update(g *mat.Dense, t int, lr float64) {
	pr, pc := p.w.Dims()
	if gr, gc := g.Dims(); gr != pr || gc != pc {
		panic("classifier: gradient shape mismatch")
	}
	for i := 0; i < pr; i++ {
		adamRow(p.w.RawRowView(i), g.RawRowView(i), p.m.RawRowView(i), p.v.RawRowView(i), t, lr)
	}
}

// sparseMoments keeps Adam moments of the embedding rows that were ever updated.
type sparseMoments struct {
	m, v map[int][]float64
}

func (s *sparseMoments) update(emb *mat.Dense, grads map[int][]float64, t int, lr float64) {
	if s.m == nil {
		s.m = make(map[int][]float64)
		s.v = make(map[int][]float64)
	}
	for id, g := range grads {
		m, ok := s.m[id]
		if !ok {
			m = make([]float64, len(g))
			s.m[id] = m
			s.v[id] = make([]float64, len(g))
		}
		adamRow(emb.RawRowView(id), g, m, s.v[id], t, lr)
	}
}
