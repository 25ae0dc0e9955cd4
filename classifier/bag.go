package classifier

import "log"
import "math"
import "math/rand"
import "github.com/pkg/errors"
import "gonum.org/v1/gonum/floats"
import "gonum.org/v1/gonum/mat"
import "github.com/neurlang/tweetclass/metrics"
import "github.com/neurlang/tweetclass/parallel"

// DefaultBatchSize is used when a batch size is not positive.
const DefaultBatchSize = 32

// Bag is a bag-of-embeddings network: the embeddings of the non-zero ids of a
// sequence are pooled, optionally passed through a ReLU layer, then a softmax layer.
type Bag struct {
	arch     Architecture
	features int
	classes  int
	threads  int
	lr       float64
	rng      *rand.Rand

	emb     *mat.Dense
	embAdam sparseMoments

	// hidden and hiddenBias are nil without a hidden layer
	hidden, hiddenBias *param
	out, outBias       *param

	step int
}

// New makes a bag model over ids 0..features-1. Rows of pretrained, when given,
// initialise the matching embedding rows; row 0 is padding and stays zero.
func New(arch Architecture, features, classes int, pretrained *mat.Dense, seed int64, threads int) (*Bag, error) {
	switch arch.Pooling {
	case "mean", "max", "meanmax":
	default:
		return nil, errors.Errorf("unknown pooling %q", arch.Pooling)
	}
	if features < 2 || classes < 2 || arch.EmbeddingDim <= 0 || arch.Hidden < 0 {
		return nil, errors.Errorf("bad model shape: %d features, %d classes, %d dims, %d hidden",
			features, classes, arch.EmbeddingDim, arch.Hidden)
	}
	var pre int
	if pretrained != nil {
		r, c := pretrained.Dims()
		if c != arch.EmbeddingDim {
			return nil, errors.Errorf("pretrained embeddings have %d dims, want %d", c, arch.EmbeddingDim)
		}
		if r > features {
			r = features
		}
		pre = r
	}
	if arch.LearningRate <= 0 {
		arch.LearningRate = 1e-3
	}
	if threads <= 0 {
		threads = 1
	}

	b := &Bag{
		arch:     arch,
		features: features,
		classes:  classes,
		threads:  threads,
		lr:       arch.LearningRate,
		rng:      rand.New(rand.NewSource(seed)),
	}
	dim := arch.EmbeddingDim
	b.emb = mat.NewDense(features, dim, nil)
	for i := 1; i < features; i++ {
		row := b.emb.RawRowView(i)
		if i < pre {
			mat.Row(row, i, pretrained)
			continue
		}
		for j := range row {
			row[j] = b.rng.Float64()*0.1 - 0.05
		}
	}
	top := b.inputDim()
	if arch.Hidden > 0 {
		b.hidden = newParam(b.glorot(top, arch.Hidden))
		b.hiddenBias = newParam(mat.NewDense(1, arch.Hidden, nil))
		top = arch.Hidden
	}
	b.out = newParam(b.glorot(top, classes))
	b.outBias = newParam(mat.NewDense(1, classes, nil))
	return b, nil
}

func (b *Bag) glorot(in, out int) *mat.Dense {
	limit := math.Sqrt(6 / float64(in+out))
	data := make([]float64, in*out)
	for i := range data {
		data[i] = (b.rng.Float64()*2 - 1) * limit
	}
	return mat.NewDense(in, out, data)
}

func (b *Bag) inputDim() int {
	if b.arch.Pooling == "meanmax" {
		return 2 * b.arch.EmbeddingDim
	}
	return b.arch.EmbeddingDim
}

// LearningRate is the current Adam step size.
func (b *Bag) LearningRate() float64 {
	return b.lr
}

// SetLearningRate changes the Adam step size.
func (b *Bag) SetLearningRate(lr float64) {
	b.lr = lr
}

func (b *Bag) ids(x []int32) []int {
	var o = make([]int, 0, len(x))
	for _, id := range x {
		if id > 0 && int(id) < b.features {
			o = append(o, int(id))
		}
	}
	return o
}

// pool writes the pooled embedding of ids to out. argmax receives the id behind every
// max pooled component, -1 when there are no ids.
func (b *Bag) pool(ids []int, out []float64, argmax []int) {
	dim := b.arch.EmbeddingDim
	for j := range out {
		out[j] = 0
	}
	for j := range argmax {
		argmax[j] = -1
	}
	if len(ids) == 0 {
		return
	}
	var mean, max []float64
	switch b.arch.Pooling {
	case "mean":
		mean = out
	case "max":
		max = out
	default:
		mean, max = out[:dim], out[dim:]
	}
	if mean != nil {
		for _, id := range ids {
			floats.Add(mean, b.emb.RawRowView(id))
		}
		floats.Scale(1/float64(len(ids)), mean)
	}
	if max != nil {
		for n, id := range ids {
			row := b.emb.RawRowView(id)
			for j, v := range row {
				if n == 0 || v > max[j] {
					max[j] = v
					argmax[j] = id
				}
			}
		}
	}
}

// pass holds the activations of one forward pass.
type pass struct {
	ids    [][]int
	argmax [][]int
	input  *mat.Dense
	z, h   *mat.Dense
	probs  *mat.Dense
}

func (b *Bag) forward(x [][]int32) *pass {
	n := len(x)
	ps := &pass{
		ids:    make([][]int, n),
		argmax: make([][]int, n),
		input:  mat.NewDense(n, b.inputDim(), nil),
	}
	parallel.ForEach(n, b.threads, func(i int) {
		ps.ids[i] = b.ids(x[i])
		ps.argmax[i] = make([]int, b.arch.EmbeddingDim)
		b.pool(ps.ids[i], ps.input.RawRowView(i), ps.argmax[i])
	})
	top := ps.input
	if b.hidden != nil {
		ps.z = affine(ps.input, b.hidden.w, b.hiddenBias.w)
		ps.h = mat.NewDense(n, b.arch.Hidden, nil)
		ps.h.Apply(func(_, _ int, v float64) float64 { return math.Max(0, v) }, ps.z)
		top = ps.h
	}
	ps.probs = affine(top, b.out.w, b.outBias.w)
	for i := 0; i < n; i++ {
		softmax(ps.probs.RawRowView(i))
	}
	return ps
}

func affine(x, w, bias *mat.Dense) *mat.Dense {
	r, _ := x.Dims()
	_, c := w.Dims()
	o := mat.NewDense(r, c, nil)
	o.Mul(x, w)
	for i := 0; i < r; i++ {
		floats.Add(o.RawRowView(i), bias.RawRowView(0))
	}
	return o
}

func softmax(row []float64) {
	max := floats.Max(row)
	for j, v := range row {
		row[j] = math.Exp(v - max)
	}
	floats.Scale(1/floats.Sum(row), row)
}

func colSums(m *mat.Dense) *mat.Dense {
	r, c := m.Dims()
	o := mat.NewDense(1, c, nil)
	for i := 0; i < r; i++ {
		floats.Add(o.RawRowView(0), m.RawRowView(i))
	}
	return o
}

// backward applies one Adam step for the mean cross-entropy of a forward pass.
func (b *Bag) backward(ps *pass, y *mat.Dense) {
	n, _ := ps.probs.Dims()
	dz := mat.NewDense(n, b.classes, nil)
	dz.Sub(ps.probs, y)
	dz.Scale(1/float64(n), dz)

	top := ps.input
	if b.hidden != nil {
		top = ps.h
	}
	_, topCols := top.Dims()
	dOut := mat.NewDense(topCols, b.classes, nil)
	dOut.Mul(top.T(), dz)
	dOutBias := colSums(dz)

	dTop := mat.NewDense(n, topCols, nil)
	dTop.Mul(dz, b.out.w.T())

	b.step++
	dInput := dTop
	if b.hidden != nil {
		for i := 0; i < n; i++ {
			z, d := ps.z.RawRowView(i), dTop.RawRowView(i)
			for j := range d {
				if z[j] <= 0 {
					d[j] = 0
				}
			}
		}
		dHidden := mat.NewDense(b.inputDim(), b.arch.Hidden, nil)
		dHidden.Mul(ps.input.T(), dTop)
		dHiddenBias := colSums(dTop)
		dInput = mat.NewDense(n, b.inputDim(), nil)
		dInput.Mul(dTop, b.hidden.w.T())

		b.hidden.update(dHidden, b.step, b.lr)
		b.hiddenBias.update(dHiddenBias, b.step, b.lr)
	}
	b.out.update(dOut, b.step, b.lr)
	b.outBias.update(dOutBias, b.step, b.lr)

	if !b.arch.Trainable {
		return
	}
	var grads = make(map[int][]float64)
	for i := 0; i < n; i++ {
		b.unpool(ps.ids[i], ps.argmax[i], dInput.RawRowView(i), grads)
	}
	b.embAdam.update(b.emb, grads, b.step, b.lr)
}

// unpool adds the embedding row gradients of one sample to grads.
func (b *Bag) unpool(ids, argmax []int, d []float64, grads map[int][]float64) {
	if len(ids) == 0 {
		return
	}
	dim := b.arch.EmbeddingDim
	row := func(id int) []float64 {
		g, ok := grads[id]
		if !ok {
			g = make([]float64, dim)
			grads[id] = g
		}
		return g
	}
	var mean, max []float64
	switch b.arch.Pooling {
	case "mean":
		mean = d
	case "max":
		max = d
	default:
		mean, max = d[:dim], d[dim:]
	}
	if mean != nil {
		scale := 1 / float64(len(ids))
		for _, id := range ids {
			floats.AddScaled(row(id), scale, mean)
		}
	}
	if max != nil {
		for j, id := range argmax {
			if id >= 0 {
				row(id)[j] += max[j]
			}
		}
	}
}

// Fit trains for opts.Epochs epochs of shuffled mini-batches, evaluating on the
// validation data after each epoch when it is given.
func (b *Bag) Fit(x [][]int32, y *mat.Dense, valX [][]int32, valY *mat.Dense, opts FitOptions) (History, error) {
	var hist History
	n := len(x)
	if n == 0 {
		return hist, errors.New("no training samples")
	}
	if r, c := y.Dims(); r != n || c != b.classes {
		return hist, errors.Errorf("%d samples but %dx%d targets", n, r, c)
	}
	if valX != nil {
		if valY == nil {
			return hist, errors.New("validation samples without targets")
		}
		if r, _ := valY.Dims(); r != len(valX) {
			return hist, errors.Errorf("%d validation samples but %d targets", len(valX), r)
		}
	}
	batch := opts.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	var order = make([]int, n)
	for i := range order {
		order[i] = i
	}

	for epoch := 1; epoch <= opts.Epochs; epoch++ {
		b.rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
		var loss, acc, f1 float64
		for start := 0; start < n; start += batch {
			end := start + batch
			if end > n {
				end = n
			}
			bx := make([][]int32, end-start)
			by := mat.NewDense(end-start, b.classes, nil)
			for i, j := range order[start:end] {
				bx[i] = x[j]
				mat.Row(by.RawRowView(i), j, y)
			}
			ps := b.forward(bx)
			w := float64(end - start)
			loss += w * CrossEntropy(by, ps.probs)
			acc += w * CategoricalAccuracy(by, ps.probs)
			f1 += w * metrics.FBeta(by, ps.probs)
			b.backward(ps, by)
		}
		logs := Logs{
			Epoch:        epoch,
			Loss:         loss / float64(n),
			Acc:          acc / float64(n),
			F1:           f1 / float64(n),
			LearningRate: b.lr,
		}
		if valX != nil {
			logs.HasVal = true
			logs.ValLoss, logs.ValAcc, logs.ValF1 = b.Evaluate(valX, valY, batch)
		}
		hist.Epochs = append(hist.Epochs, logs)
		if opts.Verbose {
			log.Printf("epoch %d/%d loss %.4f acc %.4f f1 %.4f val_loss %.4f val_acc %.4f val_f1 %.4f",
				epoch, opts.Epochs, logs.Loss, logs.Acc, logs.F1, logs.ValLoss, logs.ValAcc, logs.ValF1)
		}
		for _, cb := range opts.Callbacks {
			if err := cb.EpochEnd(b, logs); err != nil {
				return hist, err
			}
		}
	}
	return hist, nil
}

// Predict returns the class probabilities of every sample, one row each.
func (b *Bag) Predict(x [][]int32, batchSize int) *mat.Dense {
	if len(x) == 0 {
		return &mat.Dense{}
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	o := mat.NewDense(len(x), b.classes, nil)
	for start := 0; start < len(x); start += batchSize {
		end := start + batchSize
		if end > len(x) {
			end = len(x)
		}
		o.Slice(start, end, 0, b.classes).(*mat.Dense).Copy(b.forward(x[start:end]).probs)
	}
	return o
}

// Evaluate returns the mean cross-entropy, the accuracy and the batch averaged F1.
func (b *Bag) Evaluate(x [][]int32, y *mat.Dense, batchSize int) (loss, acc, f1 float64) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	probs := b.Predict(x, batchSize)
	return CrossEntropy(y, probs), CategoricalAccuracy(y, probs), metrics.BatchFBeta(y, probs, batchSize)
}

// CrossEntropy is the mean categorical cross-entropy, probabilities clipped to
// [1e-7, 1-1e-7].
func CrossEntropy(y, probs mat.Matrix) float64 {
	r, c := y.Dims()
	if r == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if t := y.At(i, j); t != 0 {
				p := math.Min(math.Max(probs.At(i, j), metrics.Epsilon), 1-metrics.Epsilon)
				sum -= t * math.Log(p)
			}
		}
	}
	return sum / float64(r)
}

// CategoricalAccuracy is the share of rows whose largest probability is the target class.
func CategoricalAccuracy(y, probs mat.Matrix) float64 {
	return metrics.Accuracy(metrics.Argmax(y), metrics.Argmax(probs))
}
