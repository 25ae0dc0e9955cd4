package classifier

import "compress/lzw"
import "encoding/json"
import "io"
import "os"

import "github.com/pkg/errors"
import "gonum.org/v1/gonum/mat"

type layer struct {
	Name string    `json:"name"`
	Rows int       `json:"rows"`
	Cols int       `json:"cols"`
	Data []float64 `json:"data"`
}

type weights struct {
	Architecture Architecture `json:"architecture"`
	Features     int          `json:"features"`
	Classes      int          `json:"classes"`
	Layers       []layer      `json:"layers"`
}

func (b *Bag) layers() (names []string, ms []*mat.Dense) {
	names = append(names, "embedding")
	ms = append(ms, b.emb)
	if b.hidden != nil {
		names = append(names, "hidden", "hidden_bias")
		ms = append(ms, b.hidden.w, b.hiddenBias.w)
	}
	names = append(names, "output", "output_bias")
	ms = append(ms, b.out.w, b.outBias.w)
	return
}

// SaveWeights writes model weights to a lzw file
func (b *Bag) SaveWeights(name string) error {
	file, err := os.Create(name)
	if err != nil {
		return errors.Wrapf(err, "can't create weights %q", name)
	}
	err = b.WriteCompressedWeights(file)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return err
}

// WriteCompressedWeights writes model weights to a writer
func (b *Bag) WriteCompressedWeights(w io.Writer) error {
	var wt = weights{Architecture: b.arch, Features: b.features, Classes: b.classes}
	names, ms := b.layers()
	for i, m := range ms {
		r, c := m.Dims()
		l := layer{Name: names[i], Rows: r, Cols: c, Data: make([]float64, 0, r*c)}
		for j := 0; j < r; j++ {
			l.Data = append(l.Data, m.RawRowView(j)...)
		}
		wt.Layers = append(wt.Layers, l)
	}
	lw := lzw.NewWriter(w, lzw.LSB, 8)
	if err := json.NewEncoder(lw).Encode(wt); err != nil {
		lw.Close()
		return errors.Wrap(err, "can't encode weights")
	}
	return lw.Close()
}

// LoadWeights reads model weights from a lzw file
func (b *Bag) LoadWeights(name string) error {
	file, err := os.Open(name)
	if err != nil {
		return errors.Wrapf(err, "can't open weights %q", name)
	}
	defer file.Close()
	return errors.Wrapf(b.ReadCompressedWeights(file), "weights %q", name)
}

// ReadCompressedWeights reads model weights from a reader. The weights must have been
// saved by a model of the same shape.
func (b *Bag) ReadCompressedWeights(r io.Reader) error {
	lr := lzw.NewReader(r, lzw.LSB, 8)
	defer lr.Close()
	var wt weights
	if err := json.NewDecoder(lr).Decode(&wt); err != nil {
		return errors.Wrap(err, "can't decode weights")
	}
	a := wt.Architecture
	if a.Pooling != b.arch.Pooling || a.Hidden != b.arch.Hidden || a.EmbeddingDim != b.arch.EmbeddingDim ||
		wt.Features != b.features || wt.Classes != b.classes {
		return errors.Errorf("weights of a %s/%d/%d model with %d features and %d classes, have %s/%d/%d with %d and %d",
			a.Pooling, a.Hidden, a.EmbeddingDim, wt.Features, wt.Classes,
			b.arch.Pooling, b.arch.Hidden, b.arch.EmbeddingDim, b.features, b.classes)
	}
	names, ms := b.layers()
	if len(wt.Layers) != len(ms) {
		return errors.Errorf("%d layers, want %d", len(wt.Layers), len(ms))
	}
	for i, m := range ms {
		l := wt.Layers[i]
		r, c := m.Dims()
		if l.Name != names[i] || l.Rows != r || l.Cols != c || len(l.Data) != r*c {
			return errors.Errorf("layer %d is %s %dx%d, want %s %dx%d", i, l.Name, l.Rows, l.Cols, names[i], r, c)
		}
	}
	for i, m := range ms {
		m.Copy(mat.NewDense(wt.Layers[i].Rows, wt.Layers[i].Cols, wt.Layers[i].Data))
	}
	return nil
}
