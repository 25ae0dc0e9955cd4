// Package embedding turns pretrained word vectors (GloVe text format) into the
// embedding matrix of a word index, caching the matrix as a .npy file.
package embedding

import "bufio"
import "fmt"
import "io"
import "log"
import "os"
import "path/filepath"
import "strconv"
import "strings"
import "github.com/pkg/errors"
import "github.com/sbinet/npyio"
import "gonum.org/v1/gonum/mat"
import "github.com/neurlang/tweetclass/config"

const maxLine = 1 << 20

// Vectors maps a word to its pretrained vector.
type Vectors map[string][]float32

// ReadVectors reads "word v1 v2 ..." lines. Lines whose values don't all parse are
// skipped and their words returned as bad. Blank lines are ignored.
func ReadVectors(r io.Reader) (Vectors, []string, error) {
	var vectors = make(Vectors)
	var bad []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLine)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		vec, ok := parseVector(fields[1:])
		if !ok {
			bad = append(bad, fields[0])
			continue
		}
		vectors[fields[0]] = vec
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "can't read word vectors")
	}
	return vectors, bad, nil
}

func parseVector(fields []string) ([]float32, bool) {
	if len(fields) == 0 {
		return nil, false
	}
	vec := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, false
		}
		vec[i] = float32(v)
	}
	return vec, true
}

// Rows is the number of matrix rows for a word index.
func Rows(wordIndex map[string]int, maxWords int) int {
	if len(wordIndex) < maxWords {
		return len(wordIndex)
	}
	return maxWords
}

// Build makes the min(maxWords, len(wordIndex)) x dim matrix whose row i is the
// vector of the word with index i. Rows without a vector stay zero. Words whose vector
// has another dimension are returned as bad.
func Build(vectors Vectors, wordIndex map[string]int, maxWords, dim int) (*mat.Dense, []string, error) {
	nb := Rows(wordIndex, maxWords)
	if nb <= 0 || dim <= 0 {
		return nil, nil, errors.Errorf("empty embedding matrix %d x %d", nb, dim)
	}
	m := mat.NewDense(nb, dim, nil)
	var bad []string
	for word, i := range wordIndex {
		if i >= nb {
			continue
		}
		vec, ok := vectors[word]
		if !ok {
			continue
		}
		if len(vec) != dim {
			bad = append(bad, word)
			continue
		}
		row := m.RawRowView(i)
		for j, v := range vec {
			row[j] = float64(v)
		}
	}
	return m, bad, nil
}

// CacheName is the file name of the cached matrix in the data directory.
func CacheName(maxWords, dim int) string {
	return fmt.Sprintf("embedding_matrix max words %d embedding dim %d.npy", maxWords, dim)
}

// LoadMatrix returns the matrix cached in dir, or builds it from the vectors file at
// path and caches it.
func LoadMatrix(path string, wordIndex map[string]int, maxWords, dim int, dir string, printBad bool) (*mat.Dense, error) {
	cache := filepath.Join(dir, CacheName(maxWords, dim))
	m, err := Read(cache)
	if err == nil {
		log.Printf("loaded embedding matrix %s", cache)
		return m, nil
	}
	if !os.IsNotExist(errors.Cause(err)) {
		return nil, err
	}

	log.Printf("creating embedding matrix from %s", path)
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "can't open word vectors")
	}
	vectors, bad, err := ReadVectors(file)
	file.Close()
	if err != nil {
		return nil, err
	}
	log.Printf("found %d word vectors", len(vectors))

	m, wrong, err := Build(vectors, wordIndex, maxWords, dim)
	if err != nil {
		return nil, err
	}
	bad = append(bad, wrong...)
	if len(bad) > 0 {
		log.Printf("%d words could not be added", len(bad))
		if printBad {
			log.Printf("words are: %q", bad)
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "can't create %q", dir)
	}
	if err := Write(cache, m); err != nil {
		return nil, err
	}
	log.Printf("saved embedding matrix %s", cache)
	return m, nil
}

// Load is LoadMatrix with the paths and sizes of cfg.
func Load(cfg *config.Config, wordIndex map[string]int) (*mat.Dense, error) {
	return LoadMatrix(cfg.EmbeddingPath, wordIndex, cfg.MaxWords, cfg.EmbeddingDim, cfg.DataDir, cfg.PrintErrorWords)
}

// Read loads a matrix from a .npy file.
func Read(name string) (*mat.Dense, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	var m mat.Dense
	if err := npyio.Read(file, &m); err != nil {
		return nil, errors.Wrapf(err, "can't read %q", name)
	}
	return &m, nil
}

// Write saves a matrix as a .npy file.
func Write(name string, m mat.Matrix) error {
	file, err := os.Create(name)
	if err != nil {
		return errors.Wrapf(err, "can't create %q", name)
	}
	err = npyio.Write(file, m)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return errors.Wrapf(err, "can't write %q", name)
}
