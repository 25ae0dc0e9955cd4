// Package ngram augments token sequences with ids of the n-grams they contain.
//
// N-gram ids start right above the word vocabulary ceiling (maxWords+1), so they never
// collide with word ids. Ids are given out in scan order: sequence by sequence, order 2
// first, start position left to right.
package ngram

import "strconv"
import "strings"
import "github.com/jbarham/primegen"
import "github.com/neurlang/tweetclass/hash"

// Key renders an n-gram as its ids joined by a space. Words never contain the
// split character, so keys can share a map with words.
func Key(ngram []int) string {
	var b strings.Builder
	for i, id := range ngram {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.Itoa(id))
	}
	return b.String()
}

// CreateNgramSet lists the distinct contiguous n-grams of order n in seq, first seen first.
func CreateNgramSet(seq []int, n int) (o [][]int) {
	if n <= 0 {
		return nil
	}
	var seen = make(map[string]struct{})
	for i := 0; i+n <= len(seq); i++ {
		k := Key(seq[i : i+n])
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		o = append(o, append([]int(nil), seq[i:i+n]...))
	}
	return
}

// Index assigns ids to n-grams.
type Index struct {
	start   int
	buckets uint32

	// ngramRange is the largest order observed
	ngramRange int

	ids   map[string]int
	order []string
}

// NewIndex makes an empty index whose first id is maxWords+1. With buckets > 0 the
// index hashes n-grams into the smallest prime number of buckets not below buckets
// instead of numbering them.
func NewIndex(maxWords, buckets int) *Index {
	x := &Index{start: maxWords + 1, ids: make(map[string]int)}
	if buckets > 0 {
		x.buckets = uint32(NextPrime(uint64(buckets)))
	}
	return x
}

// NextPrime returns the smallest prime >= n.
func NextPrime(n uint64) uint64 {
	p := primegen.New()
	p.SkipTo(n)
	return p.Next()
}

// Start is the first n-gram id.
func (x *Index) Start() int {
	return x.start
}

// Range is the largest n-gram order the index has observed.
func (x *Index) Range() int {
	return x.ngramRange
}

// Buckets is the hashed id space, 0 when ids are numbered.
func (x *Index) Buckets() int {
	return int(x.buckets)
}

// Observe indexes every n-gram of order 2..ngramRange in sequences.
func (x *Index) Observe(sequences [][]int, ngramRange int) {
	if ngramRange > x.ngramRange {
		x.ngramRange = ngramRange
	}
	for _, seq := range sequences {
		for n := 2; n <= ngramRange; n++ {
			for _, ng := range CreateNgramSet(seq, n) {
				x.add(ng)
			}
		}
	}
}

func (x *Index) add(ng []int) int {
	k := Key(ng)
	if id, ok := x.ids[k]; ok {
		return id
	}
	var id int
	if x.buckets > 0 {
		id = x.start + int(hash.Ngram(ng, x.buckets))
	} else {
		id = x.start + len(x.order)
	}
	x.ids[k] = id
	x.order = append(x.order, k)
	return id
}

// ID returns the id of an indexed n-gram.
func (x *Index) ID(ng []int) (int, bool) {
	id, ok := x.ids[Key(ng)]
	return id, ok
}

// Len is the number of indexed n-grams.
func (x *Index) Len() int {
	return len(x.order)
}

// MaxFeatures is one above the largest id the index can produce, at least maxWords+1.
func (x *Index) MaxFeatures() int {
	if x.buckets > 0 {
		return x.start + int(x.buckets)
	}
	return x.start + len(x.order)
}

// Merge returns words plus every indexed n-gram under its Key.
func (x *Index) Merge(words map[string]int) map[string]int {
	var o = make(map[string]int, len(words)+len(x.ids))
	for k, v := range words {
		o[k] = v
	}
	for k, v := range x.ids {
		o[k] = v
	}
	return o
}

// BuildIndex indexes the n-grams of sequences, see Index.Observe.
func BuildIndex(sequences [][]int, maxWords, ngramRange, buckets int) *Index {
	x := NewIndex(maxWords, buckets)
	x.Observe(sequences, ngramRange)
	return x
}

// Augment copies each sequence and appends, for every start position i up to
// len-ngramRange of the original sequence and every order 2..ngramRange, the id of
// the n-gram starting at i when it is indexed.
func Augment(sequences [][]int, x *Index, ngramRange int) [][]int {
	var o = make([][]int, len(sequences))
	for s, seq := range sequences {
		list := append(make([]int, 0, len(seq)*ngramRange), seq...)
		for i := 0; i+ngramRange <= len(seq); i++ {
			for n := 2; n <= ngramRange; n++ {
				if id, ok := x.ID(seq[i : i+n]); ok {
					list = append(list, id)
				}
			}
		}
		o[s] = list
	}
	return o
}

// Pad makes every sequence maxLen long. Padding and truncating are "pre" (at the
// front, the default) or "post". Padding uses id 0.
func Pad(sequences [][]int, maxLen int, padding, truncating string) [][]int32 {
	var o = make([][]int32, len(sequences))
	for i, seq := range sequences {
		row := make([]int32, maxLen)
		if len(seq) > maxLen {
			if truncating == "post" {
				seq = seq[:maxLen]
			} else {
				seq = seq[len(seq)-maxLen:]
			}
		}
		var offset int
		if padding != "post" {
			offset = maxLen - len(seq)
		}
		for j, id := range seq {
			row[offset+j] = int32(id)
		}
		o[i] = row
	}
	return o
}
