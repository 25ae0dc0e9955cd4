package ngram

import "bytes"
import "reflect"
import "testing"
import "github.com/davecgh/go-spew/spew"
import "github.com/neurlang/tweetclass/config"

func TestCreateNgramSet(t *testing.T) {
	got := CreateNgramSet([]int{1, 4, 9, 4, 1, 4}, 2)
	want := [][]int{{1, 4}, {4, 9}, {9, 4}, {4, 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v want %v", got, want)
	}
	if CreateNgramSet([]int{1}, 2) != nil {
		t.Errorf("short sequence has n-grams")
	}
}

func TestKey(t *testing.T) {
	k := Key([]int{12, 7, 300})
	if k != "12 7 300" {
		t.Fatalf("key %q", k)
	}
}

func TestBuildIndex(t *testing.T) {
	seqs := [][]int{{1, 3, 4, 5}, {1, 3, 7, 9, 2}}
	x := BuildIndex(seqs, 10, 3, 0)
	var tests = []struct {
		ngram []int
		id    int
	}{
		{[]int{1, 3}, 11},
		{[]int{3, 4}, 12},
		{[]int{4, 5}, 13},
		{[]int{1, 3, 4}, 14},
		{[]int{3, 4, 5}, 15},
		{[]int{3, 7}, 16},
		{[]int{7, 9}, 17},
		{[]int{9, 2}, 18},
		{[]int{1, 3, 7}, 19},
		{[]int{3, 7, 9}, 20},
		{[]int{7, 9, 2}, 21},
	}
	for _, test := range tests {
		id, ok := x.ID(test.ngram)
		if !ok || id != test.id {
			t.Errorf("%v: got %d %v want %d", test.ngram, id, ok, test.id)
		}
	}
	if x.Len() != len(tests) || x.MaxFeatures() != 22 {
		t.Errorf("len %d max features %d", x.Len(), x.MaxFeatures())
	}
	if NewIndex(10, 0).MaxFeatures() != 11 {
		t.Errorf("empty index max features")
	}
}

func TestAugment(t *testing.T) {
	// the worked example of fastText style bigram augmentation
	seqs := [][]int{{1, 3, 4, 5}, {1, 3, 7, 9, 2}}
	x := NewIndex(0, 0)
	x.ids = map[string]int{"3 4": 1337, "9 2": 42}
	got := Augment(seqs, x, 2)
	want := [][]int{{1, 3, 4, 5, 1337}, {1, 3, 7, 9, 2, 42}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v want %v", got, want)
	}

	x.ids["1 3 7"] = 2018
	got = Augment(seqs, x, 3)
	want = [][]int{{1, 3, 4, 5, 1337}, {1, 3, 7, 9, 2, 2018}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v want %v", got, want)
	}
	if seqs[0][len(seqs[0])-1] != 5 {
		t.Errorf("input modified")
	}
}

func TestHashedIndex(t *testing.T) {
	x := BuildIndex([][]int{{1, 2, 3, 4, 5, 6}}, 100, 2, 1000)
	if x.Buckets() != 1009 {
		t.Fatalf("buckets %d", x.Buckets())
	}
	if x.MaxFeatures() != 101+1009 {
		t.Errorf("max features %d", x.MaxFeatures())
	}
	for _, ng := range CreateNgramSet([]int{1, 2, 3, 4, 5, 6}, 2) {
		id, ok := x.ID(ng)
		if !ok || id < 101 || id >= x.MaxFeatures() {
			t.Errorf("%v: id %d", ng, id)
		}
	}
}

func TestPad(t *testing.T) {
	seqs := [][]int{{1, 2, 3, 4}, {5}}
	var tests = []struct {
		padding, truncating string
		want                [][]int32
	}{
		{"pre", "pre", [][]int32{{2, 3, 4}, {0, 0, 5}}},
		{"post", "pre", [][]int32{{2, 3, 4}, {5, 0, 0}}},
		{"pre", "post", [][]int32{{1, 2, 3}, {0, 0, 5}}},
		{"post", "post", [][]int32{{1, 2, 3}, {5, 0, 0}}},
	}
	for _, test := range tests {
		got := Pad(seqs, 3, test.padding, test.truncating)
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("%s/%s: %s", test.padding, test.truncating, spew.Sdump(got))
		}
	}
}

func TestSaveLoad(t *testing.T) {
	x := BuildIndex([][]int{{1, 3, 4, 5}, {1, 3, 7, 9, 2}}, 10, 3, 0)
	var buf bytes.Buffer
	if err := x.WriteCompressed(&buf); err != nil {
		t.Fatal(err)
	}
	back, err := ReadCompressed(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back, x) {
		t.Errorf("got %s want %s", spew.Sdump(back), spew.Sdump(x))
	}
}

func TestPrepare(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.MaxWords = 100
	cfg.MaxSequenceLength = 8
	texts := []string{"good debate tonight", "bad debate tonight", "good good night"}

	p, err := Prepare(texts, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Data) != 3 || len(p.Data[0]) != 8 {
		t.Fatalf("shape %d x %d", len(p.Data), len(p.Data[0]))
	}
	// good=1 debate=2 tonight=3 bad=4 night=5
	if p.WordIndex["good"] != 1 || p.WordIndex["1 2"] != 101 || p.WordIndex["1 1"] != 104 {
		t.Errorf("index %v", p.WordIndex)
	}
	want := []int32{0, 0, 0, 1, 2, 3, 101, 102}
	if !reflect.DeepEqual(p.Data[0], want) {
		t.Errorf("row %v want %v", p.Data[0], want)
	}
	if p.Features != p.Index.MaxFeatures() {
		t.Errorf("features %d", p.Features)
	}

	// test data reuses the cached tokenizer and n-gram ids
	q, err := Prepare([]string{"bad debate tonight"}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if want := []int32{0, 0, 0, 4, 2, 3, 103, 102}; !reflect.DeepEqual(q.Data[0], want) || !reflect.DeepEqual(p.Data[1], want) {
		t.Errorf("cached ids differ: %v %v", q.Data[0], p.Data[1])
	}
}

func TestPrepareStaleCache(t *testing.T) {
	texts := []string{"good debate tonight", "bad debate tonight", "good good night"}
	var tests = []struct {
		name   string
		change func(c *config.Config)
	}{
		{"max words", func(c *config.Config) { c.MaxWords = 50 }},
		{"buckets", func(c *config.Config) { c.NgramBuckets = 1000 }},
		{"ngram range", func(c *config.Config) { c.NgramRange = 3 }},
		{"oov token", func(c *config.Config) { c.OOVToken = "<unk>" }},
	}
	for _, test := range tests {
		cfg := config.Default()
		cfg.DataDir = t.TempDir()
		cfg.MaxWords = 100
		cfg.MaxSequenceLength = 8
		if _, err := Prepare(texts, cfg); err != nil {
			t.Fatal(err)
		}
		if _, err := Prepare(texts, cfg); err != nil {
			t.Errorf("%s: unchanged settings rejected: %v", test.name, err)
		}
		test.change(cfg)
		if _, err := Prepare(texts, cfg); err == nil {
			t.Errorf("%s: cache of other settings accepted", test.name)
		}
	}
}

func TestIndexRange(t *testing.T) {
	x := BuildIndex([][]int{{1, 2, 3, 4}}, 10, 3, 0)
	if x.Range() != 3 {
		t.Errorf("range %d", x.Range())
	}
	var buf bytes.Buffer
	if err := x.WriteCompressed(&buf); err != nil {
		t.Fatal(err)
	}
	back, err := ReadCompressed(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if back.Range() != 3 {
		t.Errorf("range lost: %d", back.Range())
	}
}
