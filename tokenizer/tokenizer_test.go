package tokenizer

import "bytes"
import "path/filepath"
import "reflect"
import "testing"

var tweets = []string{
	"Obama won the debate!",
	"The debate was a draw... #debate",
	"Romney won? The\tpolls say otherwise",
}

func fitted(t *testing.T, opts Options) *Tokenizer {
	t.Helper()
	tok, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	tok.Fit(tweets)
	return tok
}

func TestWords(t *testing.T) {
	tok := fitted(t, DefaultOptions(0))
	got := tok.Words("Hello, World!! It's 2012\n(really)")
	want := []string{"hello", "world", "it's", "2012", "really"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestFitOrder(t *testing.T) {
	tok := fitted(t, DefaultOptions(0))
	idx := tok.WordIndex()
	// the and debate are both seen three times, the comes first in tweet one
	if idx["the"] != 1 || idx["debate"] != 2 {
		t.Errorf("the=%d debate=%d, want 1 and 2", idx["the"], idx["debate"])
	}
	// won x2 next, then singletons in first-seen order
	if idx["won"] != 3 || idx["obama"] != 4 || idx["was"] != 5 {
		t.Errorf("won=%d obama=%d was=%d", idx["won"], idx["obama"], idx["was"])
	}
	if tok.Count("debate") != 3 || tok.DocumentCount("debate") != 2 {
		t.Errorf("debate count %d docs %d", tok.Count("debate"), tok.DocumentCount("debate"))
	}
	if tok.Documents() != 3 {
		t.Errorf("documents %d", tok.Documents())
	}
}

func TestSequenceNumWords(t *testing.T) {
	tok := fitted(t, DefaultOptions(4))
	got := tok.Sequence("the debate won obama unknown")
	want := []int{1, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestSequenceOOV(t *testing.T) {
	opts := DefaultOptions(5)
	opts.OOVToken = "<oov>"
	tok := fitted(t, opts)
	if tok.WordIndex()["<oov>"] != 1 || tok.WordIndex()["the"] != 2 {
		t.Fatalf("oov not first: %v", tok.WordIndex())
	}
	got := tok.Sequence("the mitt debate")
	want := []int{2, 1, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestNormalization(t *testing.T) {
	opts := DefaultOptions(0)
	opts.Normalization = "NFKC"
	tok := fitted(t, opts)
	if got := tok.Words("ｏｂａｍａ"); len(got) != 1 || got[0] != "obama" {
		t.Errorf("fullwidth not folded: %q", got)
	}
	opts.Normalization = "NFX"
	if _, err := New(opts); err == nil {
		t.Errorf("unknown normalization accepted")
	}
}

func TestSpellNumbers(t *testing.T) {
	opts := DefaultOptions(0)
	opts.SpellNumbers = true
	tok := fitted(t, opts)
	got := tok.Words("vote 2")
	if len(got) != 2 || got[0] != "vote" || got[1] != "two" {
		t.Errorf("got %q", got)
	}
}

func TestSaveLoad(t *testing.T) {
	tok := fitted(t, DefaultOptions(6))
	var buf bytes.Buffer
	if err := tok.WriteCompressed(&buf); err != nil {
		t.Fatal(err)
	}
	back, err := ReadCompressed(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back.WordIndex(), tok.WordIndex()) {
		t.Errorf("index changed: %v != %v", back.WordIndex(), tok.WordIndex())
	}
	if !reflect.DeepEqual(back.Sequences(tweets), tok.Sequences(tweets)) {
		t.Errorf("sequences changed")
	}
}

func TestLoadOrFit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokenizer.lzw")
	first, err := LoadOrFit(path, DefaultOptions(0), tweets)
	if err != nil {
		t.Fatal(err)
	}
	// a cached tokenizer ignores the new texts
	second, err := LoadOrFit(path, DefaultOptions(0), []string{"something else entirely"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first.WordIndex(), second.WordIndex()) {
		t.Errorf("cache not reused")
	}
}
