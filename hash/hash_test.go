package hash

import "testing"

// performance benchmark
func BenchmarkHash(b *testing.B) {
	n := uint32(0)
	s := uint32(0)
	for i := 0; i < b.N; i++ {
		n = Hash(n, s, 1<<20)
		s++
	}
}

func BenchmarkNgram(b *testing.B) {
	var ids = []int{17, 4, 912}
	for i := 0; i < b.N; i++ {
		ids[0] = i
		Ngram(ids, 1<<21)
	}
}

// loop length test
func TestHash(t *testing.T) {
	const bound1 = 20
	const bound2 = 100000
	var count uint64
	for max := uint32(1); max <= 1<<bound1; max <<= 1 {
		var visited = make([]bool, max, max)
		var current uint32
		for s := uint32(0); s < bound2; s++ {
			current = Hash(current, s, max)
			if current == 0 || visited[current] {
				visited = make([]bool, max, max)
				continue
			} else {
				visited[current] = true
				count++
			}
		}
	}
	if count == 0 {
		t.Errorf("hash never left zero")
	}
}

func TestNgram(t *testing.T) {
	const buckets = 1 << 20
	var seen = make(map[uint32][]int)
	for a := 1; a < 40; a++ {
		for b := 1; b < 40; b++ {
			var h = Ngram([]int{a, b}, buckets)
			if h >= buckets {
				t.Fatalf("Ngram(%d, %d) == %d out of range", a, b, h)
			}
			if h != Ngram([]int{a, b}, buckets) {
				t.Fatalf("Ngram(%d, %d) is not deterministic", a, b)
			}
			seen[h] = []int{a, b}
		}
	}
	// a handful of collisions in a million buckets would already be suspicious
	if len(seen) < 39*39-5 {
		t.Errorf("too many collisions: %d distinct of %d", len(seen), 39*39)
	}
	if Ngram([]int{1, 2}, buckets) == Ngram([]int{1, 2, 0}, buckets) {
		t.Errorf("trailing zero id does not change the hash")
	}
}

// sanity check fuzz
func FuzzHash(f *testing.F) {
	f.Add(uint32(0), uint32(0), uint32(0))
	f.Add(uint32(7), uint32(3), uint32(16000))
	f.Fuzz(func(t *testing.T, n, s, max uint32) {
		out := Hash(n, s, max)
		if max == 0 && out != 0 {
			t.Errorf("Hard error: Hash(%d, %d, 0) == %d (max=0 should be 0)", n, s, out)
		}
		if max > 1 && out >= max {
			t.Errorf("Hard error: Hash(%d, %d, %d) == %d (output bigger or equal than max)", n, s, max, out)
		}
	})
}
