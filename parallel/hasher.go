package parallel

import "crypto/sha256"
import "encoding/binary"
import "sync"

// Hasher collects uint16 values written concurrently by index and digests them
// in index order, so the digest does not depend on goroutine scheduling.
type Hasher struct {
	mut     sync.Mutex
	written []bool
	data    []uint16
}

// NewUint16Hasher makes a hasher for exactly n values.
func NewUint16Hasher(n int) *Hasher {
	return &Hasher{
		written: make([]bool, n),
		data:    make([]uint16, n),
	}
}

// MustPutUint16 stores value at position n. Writing a position twice or out of
// range panics.
func (h *Hasher) MustPutUint16(n int, value uint16) {
	if n < 0 || n >= len(h.data) {
		panic("uint16 write out of range")
	}
	h.mut.Lock()
	defer h.mut.Unlock()
	if h.written[n] {
		println(n, value)
		panic("duplicate write")
	}
	h.written[n] = true
	h.data[n] = value
}

// Sum digests all values. Positions never written digest as zero.
func (h *Hasher) Sum() (ret [32]byte) {
	h.mut.Lock()
	defer h.mut.Unlock()
	sha := sha256.New()
	var buf [2]byte
	for _, v := range h.data {
		binary.LittleEndian.PutUint16(buf[:], v)
		sha.Write(buf[:])
	}
	copy(ret[:], sha.Sum(nil))
	return
}
