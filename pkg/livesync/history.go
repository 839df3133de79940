package livesync

// history is a ring buffer of encoded op batches kept for resync. It is
// owned by the runtime loop.
type history struct {
	frames   [][]byte
	head     int    // next write position
	count    int    // entries held
	maxSeq   uint64 // seq of the newest entry
	capacity int
}

func newHistory(capacity int) *history {
	if capacity <= 0 {
		capacity = 100
	}
	return &history{frames: make([][]byte, capacity), capacity: capacity}
}

// add stores the frame of seq, which must be maxSeq+1.
func (h *history) add(seq uint64, frame []byte) {
	h.frames[h.head] = frame
	h.head = (h.head + 1) % h.capacity
	if h.count < h.capacity {
		h.count++
	}
	h.maxSeq = seq
}

func (h *history) minSeq() uint64 {
	if h.count == 0 {
		return 0
	}
	return h.maxSeq - uint64(h.count) + 1
}

// since returns the frames after seq in order, an empty slice when seq is
// current, or ok == false when some of them were overwritten.
func (h *history) since(seq uint64) (frames [][]byte, ok bool) {
	if seq >= h.maxSeq {
		return nil, seq == h.maxSeq
	}
	if h.count == 0 || seq+1 < h.minSeq() {
		return nil, false
	}
	n := int(h.maxSeq - seq)
	for i := n; i > 0; i-- {
		idx := (h.head - i + h.capacity) % h.capacity
		frames = append(frames, h.frames[idx])
	}
	return frames, true
}
