package audio

import (
	"encoding/binary"
	"sync"
)

// SampleQueue is a thread-safe bounded FIFO of int16 samples feeding a
// playback device. The device callback drains it; tones are appended to it.
type SampleQueue struct {
	samples []int16
	head    int // Next read position
	count   int // Number of queued samples
	mu      sync.Mutex
}

// NewSampleQueue creates a queue holding at most capacity samples.
func NewSampleQueue(capacity int) *SampleQueue {
	return &SampleQueue{
		samples: make([]int16, capacity),
	}
}

// Write appends samples and returns how many were accepted. Samples that do
// not fit are dropped; queued audio is never overwritten.
func (q *SampleQueue) Write(samples []int16) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	capacity := len(q.samples)
	n := min(len(samples), capacity-q.count)

	for i := 0; i < n; i++ {
		q.samples[(q.head+q.count)%capacity] = samples[i]
		q.count++
	}

	return n
}

// Read moves up to len(dst) of the oldest samples into dst and returns how
// many were read.
func (q *SampleQueue) Read(dst []int16) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.read(dst)
}

func (q *SampleQueue) read(dst []int16) int {
	n := min(len(dst), q.count)
	capacity := len(q.samples)

	for i := 0; i < n; i++ {
		dst[i] = q.samples[q.head]
		q.head = (q.head + 1) % capacity
	}

	q.count -= n

	return n
}

// FillS16LE fills out with queued samples encoded as signed 16-bit
// little-endian, padding with silence when the queue runs dry.
func (q *SampleQueue) FillS16LE(out []byte) {
	buf := make([]int16, len(out)/2)

	q.mu.Lock()
	n := q.read(buf)
	q.mu.Unlock()

	for i := n; i < len(buf); i++ {
		buf[i] = 0
	}

	PutInt16s(out, buf)
}

// Len returns the number of queued samples.
func (q *SampleQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.count
}

// Clear drops everything queued.
func (q *SampleQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.head = 0
	q.count = 0
}

// PutInt16s encodes samples into dst as S16LE. dst must hold 2 bytes per
// sample; extra bytes are left untouched.
func PutInt16s(dst []byte, samples []int16) {
	for i, s := range samples {
		if 2*i+1 >= len(dst) {
			return
		}

		binary.LittleEndian.PutUint16(dst[2*i:], uint16(s))
	}
}

// BytesToInt16 converts S16LE (signed 16-bit little-endian) bytes to int16 samples.
func BytesToInt16(data []byte) []int16 {
	numSamples := len(data) / 2
	if numSamples == 0 {
		return nil
	}

	samples := make([]int16, numSamples)

	for i := 0; i < numSamples; i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}

	return samples
}
