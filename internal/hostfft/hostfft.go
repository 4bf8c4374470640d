// Package hostfft implements the reference CPU transform backing the host
// engine: unnormalized complex DFTs over row-major single-precision data,
// separable across 1-3 dimensions. Accuracy beats speed here; twiddle math
// runs in float64 and narrows on store.
package hostfft

import (
	"math"
	"math/cmplx"
)

// Transform computes the unnormalized DFT of every axis of the row-major
// array described by lengths, in place. invert selects the positive-exponent
// (inverse) convention; no 1/N scaling is applied in either direction.
func Transform(data []complex64, lengths []int, invert bool) {
	total := 1
	for _, n := range lengths {
		total *= n
	}
	if total <= 1 || len(data) < total {
		return
	}

	maxLen := 0
	for _, n := range lengths {
		if n > maxLen {
			maxLen = n
		}
	}
	line := make([]complex64, maxLen)

	// Fastest-varying axis first; stride grows as axes move outward.
	stride := 1
	for axis := len(lengths) - 1; axis >= 0; axis-- {
		n := lengths[axis]
		block := n * stride
		for start := 0; start < total; start += block {
			for off := 0; off < stride; off++ {
				base := start + off
				for k := 0; k < n; k++ {
					line[k] = data[base+k*stride]
				}
				transform1D(line[:n], invert)
				for k := 0; k < n; k++ {
					data[base+k*stride] = line[k]
				}
			}
		}
		stride *= n
	}
}

func transform1D(data []complex64, invert bool) {
	n := len(data)
	if n <= 1 {
		return
	}
	if n&(n-1) == 0 {
		radix2(data, invert)
		return
	}
	direct(data, invert)
}

// radix2 is an iterative decimation-in-time FFT for power-of-two lengths.
func radix2(data []complex64, invert bool) {
	n := len(data)
	bits := log2(n)

	for i := range data {
		j := reverseBits(i, bits)
		if j > i {
			data[i], data[j] = data[j], data[i]
		}
	}

	for size := 2; size <= n; size <<= 1 {
		half := size >> 1
		ang := -2 * math.Pi / float64(size)
		if invert {
			ang = -ang
		}
		step := cmplx.Rect(1, ang)
		for start := 0; start < n; start += size {
			w := complex(1, 0)
			for k := 0; k < half; k++ {
				a := complex128(data[start+k])
				b := complex128(data[start+k+half]) * w
				data[start+k] = complex64(a + b)
				data[start+k+half] = complex64(a - b)
				w *= step
			}
		}
	}
}

// direct is the O(n^2) fallback for lengths with odd factors.
func direct(data []complex64, invert bool) {
	n := len(data)
	sign := -1.0
	if invert {
		sign = 1.0
	}
	unit := sign * 2 * math.Pi / float64(n)

	out := make([]complex128, n)
	for k := 0; k < n; k++ {
		var sum complex128
		t := 0
		for j := 0; j < n; j++ {
			sum += complex128(data[j]) * cmplx.Rect(1, unit*float64(t))
			t += k
			if t >= n {
				t -= n
			}
		}
		out[k] = sum
	}
	for k, v := range out {
		data[k] = complex64(v)
	}
}

// log2 returns the base-2 logarithm of n, assuming n is a power of two.
func log2(n int) int {
	bits := 0
	for n > 1 {
		n >>= 1
		bits++
	}
	return bits
}

// reverseBits reverses the lower 'bits' bits of x.
func reverseBits(x, bits int) int {
	r := 0
	for i := 0; i < bits; i++ {
		r = r<<1 | x&1
		x >>= 1
	}
	return r
}
