/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package tensor

// Permutation maps each destination index to the source index it reads.
type Permutation []int32

// PlanarToInterleaved builds the permutation turning a planar buffer
// (height index fastest, then width, then channel) into an interleaved one
// (channel fastest, then width, then height).
func PlanarToInterleaved(h, w, c int) Permutation {
	p := make(Permutation, h*w*c)
	for ic := 0; ic < c; ic++ {
		for iw := 0; iw < w; iw++ {
			for ih := 0; ih < h; ih++ {
				dst := ic + c*(iw+w*ih)
				src := ih + h*(iw+w*ic)
				p[dst] = int32(src)
			}
		}
	}
	return p
}

// InterleavedToPlanar is the inverse of PlanarToInterleaved.
func InterleavedToPlanar(h, w, c int) Permutation {
	p := make(Permutation, h*w*c)
	for ic := 0; ic < c; ic++ {
		for iw := 0; iw < w; iw++ {
			for ih := 0; ih < h; ih++ {
				dst := ih + h*(iw+w*ic)
				src := ic + c*(iw+w*ih)
				p[dst] = int32(src)
			}
		}
	}
	return p
}

// Apply writes src rearranged by p into dst. dst and src must both hold
// len(p) elements.
func (p Permutation) Apply(dst, src []float32) {
	if len(p) == 0 {
		return
	}
	_ = dst[len(p)-1]
	_ = src[len(p)-1]
	for i, s := range p {
		dst[i] = src[s]
	}
}
