package mapping

import "gonum.org/v1/gonum/dsp/fourier"

// ConvolveFFT blurs a dense native image with the kernel via 2D FFT,
// returning the same-size result with zero padding outside the image.
// Used for forward simulation of model images, where every pixel is
// populated and direct convolution no longer wins.
//
// Complexity: O(F log F) over the padded grid size F.
func ConvolveFFT(image [][]float64, k *Kernel) ([][]float64, error) {
	h := len(image)
	if h == 0 || k == nil {
		return nil, ErrShapeMismatch
	}
	w := len(image[0])
	for _, row := range image {
		if len(row) != w {
			return nil, ErrShapeMismatch
		}
	}

	// Pad to a power of two covering the full linear convolution.
	fh := nextPow2(h + k.rows - 1)
	fw := nextPow2(w + k.cols - 1)

	a := makeComplex2D(fh, fw)
	b := makeComplex2D(fh, fw)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a[y][x] = complex(image[y][x], 0)
		}
	}
	for y := 0; y < k.rows; y++ {
		for x := 0; x < k.cols; x++ {
			b[y][x] = complex(k.w[y][x], 0)
		}
	}

	fft2InPlace(a, true)
	fft2InPlace(b, true)
	for y := 0; y < fh; y++ {
		for x := 0; x < fw; x++ {
			a[y][x] *= b[y][x]
		}
	}
	fft2InPlace(a, false)

	// Gonum transforms are unnormalized: forward then inverse scales by
	// the grid size.
	scale := float64(fh * fw)
	offY, offX := k.rows/2, k.cols/2
	out := make([][]float64, h)
	for y := 0; y < h; y++ {
		out[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			out[y][x] = real(a[y+offY][x+offX]) / scale
		}
	}

	return out, nil
}

// fft2InPlace applies a 2D FFT by transforming rows then columns with
// gonum's 1D complex FFT.
func fft2InPlace(a [][]complex128, forward bool) {
	h, w := len(a), len(a[0])
	rowFFT := fourier.NewCmplxFFT(w)
	colFFT := fourier.NewCmplxFFT(h)

	tmp := make([]complex128, w)
	for y := 0; y < h; y++ {
		copy(tmp, a[y])
		if forward {
			rowFFT.Coefficients(tmp, tmp)
		} else {
			rowFFT.Sequence(tmp, tmp)
		}
		copy(a[y], tmp)
	}
	col := make([]complex128, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = a[y][x]
		}
		if forward {
			colFFT.Coefficients(col, col)
		} else {
			colFFT.Sequence(col, col)
		}
		for y := 0; y < h; y++ {
			a[y][x] = col[y]
		}
	}
}

func makeComplex2D(h, w int) [][]complex128 {
	m := make([][]complex128, h)
	for i := range m {
		m[i] = make([]complex128, w)
	}

	return m
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
