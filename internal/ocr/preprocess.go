package ocr

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// minRecognitionWidth is the width below which images are upscaled before
// recognition; small scans lose thin dimension text otherwise.
const minRecognitionWidth = 1600

// Variant is one preprocessed rendition of a page.
type Variant struct {
	Name string
	Img  *image.Gray
}

// toGray converts img to 8-bit grayscale with its origin at (0,0), upscaling
// narrow images with Catmull-Rom.
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > 0 && w < minRecognitionWidth {
		scale := float64(minRecognitionWidth) / float64(w)
		dst := image.NewGray(image.Rect(0, 0, minRecognitionWidth, int(float64(h)*scale+0.5)))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
		return dst
	}
	dst := image.NewGray(image.Rect(0, 0, w, h))
	xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)
	return dst
}

// Variants returns the grayscale page plus contrast-equalized, median
// denoised and morphologically closed renditions.
func Variants(g *image.Gray) []Variant {
	return []Variant{
		{Name: "gray", Img: g},
		{Name: "equalized", Img: equalize(g)},
		{Name: "denoised", Img: median3(g)},
		{Name: "closed", Img: closing(g)},
	}
}

// BestVariant picks the rendition with the highest pixel variance, a cheap
// proxy for contrast; ties keep the earlier variant.
func BestVariant(vs []Variant) Variant {
	best, bestVar := vs[0], variance(vs[0].Img)
	for _, v := range vs[1:] {
		if vv := variance(v.Img); vv > bestVar {
			best, bestVar = v, vv
		}
	}
	return best
}

func variance(g *image.Gray) float64 {
	n := float64(len(g.Pix))
	if n == 0 {
		return 0
	}
	var sum, sq float64
	for _, p := range g.Pix {
		f := float64(p)
		sum += f
		sq += f * f
	}
	mean := sum / n
	return sq/n - mean*mean
}

// equalize applies global histogram equalization.
func equalize(g *image.Gray) *image.Gray {
	var hist [256]int
	for _, p := range g.Pix {
		hist[p]++
	}
	total := len(g.Pix)
	var cdf [256]int
	run, cdfMin := 0, 0
	for i, c := range hist {
		run += c
		cdf[i] = run
		if cdfMin == 0 && run > 0 {
			cdfMin = run
		}
	}
	out := image.NewGray(g.Rect)
	if total == cdfMin {
		copy(out.Pix, g.Pix)
		return out
	}
	var lut [256]uint8
	for i := range lut {
		v := float64(cdf[i]-cdfMin) / float64(total-cdfMin) * 255
		if v < 0 {
			v = 0
		}
		lut[i] = uint8(v + 0.5)
	}
	for i, p := range g.Pix {
		out.Pix[i] = lut[p]
	}
	return out
}

// median3 is a 3x3 median filter; it removes speckle while keeping edges.
func median3(g *image.Gray) *image.Gray {
	return filter3(g, func(win []uint8) uint8 {
		for i := 1; i < len(win); i++ {
			for j := i; j > 0 && win[j] < win[j-1]; j-- {
				win[j], win[j-1] = win[j-1], win[j]
			}
		}
		return win[len(win)/2]
	})
}

// closing is a 3x3 grayscale dilation followed by erosion; it bridges
// small gaps in strokes.
func closing(g *image.Gray) *image.Gray {
	dilated := filter3(g, func(win []uint8) uint8 {
		m := win[0]
		for _, v := range win[1:] {
			m = max(m, v)
		}
		return m
	})
	return filter3(dilated, func(win []uint8) uint8 {
		m := win[0]
		for _, v := range win[1:] {
			m = min(m, v)
		}
		return m
	})
}

func filter3(g *image.Gray, f func([]uint8) uint8) *image.Gray {
	b := g.Rect
	out := image.NewGray(b)
	win := make([]uint8, 0, 9)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			win = win[:0]
			for dy := -1; dy <= 1; dy++ {
				yy := clamp(y+dy, b.Min.Y, b.Max.Y-1)
				for dx := -1; dx <= 1; dx++ {
					xx := clamp(x+dx, b.Min.X, b.Max.X-1)
					win = append(win, g.GrayAt(xx, yy).Y)
				}
			}
			out.Pix[out.PixOffset(x, y)] = f(win)
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// Rotate returns g rotated clockwise by deg, one of 0, 90, 180, 270.
func Rotate(g *image.Gray, deg int) *image.Gray {
	b := g.Rect
	w, h := b.Dx(), b.Dy()
	switch deg % 360 {
	case 90:
		out := image.NewGray(image.Rect(0, 0, h, w))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.Pix[out.PixOffset(h-1-y, x)] = g.Pix[g.PixOffset(b.Min.X+x, b.Min.Y+y)]
			}
		}
		return out
	case 180:
		out := image.NewGray(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.Pix[out.PixOffset(w-1-x, h-1-y)] = g.Pix[g.PixOffset(b.Min.X+x, b.Min.Y+y)]
			}
		}
		return out
	case 270:
		out := image.NewGray(image.Rect(0, 0, h, w))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.Pix[out.PixOffset(y, w-1-x)] = g.Pix[g.PixOffset(b.Min.X+x, b.Min.Y+y)]
			}
		}
		return out
	default:
		return g
	}
}
