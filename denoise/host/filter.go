package host

import (
	"math"

	"github.com/DominikPott/nvidiaDenoiser/denoise"
	"github.com/DominikPott/nvidiaDenoiser/types"
)

// Apply a joint bilateral filter to color and write the result, blended with
// the unfiltered input by blend, to dst. The albedo and normal guides are
// optional (nil) and must match the color dimensions when present. All
// slices hold interleaved rgba samples.
//
// Taps holding NaN or infinite samples are skipped. A non-finite center
// sample drops the matching range term so it is replaced by its neighbors.
func jointBilateral(dst, color, albedo, normal []float32, width, height int, blend float32, p denoise.FilterParams) {
	invSpatial, invColor, invAlbedo, invNormal := p.Falloffs()

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			center := y*width + x
			cIn := types.Pixel(color, center)
			c := cIn.Vec3()

			var a, n types.Vec3
			if albedo != nil {
				a = types.Pixel(albedo, center).Vec3()
			}
			if normal != nil {
				n = types.Pixel(normal, center).Vec3()
			}
			useColor := c.IsFinite()
			useAlbedo := albedo != nil && a.IsFinite()
			useNormal := normal != nil && n.IsFinite()

			var sum types.Vec3
			var wSum float32
			for dy := -p.Radius; dy <= p.Radius; dy++ {
				sy := y + dy
				if sy < 0 || sy >= height {
					continue
				}
				for dx := -p.Radius; dx <= p.Radius; dx++ {
					sx := x + dx
					if sx < 0 || sx >= width {
						continue
					}
					tap := sy*width + sx
					cTap := types.Pixel(color, tap).Vec3()
					if !cTap.IsFinite() {
						continue
					}

					exponent := float32(dx*dx+dy*dy) * invSpatial
					if useColor {
						exponent += c.DistSq(cTap) * invColor
					}
					if useAlbedo {
						aTap := types.Pixel(albedo, tap).Vec3()
						if !aTap.IsFinite() {
							continue
						}
						exponent += a.DistSq(aTap) * invAlbedo
					}
					if useNormal {
						nTap := types.Pixel(normal, tap).Vec3()
						if !nTap.IsFinite() {
							continue
						}
						exponent += n.DistSq(nTap) * invNormal
					}

					w := float32(math.Exp(-float64(exponent)))
					sum = sum.Add(cTap.Mul(w))
					wSum += w
				}
			}

			// wSum is only zero when no usable tap is left
			filtered := c
			if wSum > 0 {
				filtered = sum.Mul(1.0 / wSum)
			}
			if blend > 0 {
				filtered = filtered.Lerp(c, blend)
			}
			types.SetPixel(dst, center, filtered.Vec4(cIn[3]))
		}
	}
}
