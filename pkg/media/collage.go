package media

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

var (
	gradientLeft  = color.NRGBA{R: 50, G: 50, B: 150, A: 255}
	gradientRight = color.NRGBA{R: 150, G: 50, B: 50, A: 255}
	dividerColor  = color.NRGBA{R: 255, G: 50, B: 50, A: 255}
)

// VersusCollage puts two fighter photos side by side on a blue-to-red
// gradient with a red divider between them, and returns a JPEG.
func VersusCollage(left, right []byte, opts CollageOptions) ([]byte, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts = DefaultCollageOptions()
	}

	leftImg, err := imaging.Decode(bytes.NewReader(left), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode left image: %w", err)
	}
	rightImg, err := imaging.Decode(bytes.NewReader(right), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode right image: %w", err)
	}

	canvas := gradient(opts.Width, opts.Height)

	half := (opts.Width - opts.DividerWidth) / 2
	canvas = imaging.Paste(canvas, imaging.Fill(leftImg, half, opts.Height, imaging.Center, imaging.Lanczos), image.Pt(0, 0))
	canvas = imaging.Paste(canvas, imaging.Fill(rightImg, half, opts.Height, imaging.Center, imaging.Lanczos), image.Pt(opts.Width-half, 0))

	if opts.DividerWidth > 0 {
		divider := imaging.New(opts.DividerWidth, opts.Height, dividerColor)
		canvas = imaging.Paste(canvas, divider, image.Pt(half, 0))
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.JPEG, imaging.JPEGQuality(opts.Quality)); err != nil {
		return nil, fmt.Errorf("encode collage: %w", err)
	}
	return buf.Bytes(), nil
}

func gradient(width, height int) *image.NRGBA {
	img := imaging.New(width, height, gradientLeft)
	for x := 0; x < width; x++ {
		ratio := float64(x) / float64(width)
		c := color.NRGBA{
			R: lerp(gradientLeft.R, gradientRight.R, ratio),
			G: lerp(gradientLeft.G, gradientRight.G, ratio),
			B: lerp(gradientLeft.B, gradientRight.B, ratio),
			A: 255,
		}
		for y := 0; y < height; y++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a)*(1-t) + float64(b)*t)
}
