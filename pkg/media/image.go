package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
)

type ImageProcessor struct {
	opts CompressionOptions
}

func NewImageProcessor(opts CompressionOptions) *ImageProcessor {
	return &ImageProcessor{opts: opts}
}

// Compress shrinks an image that exceeds the configured threshold so it fits
// within MaxWidth x MaxHeight. Small images are returned untouched. PNG input
// stays PNG, everything else is re-encoded as JPEG.
func (p *ImageProcessor) Compress(data []byte) ([]byte, *ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("decode image config: %w", err)
	}

	info := &ImageInfo{
		Width:     cfg.Width,
		Height:    cfg.Height,
		Format:    format,
		SizeBytes: int64(len(data)),
	}

	if int64(len(data)) < p.opts.Threshold {
		return data, info, nil
	}

	// Phone photos carry EXIF orientation; bake it in before resizing.
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, nil, fmt.Errorf("decode image: %w", err)
	}

	if p.opts.MaxWidth > 0 || p.opts.MaxHeight > 0 {
		img = p.resizeImage(img)
		info.Width = img.Bounds().Dx()
		info.Height = img.Bounds().Dy()
	}

	compressed, outFormat, err := p.encodeImage(img, format)
	if err != nil {
		return nil, nil, fmt.Errorf("encode image: %w", err)
	}

	info.Format = outFormat
	info.SizeBytes = int64(len(compressed))

	return compressed, info, nil
}

func (p *ImageProcessor) resizeImage(img image.Image) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	targetWidth := width
	targetHeight := height

	if p.opts.MaxWidth > 0 && width > p.opts.MaxWidth {
		ratio := float64(p.opts.MaxWidth) / float64(width)
		targetWidth = p.opts.MaxWidth
		targetHeight = int(float64(height) * ratio)
	}

	if p.opts.MaxHeight > 0 && targetHeight > p.opts.MaxHeight {
		ratio := float64(p.opts.MaxHeight) / float64(targetHeight)
		targetHeight = p.opts.MaxHeight
		targetWidth = int(float64(targetWidth) * ratio)
	}

	if targetWidth != width || targetHeight != height {
		return imaging.Resize(img, targetWidth, targetHeight, imaging.Lanczos)
	}

	return img
}

func (p *ImageProcessor) encodeImage(img image.Image, format string) ([]byte, string, error) {
	var buf bytes.Buffer

	if format == "png" {
		encoder := png.Encoder{CompressionLevel: png.BestCompression}
		err := encoder.Encode(&buf, img)
		return buf.Bytes(), "png", err
	}

	err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.opts.Quality})
	return buf.Bytes(), "jpeg", err
}
