package media

type ImageInfo struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Format    string `json:"format"`
	SizeBytes int64  `json:"size_bytes"`
}

// CompressionOptions bounds reference photos before they are sent inline
// to the image model.
type CompressionOptions struct {
	Quality   int   `json:"quality"`
	MaxWidth  int   `json:"max_width"`
	MaxHeight int   `json:"max_height"`
	Threshold int64 `json:"threshold"`
}

func DefaultCompressionOptions() CompressionOptions {
	return CompressionOptions{
		Quality:   85,
		MaxWidth:  1024,
		MaxHeight: 1024,
		Threshold: 512 * 1024,
	}
}

// CollageOptions controls the VS collage shown for each drawn fight.
type CollageOptions struct {
	Width        int
	Height       int
	DividerWidth int
	Quality      int
}

func DefaultCollageOptions() CollageOptions {
	return CollageOptions{
		Width:        1200,
		Height:       600,
		DividerWidth: 12,
		Quality:      85,
	}
}
