package media

import (
	"bytes"
	"image"
	"strings"
)

func DetectImageFormat(filename string) string {
	ext := strings.ToLower(filename)

	switch {
	case strings.HasSuffix(ext, ".jpg") || strings.HasSuffix(ext, ".jpeg"):
		return "jpeg"
	case strings.HasSuffix(ext, ".png"):
		return "png"
	case strings.HasSuffix(ext, ".gif"):
		return "gif"
	case strings.HasSuffix(ext, ".webp"):
		return "webp"
	default:
		return ""
	}
}

// MIMEType maps a format name from DetectImageFormat or image.Decode to
// the MIME type Gemini expects for inline data.
func MIMEType(format string) string {
	switch format {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return ""
	}
}

func IsImageFile(filename string) bool {
	return DetectImageFormat(filename) != ""
}

// SniffFormat reads the image header of data. It returns "" when the data is
// not a registered image format.
func SniffFormat(data []byte) string {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	return format
}

// Extension is the file extension for a format name, ".jpg" when unknown.
func Extension(format string) string {
	switch format {
	case "png", "gif", "webp":
		return "." + format
	default:
		return ".jpg"
	}
}
