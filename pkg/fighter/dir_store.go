package fighter

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cockfight/pkg/media"
)

const (
	roosterFileName     = "image.png"
	descriptionFileName = "description.txt"
)

// ownerPatterns are tried in order; the first match wins.
var ownerPatterns = []string{
	"owner.*",
	"telegram-*.jpg",
	"image copy*.png",
}

// DirStore reads fighters from <dir>/<code>/. Each directory needs image.png
// (the rooster) and an owner photo matching one of ownerPatterns.
type DirStore struct {
	dir       string
	roster    Roster
	processor *media.ImageProcessor
}

// NewDirStore creates a store rooted at dir. processor may be nil, in which
// case photos are passed through unchanged.
func NewDirStore(dir string, roster Roster, processor *media.ImageProcessor) *DirStore {
	if roster == nil {
		roster = DefaultRoster()
	}
	return &DirStore{
		dir:       dir,
		roster:    roster,
		processor: processor,
	}
}

func (s *DirStore) Codes() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read fighters directory %s: %w", s.dir, err)
	}

	var codes []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		codes = append(codes, entry.Name())
	}
	sort.Strings(codes)
	return codes, nil
}

func (s *DirStore) LoadFighterAssets(code string) (*Assets, error) {
	fighterDir := filepath.Join(s.dir, code)
	if info, err := os.Stat(fighterDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("fighter directory %s: %w", fighterDir, ErrAssetNotFound)
	}

	rooster, err := s.readAsset(filepath.Join(fighterDir, roosterFileName))
	if err != nil {
		return nil, fmt.Errorf("rooster image: %w", err)
	}

	ownerPath, err := findOwnerPhoto(fighterDir)
	if err != nil {
		return nil, err
	}
	owner, err := s.readAsset(ownerPath)
	if err != nil {
		return nil, fmt.Errorf("owner image: %w", err)
	}

	entry := s.roster[code]
	description := entry.Description
	if data, err := os.ReadFile(filepath.Join(fighterDir, descriptionFileName)); err == nil {
		if text := strings.TrimSpace(string(data)); text != "" {
			description = text
		}
	}
	if description == "" {
		description = "Mysterious fighter"
	}

	return &Assets{
		DisplayName:  entry.DisplayName,
		Description:  description,
		OwnerImage:   *owner,
		RoosterImage: *rooster,
	}, nil
}

func findOwnerPhoto(fighterDir string) (string, error) {
	for _, pattern := range ownerPatterns {
		matches, err := filepath.Glob(filepath.Join(fighterDir, pattern))
		if err != nil {
			return "", err
		}
		sort.Strings(matches)
		for _, match := range matches {
			if media.IsImageFile(match) {
				return match, nil
			}
		}
	}
	return "", fmt.Errorf("owner photo in %s: %w", fighterDir, ErrAssetNotFound)
}

func (s *DirStore) readAsset(path string) (*Asset, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", path, ErrAssetNotFound)
	}
	if err != nil {
		return nil, err
	}

	mimeType := media.MIMEType(media.DetectImageFormat(path))
	if mimeType == "" {
		return nil, fmt.Errorf("unsupported image type: %s", path)
	}

	if s.processor != nil {
		compressed, info, err := s.processor.Compress(data)
		if err != nil {
			log.Printf("[Fighters] Keeping original %s: %v", path, err)
		} else {
			data = compressed
			mimeType = media.MIMEType(info.Format)
		}
	}

	return &Asset{
		Name:     filepath.Base(path),
		MIMEType: mimeType,
		Data:     data,
	}, nil
}
