// Package fighter holds the fixed roster of six owner+rooster contestants and
// the reference photos used when generating their scenes.
package fighter

import (
	"errors"
	"fmt"
	"log"
	"sort"
)

// RosterSize is the only roster size the event supports.
const RosterSize = 6

// ErrAssetNotFound is returned by a Store when a fighter code or one of its
// required files is absent.
var ErrAssetNotFound = errors.New("fighter asset not found")

// Asset is an opaque reference image. Data is never reinterpreted by the core.
type Asset struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Assets is what a Store returns for a single fighter code.
type Assets struct {
	DisplayName  string
	Description  string
	OwnerImage   Asset
	RoosterImage Asset
}

// Fighter is immutable once loaded and shared by pointer across pairings
// and conferences.
type Fighter struct {
	Code         string
	DisplayName  string
	Description  string
	OwnerImage   Asset
	RoosterImage Asset
}

func (f *Fighter) String() string {
	return f.Code
}

// References returns the owner and rooster photos in the order the image
// model receives them.
func (f *Fighter) References() []Asset {
	return []Asset{f.RoosterImage, f.OwnerImage}
}

// Store loads fighter assets from wherever they live.
type Store interface {
	Codes() ([]string, error)
	LoadFighterAssets(code string) (*Assets, error)
}

// RegistryError is fatal at startup: the roster cannot be assembled.
type RegistryError struct {
	Code string
	Err  error
}

func (e *RegistryError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("fighter registry: %v", e.Err)
	}
	return fmt.Sprintf("fighter registry: %s: %v", e.Code, e.Err)
}

func (e *RegistryError) Unwrap() error {
	return e.Err
}

// Load assembles the roster from store. It requires exactly RosterSize
// distinct codes, each with all of its assets, and returns the fighters
// sorted by code so shuffles start from a stable base sequence.
func Load(store Store) ([]*Fighter, error) {
	codes, err := store.Codes()
	if err != nil {
		return nil, &RegistryError{Err: err}
	}

	seen := make(map[string]bool, len(codes))
	unique := make([]string, 0, len(codes))
	for _, code := range codes {
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		unique = append(unique, code)
	}
	sort.Strings(unique)

	if len(unique) != RosterSize {
		return nil, &RegistryError{Err: fmt.Errorf("expected %d distinct fighters, found %d", RosterSize, len(unique))}
	}

	fighters := make([]*Fighter, 0, RosterSize)
	for _, code := range unique {
		assets, err := store.LoadFighterAssets(code)
		if err != nil {
			return nil, &RegistryError{Code: code, Err: err}
		}
		if len(assets.OwnerImage.Data) == 0 {
			return nil, &RegistryError{Code: code, Err: fmt.Errorf("owner image: %w", ErrAssetNotFound)}
		}
		if len(assets.RoosterImage.Data) == 0 {
			return nil, &RegistryError{Code: code, Err: fmt.Errorf("rooster image: %w", ErrAssetNotFound)}
		}

		displayName := assets.DisplayName
		if displayName == "" {
			displayName = DefaultDisplayName(code)
		}

		fighters = append(fighters, &Fighter{
			Code:         code,
			DisplayName:  displayName,
			Description:  assets.Description,
			OwnerImage:   assets.OwnerImage,
			RoosterImage: assets.RoosterImage,
		})
		log.Printf("[Fighters] Loaded %s (owner=%d bytes, rooster=%d bytes)", code, len(assets.OwnerImage.Data), len(assets.RoosterImage.Data))
	}

	log.Printf("[Fighters] Loaded %d fighters", len(fighters))
	return fighters, nil
}
