package fighter

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"cockfight/pkg/media"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sixCodes = []string{"petro", "oleg", "vadym", "roma", "andrew_3", "bohdan"}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

// writeFighterDir lays out a fighter the way the event's data/images tree does.
func writeFighterDir(t *testing.T, root, code, ownerFile string) {
	t.Helper()
	dir := filepath.Join(root, code)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "image.png"), tinyPNG(t), 0o644))
	if ownerFile != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, ownerFile), tinyPNG(t), 0o644))
	}
}

func TestLoad_DirStore(t *testing.T) {
	root := t.TempDir()
	for _, code := range sixCodes {
		writeFighterDir(t, root, code, "telegram-123.jpg")
	}
	// andrew_3 only has the "image copy" fallback
	require.NoError(t, os.Remove(filepath.Join(root, "andrew_3", "telegram-123.jpg")))
	require.NoError(t, os.WriteFile(filepath.Join(root, "andrew_3", "image copy.png"), tinyPNG(t), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "petro", "description.txt"), []byte("  Дзен.  \n"), 0o644))

	store := NewDirStore(root, nil, media.NewImageProcessor(media.DefaultCompressionOptions()))
	fighters, err := Load(store)
	require.NoError(t, err)
	require.Len(t, fighters, RosterSize)

	var codes []string
	for _, f := range fighters {
		codes = append(codes, f.Code)
		assert.NotEmpty(t, f.OwnerImage.Data)
		assert.NotEmpty(t, f.RoosterImage.Data)
		assert.Equal(t, "image/png", f.RoosterImage.MIMEType)
	}
	assert.Equal(t, []string{"andrew_3", "bohdan", "oleg", "petro", "roma", "vadym"}, codes)

	assert.Equal(t, "Пітух Три Андрія", fighters[0].DisplayName)
	assert.Equal(t, "image copy.png", fighters[0].OwnerImage.Name)
	assert.Equal(t, "telegram-123.jpg", fighters[1].OwnerImage.Name)
	// the processor sniffs the real format, the extension lies
	assert.Equal(t, "image/png", fighters[1].OwnerImage.MIMEType)
	assert.Equal(t, "Дзен.", fighters[3].Description)
	assert.Contains(t, fighters[4].Description, "Балі")
}

func TestLoad_TooFewFighters(t *testing.T) {
	root := t.TempDir()
	for _, code := range sixCodes[:5] {
		writeFighterDir(t, root, code, "owner.png")
	}

	_, err := Load(NewDirStore(root, nil, nil))
	require.Error(t, err)

	var regErr *RegistryError
	require.True(t, errors.As(err, &regErr))
	assert.Contains(t, err.Error(), "expected 6 distinct fighters, found 5")
}

func TestLoad_MissingOwnerPhoto(t *testing.T) {
	root := t.TempDir()
	for _, code := range sixCodes {
		owner := "owner.png"
		if code == "oleg" {
			owner = ""
		}
		writeFighterDir(t, root, code, owner)
	}

	_, err := Load(NewDirStore(root, nil, nil))
	require.Error(t, err)

	var regErr *RegistryError
	require.True(t, errors.As(err, &regErr))
	assert.Equal(t, "oleg", regErr.Code)
	assert.True(t, errors.Is(err, ErrAssetNotFound))
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, err := Load(NewDirStore(filepath.Join(t.TempDir(), "nope"), nil, nil))
	var regErr *RegistryError
	assert.True(t, errors.As(err, &regErr))
}

type memoryStore struct {
	codes  []string
	assets map[string]*Assets
}

func (m *memoryStore) Codes() ([]string, error) {
	return m.codes, nil
}

func (m *memoryStore) LoadFighterAssets(code string) (*Assets, error) {
	a, ok := m.assets[code]
	if !ok {
		return nil, ErrAssetNotFound
	}
	return a, nil
}

func TestLoad_DeduplicatesAndDefaultsDisplayName(t *testing.T) {
	store := &memoryStore{assets: map[string]*Assets{}}
	for _, code := range sixCodes {
		store.codes = append(store.codes, code, code)
		store.assets[code] = &Assets{
			Description:  code + " description",
			OwnerImage:   Asset{Name: "owner.png", MIMEType: "image/png", Data: []byte{1}},
			RoosterImage: Asset{Name: "image.png", MIMEType: "image/png", Data: []byte{2}},
		}
	}

	fighters, err := Load(store)
	require.NoError(t, err)
	require.Len(t, fighters, RosterSize)
	assert.Equal(t, "Пітух Petro", fighters[3].DisplayName)
}

func TestLoad_AssetNotFound(t *testing.T) {
	store := &memoryStore{codes: sixCodes, assets: map[string]*Assets{}}
	_, err := Load(store)
	assert.True(t, errors.Is(err, ErrAssetNotFound))
}

func TestLoadRoster(t *testing.T) {
	roster, err := LoadRoster(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Len(t, roster, RosterSize)
	assert.Equal(t, "Пітух Олег", roster["oleg"].DisplayName)

	path := filepath.Join(t.TempDir(), "roster.yml")
	require.NoError(t, os.WriteFile(path, []byte("fighters:\n  - code: petro\n    display_name: Petro\n    description: calm\n"), 0o644))
	roster, err = LoadRoster(path)
	require.NoError(t, err)
	assert.Equal(t, RosterEntry{Code: "petro", DisplayName: "Petro", Description: "calm"}, roster["petro"])
}
