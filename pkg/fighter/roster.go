package fighter

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed roster.yml
var defaultRosterYAML []byte

type RosterEntry struct {
	Code        string `yaml:"code"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description"`
}

// Roster maps fighter codes to their display name and description.
type Roster map[string]RosterEntry

type rosterFile struct {
	Fighters []RosterEntry `yaml:"fighters"`
}

func parseRoster(data []byte) (Roster, error) {
	var file rosterFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse roster: %w", err)
	}
	roster := make(Roster, len(file.Fighters))
	for _, entry := range file.Fighters {
		if entry.Code == "" {
			continue
		}
		roster[entry.Code] = entry
	}
	return roster, nil
}

// DefaultRoster returns the built-in six-fighter roster.
func DefaultRoster() Roster {
	roster, err := parseRoster(defaultRosterYAML)
	if err != nil {
		panic(err)
	}
	return roster
}

// LoadRoster reads a roster file, falling back to the built-in roster when
// the file does not exist.
func LoadRoster(path string) (Roster, error) {
	if path == "" {
		return DefaultRoster(), nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultRoster(), nil
	}
	if err != nil {
		return nil, err
	}
	return parseRoster(data)
}

// DefaultDisplayName is used when neither the roster nor the asset
// directory names a fighter.
func DefaultDisplayName(code string) string {
	if code == "" {
		return "Пітух"
	}
	return "Пітух " + strings.ToUpper(code[:1]) + code[1:]
}
