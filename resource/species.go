package resource

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/FortunateNaruto/pokemon-ranger/game/hiddenpower"
	"github.com/FortunateNaruto/pokemon-ranger/game/stat"
)

// rawSpecies is the on-disk shape of one species entry. Base stat rows
// are stat-line strings and types are "A/B" strings, matching the
// pokedex export format.
type rawSpecies struct {
	Name       string   `json:"name"`
	Generation int      `json:"generation"`
	Types      string   `json:"types"`
	BaseStats  []string `json:"baseStats"` // one stat line per evolution stage
}

type speciesFile struct {
	Species []*rawSpecies `json:"species"`
}

// Species is a loaded species definition with parsed stat rows.
type Species struct {
	Name       string
	Generation int
	Types      []string
	// BaseStats holds one base stat row per evolution stage, in
	// evolution order.
	BaseStats []stat.Values
}

// SpeciesLoader reads and holds the species definition file.
type SpeciesLoader struct {
	Path    string
	species map[string]*Species
	logger  *zap.Logger
}

// NewLoader creates a SpeciesLoader for the given species JSON file.
func NewLoader(path string, logger *zap.Logger) *SpeciesLoader {
	return &SpeciesLoader{
		Path:    path,
		species: make(map[string]*Species),
		logger:  logger,
	}
}

// Load reads the species file. Entries with malformed stat lines or
// unknown type tokens are skipped with a warning; one bad entry does
// not poison the rest of the file.
func (sl *SpeciesLoader) Load() error {
	data, err := os.ReadFile(sl.Path)
	if err != nil {
		return fmt.Errorf("resource: read %s: %w", sl.Path, err)
	}
	var file speciesFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("resource: parse %s: %w", sl.Path, err)
	}

	for _, raw := range file.Species {
		sp, ok := sl.parseSpecies(raw)
		if !ok {
			continue
		}
		sl.species[strings.ToLower(sp.Name)] = sp
	}
	sl.logger.Info("species loaded",
		zap.String("path", sl.Path),
		zap.Int("count", len(sl.species)))
	return nil
}

func (sl *SpeciesLoader) parseSpecies(raw *rawSpecies) (*Species, bool) {
	if raw == nil || raw.Name == "" {
		return nil, false
	}

	types := hiddenpower.ParseTypeDefinition(raw.Types, func(token string) {
		sl.logger.Warn("species has unknown type token",
			zap.String("species", raw.Name),
			zap.String("token", token))
	})
	if types == nil {
		return nil, false
	}

	sp := &Species{
		Name:       raw.Name,
		Generation: raw.Generation,
		Types:      types,
	}
	for i, line := range raw.BaseStats {
		bad := false
		values := stat.ParseStatLine(line, func(msg string) {
			bad = true
			sl.logger.Warn("species has malformed stat line",
				zap.String("species", raw.Name),
				zap.Int("evolution", i),
				zap.String("detail", msg))
		})
		if bad {
			return nil, false
		}
		sp.BaseStats = append(sp.BaseStats, values)
	}
	if len(sp.BaseStats) == 0 {
		return nil, false
	}
	return sp, true
}

// ByName returns the species with the given name (case-insensitive), or nil.
func (sl *SpeciesLoader) ByName(name string) *Species {
	return sl.species[strings.ToLower(name)]
}

// Names returns the loaded species names, sorted.
func (sl *SpeciesLoader) Names() []string {
	names := make([]string, 0, len(sl.species))
	for _, sp := range sl.species {
		names = append(names, sp.Name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of loaded species.
func (sl *SpeciesLoader) Count() int {
	return len(sl.species)
}
