// Package namesmap normalizes raw collector identifiers to canonical ones.
//
// Specimen records attribute collections to people using inconsistent name
// strings ("Silva, J.", "J. Silva", "silva,j"). A names map resolves every
// raw variant to one canonical id before any graph is built, so that all
// counting happens on canonical identities.
//
// Lookups are strict: a raw id absent from the map is an error, never a
// silent passthrough. Mapping failures surface at graph construction time.
package namesmap

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/herblab/specnet/pkg/errors"
)

// NamesMap resolves raw collector identifiers to canonical ones.
type NamesMap interface {
	// Mapping returns the full raw-id to canonical-id table.
	Mapping() map[string]string
}

// Static is an in-memory NamesMap backed by a plain map.
type Static map[string]string

// Mapping returns the underlying table.
func (s Static) Mapping() map[string]string { return s }

// tomlFile is the on-disk layout of a names map file:
//
//	[names]
//	"Silva, J." = "silva-j"
//	"J. Silva"  = "silva-j"
type tomlFile struct {
	Names map[string]string `toml:"names"`
}

// LoadTOML reads a names map from a TOML file.
// The file must contain a [names] table mapping raw ids to canonical ids.
func LoadTOML(path string) (Static, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "names map %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var f tomlFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse names map %s", path)
	}
	if len(f.Names) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "names map %s has no [names] entries", path)
	}
	return Static(f.Names), nil
}

// Normalize maps every id in the given teams through nm.
// The result is a fresh slice; the input is not modified. A raw id absent
// from the map fails with a NAME_NOT_MAPPED error naming the id.
func Normalize(nm NamesMap, teams [][]string) ([][]string, error) {
	table := nm.Mapping()
	out := make([][]string, len(teams))
	for i, team := range teams {
		mapped := make([]string, len(team))
		for j, raw := range team {
			canonical, ok := table[raw]
			if !ok {
				return nil, errors.New(errors.ErrCodeNameNotMapped, "collector id %q has no canonical mapping", raw)
			}
			mapped[j] = canonical
		}
		out[i] = mapped
	}
	return out, nil
}
