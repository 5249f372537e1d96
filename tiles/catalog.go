package tiles

import (
	"fmt"
	"os"

	"github.com/cespare/xxhash"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type catalogTile struct {
	Name string   `yaml:"name"`
	Rows []string `yaml:"rows"`
}

type catalogFile struct {
	Tiles []catalogTile `yaml:"tiles"`
}

// ParseCatalog reads a YAML tile catalog and assigns stable ids by catalog
// order. Every tile starts unrotated with all cells unowned.
func ParseCatalog(data []byte) ([]*Tile, error) {
	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("unmarshaling tile catalog: %w", err)
	}
	if len(cf.Tiles) == 0 {
		return nil, fmt.Errorf("tile catalog contains no tiles")
	}
	catalog := make([]*Tile, 0, len(cf.Tiles))
	for i, ct := range cf.Tiles {
		shape, err := parseShape(ct.Rows)
		if err != nil {
			return nil, fmt.Errorf("tile %d (%v): %w", i, ct.Name, err)
		}
		catalog = append(catalog, NewTile(i, ct.Name, shape))
	}
	return catalog, nil
}

func parseShape(rows []string) ([][]bool, error) {
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("no shape rows")
	}
	islands := 0
	shape := make([][]bool, n)
	for r, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("shape is not square: row %d has %d cells, want %d", r, len(row), n)
		}
		shape[r] = make([]bool, n)
		for c, ch := range row {
			switch ch {
			case '1':
				shape[r][c] = true
				islands++
			case '0':
			default:
				return nil, fmt.Errorf("bad shape character %q at (%d,%d)", ch, r, c)
			}
		}
	}
	if islands == 0 {
		return nil, fmt.Errorf("shape has no island cells")
	}
	return shape, nil
}

// LoadCatalog reads a tile catalog from disk.
func LoadCatalog(path string) ([]*Tile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tile catalog: %w", err)
	}
	catalog, err := ParseCatalog(data)
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", path).Int("tiles", len(catalog)).
		Uint64("fingerprint", xxhash.Sum64(data)).
		Msg("loaded tile catalog")
	return catalog, nil
}

// LoadCatalogOrBuiltin loads a catalog from path, falling back to the
// built-in shape set when the path is empty or the load fails. The engine
// must always be able to start.
func LoadCatalogOrBuiltin(path string) []*Tile {
	if path == "" {
		log.Debug().Msg("no tile catalog configured; using built-in set")
		return BuiltinSet()
	}
	catalog, err := LoadCatalog(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("tile catalog unavailable; using built-in set")
		return BuiltinSet()
	}
	return catalog
}
