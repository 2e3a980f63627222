package indexer

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/profilematch/internal/domain"
)

// seedProfile is one entry of the YAML seed file.
type seedProfile struct {
	ID          string           `yaml:"id"`
	Slug        string           `yaml:"slug"`
	Name        string           `yaml:"name"`
	Handle      string           `yaml:"handle"`
	Bio         string           `yaml:"bio"`
	Description string           `yaml:"description"`
	Tags        []string         `yaml:"tags"`
	Stats       map[string]int64 `yaml:"stats"`
}

type seedFile struct {
	Profiles []seedProfile `yaml:"profiles"`
}

// ReadSeed decodes a seed file. Entries keep file order; an entry without id
// falls back to its slug.
func ReadSeed(r io.Reader) ([]domain.Profile, error) {
	var f seedFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	profiles := make([]domain.Profile, len(f.Profiles))
	for i, sp := range f.Profiles {
		id := sp.ID
		if id == "" {
			id = sp.Slug
		}
		profiles[i] = domain.Profile{
			ID:          id,
			Slug:        sp.Slug,
			Name:        sp.Name,
			Handle:      sp.Handle,
			Bio:         sp.Bio,
			Description: sp.Description,
			Tags:        sp.Tags,
			Stats:       sp.Stats,
		}
	}
	return profiles, nil
}
