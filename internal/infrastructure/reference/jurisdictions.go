// Package reference loads the static fiscal reference data: the state
// rate table and the optional demo catalog.
package reference

import (
	"embed"
	"fmt"
	"os"

	"github.com/erp/taxsim/internal/domain/fiscal"
	"github.com/erp/taxsim/internal/domain/shared/valueobject"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var embedded embed.FS

const (
	embeddedJurisdictions = "data/jurisdictions.yaml"
	embeddedCatalogSeed   = "data/catalog_seed.yaml"
)

type jurisdictionFile struct {
	Jurisdictions []jurisdictionEntry `yaml:"jurisdictions"`
}

type jurisdictionEntry struct {
	ID                       string `yaml:"id"`
	Name                     string `yaml:"name"`
	Region                   string `yaml:"region"`
	InternalRate             string `yaml:"internal_rate"`
	InterstateSouthSoutheast string `yaml:"interstate_south_southeast"`
	InterstateOther          string `yaml:"interstate_other"`
}

// LoadJurisdictions reads the table from path, or the embedded table when
// path is empty.
func LoadJurisdictions(path string) (*fiscal.JurisdictionTable, error) {
	data, err := readSource(path, embeddedJurisdictions)
	if err != nil {
		return nil, err
	}
	return ParseJurisdictions(data)
}

// ParseJurisdictions decodes a YAML jurisdiction table
func ParseJurisdictions(data []byte) (*fiscal.JurisdictionTable, error) {
	var file jurisdictionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse jurisdiction table: %w", err)
	}
	if len(file.Jurisdictions) == 0 {
		return nil, fmt.Errorf("jurisdiction table is empty")
	}

	entries := make([]fiscal.Jurisdiction, 0, len(file.Jurisdictions))
	for i, e := range file.Jurisdictions {
		j, err := e.toDomain()
		if err != nil {
			return nil, fmt.Errorf("jurisdiction #%d: %w", i+1, err)
		}
		entries = append(entries, j)
	}
	return fiscal.NewJurisdictionTable(entries)
}

func (e jurisdictionEntry) toDomain() (fiscal.Jurisdiction, error) {
	internal, err := valueobject.NewPercentFromString(e.InternalRate)
	if err != nil {
		return fiscal.Jurisdiction{}, fmt.Errorf("internal_rate of %s: %w", e.ID, err)
	}
	southSoutheast, err := optionalPercent(e.InterstateSouthSoutheast)
	if err != nil {
		return fiscal.Jurisdiction{}, fmt.Errorf("interstate_south_southeast of %s: %w", e.ID, err)
	}
	other, err := optionalPercent(e.InterstateOther)
	if err != nil {
		return fiscal.Jurisdiction{}, fmt.Errorf("interstate_other of %s: %w", e.ID, err)
	}
	return fiscal.NewJurisdiction(e.ID, e.Name, fiscal.Region(e.Region), internal, southSoutheast, other)
}

func optionalPercent(value string) (valueobject.Percent, error) {
	if value == "" {
		return valueobject.Percent{}, nil
	}
	return valueobject.NewPercentFromString(value)
}

func readSource(path, fallback string) ([]byte, error) {
	if path == "" {
		return embedded.ReadFile(fallback)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
