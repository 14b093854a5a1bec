package agent

import (
	"fmt"
	"os"

	"github.com/The-Promised-Neverland/estatus/internal/models"
	"gopkg.in/yaml.v3"
)

// Profile carries the registry hints a node sends with every report. Only the
// first report of a node registers them; later ones refresh the name.
type Profile struct {
	Name           string       `yaml:"name"`
	Type           string       `yaml:"type"`
	Loc            string       `yaml:"loc"`
	Code           string       `yaml:"code"`
	OS             string       `yaml:"os"`
	Price          string       `yaml:"price"`
	ExpireDate     string       `yaml:"expire_date"`
	BandwidthLimit string       `yaml:"bandwidth_limit"`
	Tags           []models.Tag `yaml:"tags"`
}

// LoadProfile reads a YAML profile. A missing file yields an empty profile.
func LoadProfile(path string) (*Profile, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Profile{}, nil
	}
	if err != nil {
		return nil, err
	}
	var p Profile
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return &p, nil
}

// Apply copies the profile into r, leaving fields the profile does not set.
func (p *Profile) Apply(r *models.Report) {
	if p == nil {
		return
	}
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&r.Name, p.Name)
	set(&r.Type, p.Type)
	set(&r.Loc, p.Loc)
	set(&r.Code, p.Code)
	set(&r.OS, p.OS)
	set(&r.Price, p.Price)
	set(&r.ExpireDate, p.ExpireDate)
	if p.BandwidthLimit != "" {
		r.BandwidthLimit = models.BandwidthLimit(p.BandwidthLimit)
	}
	if len(p.Tags) > 0 {
		r.Tags = p.Tags
	}
}
