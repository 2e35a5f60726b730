package config

import (
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/jumpmat/pkg/errors"
)

// Load reads a TOML mat file. Keys absent from the file keep their
// Reference() values; arrays such as zones and tiers replace the reference
// arrays wholesale. The result is defaulted and validated.
func Load(path string) (MetricConfig, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return MetricConfig{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "mat file %s", path)
	}
	if err != nil {
		return MetricConfig{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "open mat file %s", path)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads TOML from r on top of Reference().
func Decode(r io.Reader) (MetricConfig, error) {
	// The decoder reuses existing slice elements, so arrays start empty and
	// a file that lists zones replaces the reference zones entirely.
	cfg := Reference()
	cfg.Zones, cfg.Tiers, cfg.Markers.Positions = nil, nil, nil
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return MetricConfig{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse mat file")
	}
	ref := Reference()
	if !md.IsDefined("zones") {
		cfg.Zones = ref.Zones
	}
	if !md.IsDefined("tiers") {
		cfg.Tiers = ref.Tiers
	}
	if !md.IsDefined("markers", "positions") {
		cfg.Markers.Positions = ref.Markers.Positions
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return MetricConfig{}, errors.New(errors.ErrCodeInvalidConfig, "unknown keys in mat file: %v", undecoded)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return MetricConfig{}, err
	}
	return cfg, nil
}

// Encode writes c as TOML.
func (c MetricConfig) Encode(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode mat file")
	}
	return nil
}
