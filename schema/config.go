package schema

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk form of a schema:
//
//	tracks:
//	  Blocks: [p, h1, h2]
//	  ListItems: [bullet]
type Config struct {
	Tracks map[string][]string `yaml:"tracks" validate:"required,min=1,dive,min=1,dive,required,alphanum"`
}

var validate = validator.New()

// Parse decodes and validates a YAML schema config.
func Parse(data []byte) (*Schema, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg.Schema()
}

// Load reads a YAML schema config from path.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Schema validates the config and builds the schema it describes.
func (cfg Config) Schema() (*Schema, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	tracks := make(map[TrackType][]string, len(cfg.Tracks))
	for name, tags := range cfg.Tracks {
		track, err := ParseTrackType(name)
		if err != nil {
			return nil, err
		}
		tracks[track] = tags
	}

	return New(tracks)
}
