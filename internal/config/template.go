package config

import (
	"fmt"
	"os"

	"github.com/arkidots/pipeline-api/internal/domain"
	"github.com/spf13/viper"
)

// LoadStageTemplate reads the ordered pipeline definition from the
// configured YAML file. A missing or empty path falls back to the built-in
// default template; a present but malformed file is an error.
//
// Expected file shape:
//
//	stages:
//	  - name: Proposal Shared
//	    milestone: Milestone 1
//	  - name: Proposal Approved
//	    milestone: Milestone 1
//	    notes: By Client
func LoadStageTemplate(path string) ([]domain.StageTemplate, error) {
	if path == "" {
		return domain.DefaultStageTemplate, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return domain.DefaultStageTemplate, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read pipeline template %s: %w", path, err)
	}

	var parsed struct {
		Stages []domain.StageTemplate `mapstructure:"stages"`
	}
	if err := v.Unmarshal(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline template %s: %w", path, err)
	}
	if len(parsed.Stages) == 0 {
		return nil, fmt.Errorf("pipeline template %s defines no stages", path)
	}

	for i, s := range parsed.Stages {
		if s.Name == "" {
			return nil, fmt.Errorf("pipeline template %s: stage %d has no name", path, i)
		}
	}

	return parsed.Stages, nil
}
