package prompts

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Stage names one prompt template.
type Stage string

// Report stages return a raw JSON object.
const (
	StagePrioritize Stage = "prioritize"
	StageMarket     Stage = "market"
	StageBuild      Stage = "build"
	StageEvaluate   Stage = "evaluate"
	StageMaturity   Stage = "maturity"
	StageCombined   Stage = "combined"
)

// Text stages return prose.
const (
	StageIdeaSummary     Stage = "idea-summary"
	StageNarrative       Stage = "narrative"
	StageMaturitySummary Stage = "maturity-summary"
	StageExpandedIdea    Stage = "expanded-idea"
	StageStepPrioritize  Stage = "step-prioritize"
	StageStepMarket      Stage = "step-market"
	StageStepBuild       Stage = "step-build"
	StageStepEvaluate    Stage = "step-evaluate"
)

// InputPlaceholder is replaced verbatim by the caller's text in StageConfig.User.
const InputPlaceholder = "{{input}}"

// StageConfig is the configuration record for one stage.
type StageConfig struct {
	Name        Stage    `yaml:"name"`
	Description string   `yaml:"description"`
	System      string   `yaml:"system"`
	User        string   `yaml:"user"`
	JSON        bool     `yaml:"json"`
	Temperature *float64 `yaml:"temperature"`
	Model       string   `yaml:"model"`
}

type stageFile struct {
	Stages []StageConfig `yaml:"stages"`
}

//go:embed stages.yaml
var defaultStagesYAML []byte

// ParseStageConfigs decodes a YAML document with a top-level "stages" list.
func ParseStageConfigs(data []byte) ([]StageConfig, error) {
	var file stageFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse stage configs: %w", err)
	}
	if len(file.Stages) == 0 {
		return nil, fmt.Errorf("no stages defined")
	}
	return file.Stages, nil
}

// DefaultStageConfigs returns the embedded stage records.
func DefaultStageConfigs() []StageConfig {
	stages, err := ParseStageConfigs(defaultStagesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded stages.yaml is invalid: %v", err))
	}
	return stages
}

// LoadStageConfigs reads stage records from path. Records in the file replace
// the embedded record of the same name; stages it does not mention keep their
// defaults.
func LoadStageConfigs(path string) ([]StageConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stage configs: %w", err)
	}
	overrides, err := ParseStageConfigs(data)
	if err != nil {
		return nil, err
	}

	merged := DefaultStageConfigs()
	index := make(map[Stage]int, len(merged))
	for i, cfg := range merged {
		index[cfg.Name] = i
	}
	for _, cfg := range overrides {
		if i, ok := index[cfg.Name]; ok {
			merged[i] = cfg
			continue
		}
		merged = append(merged, cfg)
	}
	return merged, nil
}
