package prompts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bizmatters/agent-builder/success-blueprint/internal/models"
)

// ErrUnknownStage is returned when no record exists for the requested stage.
var ErrUnknownStage = errors.New("unknown prompt stage")

// Builder maps (stage, text) to a two-message prompt.
type Builder struct {
	stages map[Stage]StageConfig
}

// NewBuilder validates the records and indexes them by stage name.
func NewBuilder(configs []StageConfig) (*Builder, error) {
	stages := make(map[Stage]StageConfig, len(configs))
	for _, cfg := range configs {
		if cfg.Name == "" {
			return nil, fmt.Errorf("stage config without a name")
		}
		if _, dup := stages[cfg.Name]; dup {
			return nil, fmt.Errorf("duplicate stage config %q", cfg.Name)
		}
		if strings.TrimSpace(cfg.System) == "" {
			return nil, fmt.Errorf("stage %q has an empty system prompt", cfg.Name)
		}
		if !strings.Contains(cfg.User, InputPlaceholder) {
			return nil, fmt.Errorf("stage %q user template lacks %s", cfg.Name, InputPlaceholder)
		}
		stages[cfg.Name] = cfg
	}
	return &Builder{stages: stages}, nil
}

// NewDefaultBuilder builds from the embedded records.
func NewDefaultBuilder() *Builder {
	b, err := NewBuilder(DefaultStageConfigs())
	if err != nil {
		panic(fmt.Sprintf("embedded stage configs are invalid: %v", err))
	}
	return b
}

// Config returns the record for stage.
func (b *Builder) Config(stage Stage) (StageConfig, bool) {
	cfg, ok := b.stages[stage]
	return cfg, ok
}

// Build returns the system message followed by the user message embedding text.
func (b *Builder) Build(stage Stage, text string) ([]models.ChatMessage, error) {
	cfg, ok := b.stages[stage]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStage, stage)
	}
	return []models.ChatMessage{
		{Role: models.RoleSystem, Content: cfg.System},
		{Role: models.RoleUser, Content: strings.ReplaceAll(cfg.User, InputPlaceholder, text)},
	}, nil
}
