package funnel

import (
	"go-crm-funnel/internal/config"

	"go.uber.org/zap"
)

// NewEngineFromConfig loads STAGES_FILE when set, the built-in table otherwise.
func NewEngineFromConfig(cfg *config.Config, logger *zap.Logger) (*Engine, error) {
	rows := DefaultStageTable()
	if cfg.StagesFile != "" {
		loaded, err := LoadStageFile(cfg.StagesFile)
		if err != nil {
			return nil, err
		}
		rows = loaded
		logger.Info("Loaded stage table", zap.String("file", cfg.StagesFile), zap.Int("rows", len(rows)))
	}
	return NewEngine(rows)
}
