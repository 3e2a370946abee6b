package visibility

import (
	"go-crm-funnel/internal/config"

	"go.uber.org/zap"
)

// NewGateFromConfig builds the gate from VISIBILITY_FILE or the built-in matrix.
func NewGateFromConfig(cfg *config.Config, logger *zap.Logger) (*Gate, error) {
	matrix := DefaultMatrix()
	if cfg.VisibilityFile != "" {
		loaded, err := LoadMatrixFile(cfg.VisibilityFile)
		if err != nil {
			return nil, err
		}
		matrix = loaded
		logger.Info("Loaded visibility matrix", zap.String("file", cfg.VisibilityFile))
	}
	return NewGate(matrix)
}
