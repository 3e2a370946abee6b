package funnel

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownFunnelType  = errors.New("unknown funnel type")
	ErrInvalidProbability = errors.New("invalid probability")
	ErrInvalidStageTable  = errors.New("invalid stage table")
)

// InvalidStageError is returned when a stage id is not part of the record's
// funnel.
type InvalidStageError struct {
	FunnelType FunnelType
	StageID    string
}

func (e *InvalidStageError) Error() string {
	return fmt.Sprintf("stage %q is not defined for funnel %s", e.StageID, e.FunnelType)
}

// ErrInvalidRecord reports a record draft failing basic validation.
var ErrInvalidRecord = errors.New("invalid record")
