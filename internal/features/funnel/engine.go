package funnel

import (
	"fmt"
	"slices"
	"sort"
	"time"
)

type funnelStages struct {
	ordered  []Stage // non-terminal by order, then terminal in table order
	byID     map[string]Stage
	maxOrder int
	first    Stage
}

// Engine holds the validated stage table and implements the funnel rules.
// It is read-only after construction and safe for concurrent use.
type Engine struct {
	funnels map[FunnelType]*funnelStages
}

// NewEngine validates rows and builds the engine.
func NewEngine(rows []StageRow) (*Engine, error) {
	grouped := make(map[FunnelType][]StageRow)
	var types []FunnelType
	for _, r := range rows {
		if _, err := ParseFunnelType(string(r.FunnelType)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidStageTable, err)
		}
		if _, seen := grouped[r.FunnelType]; !seen {
			types = append(types, r.FunnelType)
		}
		grouped[r.FunnelType] = append(grouped[r.FunnelType], r)
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("%w: no stages configured", ErrInvalidStageTable)
	}

	e := &Engine{funnels: make(map[FunnelType]*funnelStages, len(types))}
	for _, ft := range types {
		fs, err := buildFunnel(ft, grouped[ft])
		if err != nil {
			return nil, err
		}
		e.funnels[ft] = fs
	}
	return e, nil
}

func buildFunnel(ft FunnelType, rows []StageRow) (*funnelStages, error) {
	fs := &funnelStages{byID: make(map[string]Stage, len(rows))}
	var open, terminal []Stage
	orders := make(map[int]string)

	for _, r := range rows {
		if r.StageID == "" {
			return nil, fmt.Errorf("%w: %s has a stage without id", ErrInvalidStageTable, ft)
		}
		if _, dup := fs.byID[r.StageID]; dup {
			return nil, fmt.Errorf("%w: %s stage %s defined twice", ErrInvalidStageTable, ft, r.StageID)
		}
		if r.DefaultProbability < 0 || r.DefaultProbability > 100 {
			return nil, fmt.Errorf("%w: %s stage %s probability %d out of range", ErrInvalidStageTable, ft, r.StageID, r.DefaultProbability)
		}
		s := Stage{ID: r.StageID, IsTerminal: r.IsTerminal, DefaultProbability: r.DefaultProbability}
		if r.IsTerminal {
			if r.DefaultProbability != 0 && r.DefaultProbability != 100 {
				return nil, fmt.Errorf("%w: %s terminal stage %s must have probability 0 or 100", ErrInvalidStageTable, ft, r.StageID)
			}
			terminal = append(terminal, s)
		} else {
			if r.Order < 1 {
				return nil, fmt.Errorf("%w: %s stage %s needs a positive order", ErrInvalidStageTable, ft, r.StageID)
			}
			if other, dup := orders[r.Order]; dup {
				return nil, fmt.Errorf("%w: %s stages %s and %s share order %d", ErrInvalidStageTable, ft, other, r.StageID, r.Order)
			}
			orders[r.Order] = r.StageID
			s.Order = r.Order
			open = append(open, s)
		}
		fs.byID[r.StageID] = s
	}

	if _, ok := orders[1]; !ok {
		return nil, fmt.Errorf("%w: %s has no stage with order 1", ErrInvalidStageTable, ft)
	}

	sort.Slice(open, func(i, j int) bool { return open[i].Order < open[j].Order })
	fs.first = open[0]
	fs.maxOrder = open[len(open)-1].Order
	fs.ordered = append(open, terminal...)
	return fs, nil
}

func (e *Engine) funnel(ft FunnelType) (*funnelStages, error) {
	fs, ok := e.funnels[ft]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunnelType, ft)
	}
	return fs, nil
}

// ListStages returns the stages of ft: ordered stages first, terminal last.
func (e *Engine) ListStages(ft FunnelType) ([]Stage, error) {
	fs, err := e.funnel(ft)
	if err != nil {
		return nil, err
	}
	return slices.Clone(fs.ordered), nil
}

// Stage looks up a stage of ft by id.
func (e *Engine) Stage(ft FunnelType, id string) (Stage, error) {
	fs, ok := e.funnels[ft]
	if !ok {
		return Stage{}, &InvalidStageError{FunnelType: ft, StageID: id}
	}
	s, ok := fs.byID[id]
	if !ok {
		return Stage{}, &InvalidStageError{FunnelType: ft, StageID: id}
	}
	return s, nil
}

// NewRecord places a draft at the first stage with that stage's probability.
func (e *Engine) NewRecord(draft FunnelRecord) (FunnelRecord, error) {
	fs, err := e.funnel(draft.FunnelType)
	if err != nil {
		return FunnelRecord{}, err
	}
	draft.StageID = fs.first.ID
	draft.Probability = fs.first.DefaultProbability
	return draft, nil
}

// Transition moves rec to target and resets its probability to the target's
// default. Any direction is allowed. rec itself is not modified.
func (e *Engine) Transition(rec FunnelRecord, target string) (FunnelRecord, error) {
	s, err := e.Stage(rec.FunnelType, target)
	if err != nil {
		return FunnelRecord{}, err
	}
	rec.StageID = s.ID
	rec.Probability = s.DefaultProbability
	return rec, nil
}

// TransitionWithProbability is Transition with an explicit probability.
// Terminal stages only accept their fixed probability.
func (e *Engine) TransitionWithProbability(rec FunnelRecord, target string, probability int) (FunnelRecord, error) {
	s, err := e.Stage(rec.FunnelType, target)
	if err != nil {
		return FunnelRecord{}, err
	}
	if probability < 0 || probability > 100 {
		return FunnelRecord{}, fmt.Errorf("%w: %d is outside 0-100", ErrInvalidProbability, probability)
	}
	if s.IsTerminal && probability != s.DefaultProbability {
		return FunnelRecord{}, fmt.Errorf("%w: stage %s is fixed at %d", ErrInvalidProbability, s.ID, s.DefaultProbability)
	}
	rec.StageID = s.ID
	rec.Probability = probability
	return rec, nil
}

// Progress is a 0-100 display aid: the terminal outcome (100 won, 0 lost) or
// the floored share of the highest ordered stage reached.
func (e *Engine) Progress(rec FunnelRecord) (int, error) {
	s, err := e.Stage(rec.FunnelType, rec.StageID)
	if err != nil {
		return 0, err
	}
	if s.IsTerminal {
		return s.DefaultProbability, nil
	}
	return s.Order * 100 / e.funnels[rec.FunnelType].maxOrder, nil
}

// IsOverdueForStage reports an open record whose expected close date is
// strictly before now. Terminal records and records without a close date are
// never overdue.
func (e *Engine) IsOverdueForStage(rec FunnelRecord, now time.Time) bool {
	if s, err := e.Stage(rec.FunnelType, rec.StageID); err == nil && s.IsTerminal {
		return false
	}
	if rec.ExpectedCloseDate == nil {
		return false
	}
	return rec.ExpectedCloseDate.Before(now)
}

// IsRegression reports a move from an ordered stage to a lower ordered one.
func (e *Engine) IsRegression(rec FunnelRecord, target string) bool {
	from, err := e.Stage(rec.FunnelType, rec.StageID)
	if err != nil || from.IsTerminal {
		return false
	}
	to, err := e.Stage(rec.FunnelType, target)
	if err != nil || to.IsTerminal {
		return false
	}
	return to.Order < from.Order
}

// Describe decorates rec for display. Records on an unknown stage get zero
// progress rather than an error so a bad row cannot break a whole list.
func (e *Engine) Describe(rec FunnelRecord, now time.Time) RecordView {
	view := RecordView{FunnelRecord: rec, Overdue: e.IsOverdueForStage(rec, now)}
	if s, err := e.Stage(rec.FunnelType, rec.StageID); err == nil {
		view.Stage = s
		view.Progress, _ = e.Progress(rec)
	}
	return view
}
