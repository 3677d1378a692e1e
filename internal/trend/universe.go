package trend

import (
	"github.com/rxtech-lab/argo-trend/internal/types"
	"github.com/rxtech-lab/argo-trend/pkg/errors"
)

// Universe is a dense arena of trend states indexed by symbol. Slots are
// assigned in insertion order, which is also the ranking tie-break order.
type Universe struct {
	states   []*State
	index    map[string]int
	excluded map[int]struct{}
}

func NewUniverse() *Universe {
	return &Universe{
		index:    make(map[string]int),
		excluded: make(map[int]struct{}),
	}
}

// Add registers state and returns its slot.
func (u *Universe) Add(state *State) (int, error) {
	if state == nil {
		return -1, errors.New(errors.ErrCodeMissingParameter, "cannot add a nil trend state")
	}

	if _, ok := u.index[state.Symbol()]; ok {
		return -1, errors.Newf(errors.ErrCodeDuplicateInstrument, "instrument %s is already tracked", state.Symbol())
	}

	slot := len(u.states)
	u.states = append(u.states, state)
	u.index[state.Symbol()] = slot

	return slot, nil
}

func (u *Universe) Get(symbol string) (*State, error) {
	slot, ok := u.index[symbol]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeUnknownInstrument, "instrument %s is not tracked", symbol)
	}

	return u.states[slot], nil
}

func (u *Universe) Slot(symbol string) (int, bool) {
	slot, ok := u.index[symbol]

	return slot, ok
}

func (u *Universe) At(slot int) *State {
	return u.states[slot]
}

func (u *Universe) Len() int {
	return len(u.states)
}

// States returns the states in universe order.
func (u *Universe) States() []*State {
	out := make([]*State, len(u.states))
	copy(out, u.states)

	return out
}

func (u *Universe) Symbols() []string {
	out := make([]string, len(u.states))
	for i, state := range u.states {
		out[i] = state.Symbol()
	}

	return out
}

// BeginStep clears the exclusions of the previous step.
func (u *Universe) BeginStep() {
	clear(u.excluded)
}

// Exclude marks symbol as not eligible for new entries in the current step.
func (u *Universe) Exclude(symbol string) error {
	slot, ok := u.index[symbol]
	if !ok {
		return errors.Newf(errors.ErrCodeUnknownInstrument, "instrument %s is not tracked", symbol)
	}

	u.excluded[slot] = struct{}{}

	return nil
}

func (u *Universe) IsExcluded(symbol string) bool {
	slot, ok := u.index[symbol]
	if !ok {
		return false
	}

	_, excluded := u.excluded[slot]

	return excluded
}

// Held counts instruments whose last known holding is invested. Instruments
// without a reading this step keep the holding of their last update.
func (u *Universe) Held() int {
	held := 0

	for _, state := range u.states {
		if state.Holding().IsInvested() {
			held++
		}
	}

	return held
}

// Candidates projects every state for the ranking pass, in universe order.
func (u *Universe) Candidates() []types.RankedCandidate {
	out := make([]types.RankedCandidate, len(u.states))

	for slot, state := range u.states {
		_, excluded := u.excluded[slot]
		out[slot] = types.RankedCandidate{
			Symbol:    state.Symbol(),
			Slot:      slot,
			Direction: state.Direction(),
			Ready:     state.IsReady(),
			Eligible:  !excluded,
		}
	}

	return out
}
