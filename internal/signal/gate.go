package signal

import (
	"github.com/rxtech-lab/argo-trend/internal/crossover"
	"github.com/rxtech-lab/argo-trend/internal/types"
	"github.com/rxtech-lab/argo-trend/pkg/errors"
)

// GateKind tags the variant held by a Gate.
type GateKind string

const (
	// GateKindCrossover passes when any configured line pair crossed in the requested polarity
	GateKindCrossover GateKind = "crossover"
	// GateKindBreakout passes when the price is strictly beyond every envelope edge
	GateKindBreakout GateKind = "breakout"
	// GateKindStrength passes when a directional strength value exceeds a threshold and its components agree
	GateKindStrength GateKind = "strength"
	// GateKindLevel passes when the price is on the configured side of a reference level
	GateKindLevel GateKind = "level"
	// GateKindParticipation passes when current activity exceeds its trailing average
	GateKindParticipation GateKind = "participation"
)

// Side is a position relative to a reference level.
type Side string

const (
	SideAbove Side = "above"
	SideBelow Side = "below"
)

// Opposite returns the mirrored side.
func (s Side) Opposite() Side {
	if s == SideAbove {
		return SideBelow
	}

	return SideAbove
}

type CrossoverParams struct {
	Pairs []crossover.LinePair `yaml:"pairs" json:"pairs" jsonschema:"title=Line pairs,description=Pairs monitored for a cross" validate:"required,min=1,dive"`
	// AcceptNeutral lets a near-cross within tolerance pass the gate
	AcceptNeutral bool `yaml:"accept_neutral" json:"accept_neutral" jsonschema:"title=Accept neutral,default=false"`
}

type BreakoutParams struct {
	Edges []types.LineName `yaml:"edges" json:"edges" jsonschema:"title=Envelope edges,description=Lines bounding the envelope (e.g. senkou_a and senkou_b)" validate:"required,min=1,dive,required"`
}

type StrengthParams struct {
	Threshold float64        `yaml:"threshold" json:"threshold" jsonschema:"title=Threshold,minimum=0,default=20" validate:"gte=0"`
	Strength  types.LineName `yaml:"strength" json:"strength" jsonschema:"title=Strength line,default=adx" validate:"required"`
	Positive  types.LineName `yaml:"positive" json:"positive" jsonschema:"title=Positive component,default=plus_di" validate:"required"`
	Negative  types.LineName `yaml:"negative" json:"negative" jsonschema:"title=Negative component,default=minus_di" validate:"required"`
}

type LevelParams struct {
	Line types.LineName `yaml:"line" json:"line" jsonschema:"title=Reference level,default=vwap" validate:"required"`
	// BullishSide is where the price must be for the bullish branch; bearish uses the opposite side
	BullishSide Side `yaml:"bullish_side" json:"bullish_side" jsonschema:"title=Bullish side,enum=above,enum=below,default=below" validate:"omitempty,oneof=above below"`
}

type ParticipationParams struct {
	AverageLength int `yaml:"average_length" json:"average_length" jsonschema:"title=Average length,minimum=1,default=250" validate:"gte=1"`
	Lookback      int `yaml:"lookback" json:"lookback" jsonschema:"title=Lookback,minimum=0,default=5" validate:"gte=0"`
}

// Gate is a closed variant: Kind selects which of the parameter blocks is used.
type Gate struct {
	Kind          GateKind             `yaml:"kind" json:"kind" jsonschema:"title=Kind,enum=crossover,enum=breakout,enum=strength,enum=level,enum=participation" validate:"required,oneof=crossover breakout strength level participation"`
	Crossover     *CrossoverParams     `yaml:"crossover,omitempty" json:"crossover,omitempty"`
	Breakout      *BreakoutParams      `yaml:"breakout,omitempty" json:"breakout,omitempty"`
	Strength      *StrengthParams      `yaml:"strength,omitempty" json:"strength,omitempty"`
	Level         *LevelParams         `yaml:"level,omitempty" json:"level,omitempty"`
	Participation *ParticipationParams `yaml:"participation,omitempty" json:"participation,omitempty"`
}

func CrossoverGate(acceptNeutral bool, pairs ...crossover.LinePair) Gate {
	return Gate{Kind: GateKindCrossover, Crossover: &CrossoverParams{Pairs: pairs, AcceptNeutral: acceptNeutral}}
}

func BreakoutGate(edges ...types.LineName) Gate {
	return Gate{Kind: GateKindBreakout, Breakout: &BreakoutParams{Edges: edges}}
}

func StrengthGate(threshold float64, strength, positive, negative types.LineName) Gate {
	return Gate{Kind: GateKindStrength, Strength: &StrengthParams{Threshold: threshold, Strength: strength, Positive: positive, Negative: negative}}
}

func LevelGate(line types.LineName, bullishSide Side) Gate {
	return Gate{Kind: GateKindLevel, Level: &LevelParams{Line: line, BullishSide: bullishSide}}
}

func ParticipationGate(averageLength, lookback int) Gate {
	return Gate{Kind: GateKindParticipation, Participation: &ParticipationParams{AverageLength: averageLength, Lookback: lookback}}
}

// validate checks that the parameter block matching Kind is present and sane.
func (g Gate) validate() error {
	switch g.Kind {
	case GateKindCrossover:
		if g.Crossover == nil || len(g.Crossover.Pairs) == 0 {
			return errors.New(errors.ErrCodeInvalidGate, "crossover gate needs at least one line pair")
		}

		for _, pair := range g.Crossover.Pairs {
			if pair.A == "" || pair.B == "" {
				return errors.Newf(errors.ErrCodeInvalidGate, "crossover gate has an incomplete pair %s", pair)
			}
		}
	case GateKindBreakout:
		if g.Breakout == nil || len(g.Breakout.Edges) == 0 {
			return errors.New(errors.ErrCodeInvalidGate, "breakout gate needs at least one edge line")
		}
	case GateKindStrength:
		if g.Strength == nil {
			return errors.New(errors.ErrCodeInvalidGate, "strength gate is missing its parameters")
		}

		if g.Strength.Strength == "" || g.Strength.Positive == "" || g.Strength.Negative == "" {
			return errors.New(errors.ErrCodeInvalidGate, "strength gate needs strength, positive and negative lines")
		}

		if g.Strength.Threshold < 0 {
			return errors.Newf(errors.ErrCodeInvalidThreshold, "strength threshold must not be negative, got %v", g.Strength.Threshold)
		}
	case GateKindLevel:
		if g.Level == nil || g.Level.Line == "" {
			return errors.New(errors.ErrCodeInvalidGate, "level gate needs a reference line")
		}

		switch g.Level.BullishSide {
		case "", SideAbove, SideBelow:
		default:
			return errors.Newf(errors.ErrCodeInvalidGate, "level gate has unknown side %q", g.Level.BullishSide)
		}
	case GateKindParticipation:
		if g.Participation == nil {
			return errors.New(errors.ErrCodeInvalidGate, "participation gate is missing its parameters")
		}

		if g.Participation.AverageLength < 1 {
			return errors.Newf(errors.ErrCodeInvalidGate, "participation average length must be at least 1, got %d", g.Participation.AverageLength)
		}

		if g.Participation.Lookback < 0 || g.Participation.Lookback > g.Participation.AverageLength {
			return errors.Newf(errors.ErrCodeInvalidGate, "participation lookback must be within [0, %d], got %d", g.Participation.AverageLength, g.Participation.Lookback)
		}
	default:
		return errors.Newf(errors.ErrCodeInvalidGate, "unknown gate kind %q", g.Kind)
	}

	return nil
}

// lines returns every line the gate reads.
func (g Gate) lines() []types.LineName {
	switch g.Kind {
	case GateKindCrossover:
		out := make([]types.LineName, 0, 2*len(g.Crossover.Pairs))
		for _, pair := range g.Crossover.Pairs {
			out = append(out, pair.A, pair.B)
		}

		return out
	case GateKindBreakout:
		return g.Breakout.Edges
	case GateKindStrength:
		return []types.LineName{g.Strength.Strength, g.Strength.Positive, g.Strength.Negative}
	case GateKindLevel:
		return []types.LineName{g.Level.Line}
	default:
		return nil
	}
}
