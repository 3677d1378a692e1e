// Package allocation turns ranked selections into fraction-of-capital actions.
// Actions are descriptive; placing orders is left to the caller.
package allocation

import (
	"fmt"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-trend/internal/types"
	"github.com/rxtech-lab/argo-trend/pkg/errors"
	"github.com/shopspring/decimal"
)

// ExitRule liquidates a held instrument once its strength line drops below Threshold.
type ExitRule struct {
	StrengthLine types.LineName `yaml:"strength_line" json:"strength_line" jsonschema:"title=Strength line,default=adx" validate:"required"`
	Threshold    float64        `yaml:"threshold" json:"threshold" jsonschema:"title=Threshold,minimum=0,default=20" validate:"gte=0"`
}

type Planner struct {
	fraction decimal.Decimal
	exit     optional.Option[ExitRule]
}

// NewPlanner creates a planner allocating fraction of the portfolio value to
// every new position. fraction must be in (0, 1].
func NewPlanner(fraction decimal.Decimal, exit optional.Option[ExitRule]) (*Planner, error) {
	if !fraction.IsPositive() || fraction.GreaterThan(decimal.NewFromInt(1)) {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "position fraction must be in (0, 1], got %s", fraction)
	}

	if exit.IsSome() && exit.Unwrap().StrengthLine == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "exit rule needs a strength line")
	}

	return &Planner{
		fraction: fraction,
		exit:     exit,
	}, nil
}

func (p *Planner) Fraction() decimal.Decimal {
	return p.fraction
}

// Plan emits liquidations for held instruments whose trend has weakened,
// followed by one entry per selection in rank order. A selection for an
// instrument being liquidated in the same step is dropped.
func (p *Planner) Plan(portfolioValue decimal.Decimal, selections []types.Selection, readings []types.Reading) []types.Action {
	actions := make([]types.Action, 0, len(selections))
	liquidated := make(map[string]struct{})

	if p.exit.IsSome() {
		rule := p.exit.Unwrap()

		for _, reading := range readings {
			if !reading.Holding.IsInvested() {
				continue
			}

			strength, ok := reading.Lines[rule.StrengthLine]
			if !ok || strength >= rule.Threshold {
				continue
			}

			liquidated[reading.Symbol] = struct{}{}
			actions = append(actions, types.Action{
				Symbol:   reading.Symbol,
				Kind:     types.ActionKindLiquidate,
				Fraction: decimal.Zero,
				Notional: decimal.Zero,
				Reason:   fmt.Sprintf("%s %.4f below exit threshold %.4f", rule.StrengthLine, strength, rule.Threshold),
			})
		}
	}

	notional := portfolioValue.Mul(p.fraction).Round(2)

	for _, selection := range selections {
		if _, ok := liquidated[selection.Symbol]; ok {
			continue
		}

		kind := types.ActionKindEnterLong
		if selection.Direction == types.DirectionBearish {
			kind = types.ActionKindEnterShort
		}

		actions = append(actions, types.Action{
			Symbol:   selection.Symbol,
			Kind:     kind,
			Fraction: p.fraction,
			Notional: notional,
			Reason:   fmt.Sprintf("rank %d %s", selection.Rank, selection.Direction),
		})
	}

	return actions
}
