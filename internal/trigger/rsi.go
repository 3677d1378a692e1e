package trigger

import (
	"github.com/rxtech-lab/argo-trend/internal/signal"
	"github.com/rxtech-lab/argo-trend/internal/types"
	"github.com/rxtech-lab/argo-trend/pkg/errors"
)

type RSIConfig struct {
	Line       types.LineName `yaml:"line" json:"line" jsonschema:"title=RSI line,default=rsi" validate:"required"`
	Overbought float64        `yaml:"overbought" json:"overbought" jsonschema:"title=Overbought,minimum=0,maximum=100,default=70" validate:"gte=0,lte=100"`
	Oversold   float64        `yaml:"oversold" json:"oversold" jsonschema:"title=Oversold,minimum=0,maximum=100,default=30" validate:"gte=0,lte=100"`
}

// DefaultRSIConfig returns the classic 70/30 bands.
func DefaultRSIConfig() RSIConfig {
	return RSIConfig{
		Line:       "rsi",
		Overbought: 70,
		Oversold:   30,
	}
}

// RSI is a mean-reversion trigger: Short above the overbought band and Long
// below the oversold band, only while flat.
type RSI struct {
	config RSIConfig
}

func NewRSI(config RSIConfig) (*RSI, error) {
	if config.Line == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "rsi trigger needs a line")
	}

	if config.Oversold >= config.Overbought {
		return nil, errors.Newf(errors.ErrCodeInvalidThreshold, "rsi oversold (%v) must be below overbought (%v)", config.Oversold, config.Overbought)
	}

	return &RSI{config: config}, nil
}

func (r *RSI) Lines() []types.LineName {
	return []types.LineName{r.config.Line}
}

func (r *RSI) Scan(in signal.Input) (types.SignalType, error) {
	if in.Window == nil || !in.Window.IsReady() || in.Holding.IsInvested() {
		return types.SignalTypeNoSignal, nil
	}

	current, err := in.Window.At(0)
	if err != nil {
		return types.SignalTypeNoSignal, err
	}

	rsi, ok := current.Value(r.config.Line)
	if !ok {
		return types.SignalTypeNoSignal, errors.Newf(errors.ErrCodeMissingLine, "rsi line %q is missing", r.config.Line)
	}

	switch {
	case rsi > r.config.Overbought:
		return types.SignalTypeShort, nil
	case rsi < r.config.Oversold:
		return types.SignalTypeLong, nil
	default:
		return types.SignalTypeNoSignal, nil
	}
}
