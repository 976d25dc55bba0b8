package common

import (
	"encoding/gob"
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/xor-shift/samplefarm/dist"
)

// SamplerRequest names a distribution and its parameters in wire form.
// Parameters travel as a loose map so one request type covers every
// distribution; Build decodes the map into the right parameter set.
type SamplerRequest struct {
	Dist   string             `json:"dist" mapstructure:"dist"`
	Params map[string]float64 `json:"params" mapstructure:"params"`
}

// BatchHeader carries the per-batch bookkeeping.
type BatchHeader struct {
	Sequence    uint   `json:"seq" mapstructure:"seq"`
	DrawnAt     int64  `json:"ts" mapstructure:"ts"`
	EngineState string `json:"state" mapstructure:"state"`
}

// VariateBatch is one worker's batch of drawn variates. EngineState is the
// engine's state-string from just before the batch was drawn, so any batch
// can be reproduced after the fact.
type VariateBatch struct {
	BatchHeader

	Request SamplerRequest `json:"req" mapstructure:"req"`
	Values  []float64      `json:"values" mapstructure:"values"`
}

// AMQPBatch is the envelope published to the exchange.
type AMQPBatch struct {
	SessionID uint         `json:"sessionId"`
	Batch     VariateBatch `json:"batch"`
}

func init() {
	gob.Register(VariateBatch{})
}

// Build constructs the sampler a request describes. Missing parameters
// decode to zero and are caught by the constructors' domain checks.
func (r SamplerRequest) Build() (dist.Sampler, error) {
	decode := func(out any) error {
		if err := mapstructure.Decode(r.Params, out); err != nil {
			return fmt.Errorf("bad parameters for %q: %w", r.Dist, err)
		}
		return nil
	}

	switch r.Dist {
	case "uniform":
		var p struct {
			A float64 `mapstructure:"a"`
			B float64 `mapstructure:"b"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return dist.NewUniform(p.A, p.B)
	case "standard_normal":
		return dist.NewStandardNormal(), nil
	case "normal":
		var p struct {
			Mu    float64 `mapstructure:"mu"`
			Sigma float64 `mapstructure:"sigma"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return dist.NewNormal(p.Mu, p.Sigma)
	case "log_normal":
		var p struct {
			Mu    float64 `mapstructure:"mu"`
			Sigma float64 `mapstructure:"sigma"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return dist.NewLogNormal(p.Mu, p.Sigma)
	case "exponential":
		var p struct {
			Lambda float64 `mapstructure:"lambda"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return dist.NewExponential(p.Lambda)
	case "weibull":
		var p struct {
			Lambda float64 `mapstructure:"lambda"`
			K      float64 `mapstructure:"k"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return dist.NewWeibull(p.Lambda, p.K)
	case "pareto":
		var p struct {
			XMin  float64 `mapstructure:"xmin"`
			Alpha float64 `mapstructure:"alpha"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return dist.NewPareto(p.XMin, p.Alpha)
	case "logistic":
		var p struct {
			Mu float64 `mapstructure:"mu"`
			S  float64 `mapstructure:"s"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return dist.NewLogistic(p.Mu, p.S)
	case "log_logistic":
		var p struct {
			Alpha float64 `mapstructure:"alpha"`
			Beta  float64 `mapstructure:"beta"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return dist.NewLogLogistic(p.Alpha, p.Beta)
	case "gamma":
		var p struct {
			Shape float64 `mapstructure:"shape"`
			Rate  float64 `mapstructure:"rate"`
		}
		if err := decode(&p); err != nil {
			return nil, err
		}
		return dist.NewGamma(p.Shape, p.Rate)
	case "":
		return nil, errors.New("no distribution given")
	default:
		return nil, fmt.Errorf("unknown distribution %q", r.Dist)
	}
}
