package common

import (
	"bytes"
	"encoding/gob"
	"math"
	"reflect"
	"testing"

	"github.com/streadway/amqp"

	"github.com/xor-shift/samplefarm/dist"
)

func TestBuildKnownDistributions(t *testing.T) {
	cases := []struct {
		req  SamplerRequest
		want any
	}{
		{SamplerRequest{"uniform", map[string]float64{"a": 0, "b": 1}}, &dist.Uniform{}},
		{SamplerRequest{"standard_normal", nil}, &dist.StandardNormal{}},
		{SamplerRequest{"normal", map[string]float64{"mu": 0, "sigma": 1}}, &dist.Normal{}},
		{SamplerRequest{"log_normal", map[string]float64{"mu": 0, "sigma": 1}}, &dist.LogNormal{}},
		{SamplerRequest{"exponential", map[string]float64{"lambda": 2}}, &dist.Exponential{}},
		{SamplerRequest{"weibull", map[string]float64{"lambda": 1, "k": 2}}, &dist.Weibull{}},
		{SamplerRequest{"pareto", map[string]float64{"xmin": 1, "alpha": 2}}, &dist.Pareto{}},
		{SamplerRequest{"logistic", map[string]float64{"mu": 0, "s": 1}}, &dist.Logistic{}},
		{SamplerRequest{"log_logistic", map[string]float64{"alpha": 1, "beta": 2}}, &dist.LogLogistic{}},
		{SamplerRequest{"gamma", map[string]float64{"shape": 2, "rate": 1}}, &dist.Gamma{}},
	}

	for _, c := range cases {
		t.Run(c.req.Dist, func(t *testing.T) {
			sampler, err := c.req.Build()
			if err != nil {
				t.Fatal(err)
			}

			if reflect.TypeOf(sampler) != reflect.TypeOf(c.want) {
				t.Fatalf("got %T, want %T", sampler, c.want)
			}
		})
	}
}

func TestBuildDecodesParameters(t *testing.T) {
	req := SamplerRequest{
		Dist:   "weibull",
		Params: map[string]float64{"lambda": 4.56, "k": 1.23},
	}

	sampler, err := req.Build()
	if err != nil {
		t.Fatal(err)
	}

	w := sampler.(*dist.Weibull)
	if w.Lambda() != 4.56 || w.K() != 1.23 {
		t.Fatalf("parameters mangled: lambda = %g, k = %g", w.Lambda(), w.K())
	}
}

func TestBuildUnknownDistribution(t *testing.T) {
	_, err := SamplerRequest{Dist: "zipf"}.Build()
	if err == nil {
		t.Fatal("expected an error for an unknown distribution")
	}
}

func TestBuildEmptyDistribution(t *testing.T) {
	_, err := SamplerRequest{}.Build()
	if err == nil {
		t.Fatal("expected an error for an empty distribution name")
	}
}

// Missing parameters decode to zero and must be rejected by the
// constructors rather than silently producing a degenerate sampler.
func TestBuildMissingParameters(t *testing.T) {
	req := SamplerRequest{Dist: "exponential", Params: map[string]float64{}}

	_, err := req.Build()
	if err == nil {
		t.Fatal("expected an error for a missing rate")
	}
	if _, ok := err.(*dist.ParameterDomainError); !ok {
		t.Fatalf("expected a ParameterDomainError, got %T", err)
	}
}

func TestBuildIgnoresExtraParameters(t *testing.T) {
	req := SamplerRequest{
		Dist:   "exponential",
		Params: map[string]float64{"lambda": 1, "typo": 42},
	}

	if _, err := req.Build(); err != nil {
		t.Fatal(err)
	}
}

// Round trip through the same gob path Publish and ParseAMQPBatch use.
func TestAMQPBatchRoundTrip(t *testing.T) {
	original := AMQPBatch{
		SessionID: 7,
		Batch: VariateBatch{
			BatchHeader: BatchHeader{
				Sequence:    42,
				DrawnAt:     1724544000,
				EngineState: "1 2 3 16 0",
			},
			Request: SamplerRequest{
				Dist:   "gamma",
				Params: map[string]float64{"shape": 3, "rate": 2},
			},
			Values: []float64{0.1, 2.5, math.Pi, 1e-300},
		},
	}

	buffer := bytes.Buffer{}
	if err := gob.NewEncoder(&buffer).Encode(original); err != nil {
		t.Fatal(err)
	}

	decoded, err := ParseAMQPBatch(&amqp.Delivery{Body: buffer.Bytes()})
	if err != nil {
		t.Fatal(err)
	}

	if decoded.SessionID != original.SessionID {
		t.Fatalf("session id %d, want %d", decoded.SessionID, original.SessionID)
	}
	if decoded.Batch.Sequence != original.Batch.Sequence ||
		decoded.Batch.DrawnAt != original.Batch.DrawnAt ||
		decoded.Batch.EngineState != original.Batch.EngineState {
		t.Fatalf("header mangled: %+v", decoded.Batch.BatchHeader)
	}
	if decoded.Batch.Request.Dist != "gamma" {
		t.Fatalf("dist mangled: %q", decoded.Batch.Request.Dist)
	}
	if decoded.Batch.Request.Params["shape"] != 3 {
		t.Fatalf("params mangled: %v", decoded.Batch.Request.Params)
	}
	if len(decoded.Batch.Values) != len(original.Batch.Values) {
		t.Fatalf("value count %d, want %d", len(decoded.Batch.Values), len(original.Batch.Values))
	}
	for i := range original.Batch.Values {
		if decoded.Batch.Values[i] != original.Batch.Values[i] {
			t.Fatalf("value %d mangled: %g", i, decoded.Batch.Values[i])
		}
	}
}

func TestParseAMQPBatchGarbage(t *testing.T) {
	_, err := ParseAMQPBatch(&amqp.Delivery{Body: []byte("not a gob stream")})
	if err == nil {
		t.Fatal("expected an error for a garbage body")
	}
}
