package telemetry

import (
	"testing"

	"go.opentelemetry.io/otel/sdk/trace"
)

func TestSamplerFromEnv(t *testing.T) {
	tests := []struct {
		name  string
		ratio string
		want  trace.Sampler
	}{
		{"unset samples everything", "", trace.AlwaysSample()},
		{"valid ratio is parent based", "0.25", trace.ParentBased(trace.TraceIDRatioBased(0.25))},
		{"garbage falls back", "not-a-number", trace.AlwaysSample()},
		{"zero falls back", "0", trace.AlwaysSample()},
		{"one falls back", "1", trace.AlwaysSample()},
		{"negative falls back", "-0.5", trace.AlwaysSample()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TRACE_SAMPLE_RATIO", tt.ratio)

			got := samplerFromEnv()
			if got.Description() != tt.want.Description() {
				t.Errorf("expected sampler %q, got %q", tt.want.Description(), got.Description())
			}
		})
	}
}
