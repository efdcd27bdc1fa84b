package telemetry

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"disabled", Config{}, false},
		{"endpoint", Config{OTLPEndpoint: "localhost:4318", SampleRate: 0.5}, false},
		{"negative rate", Config{SampleRate: -0.1}, true},
		{"rate above one", Config{SampleRate: 1.5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetup_Disabled(t *testing.T) {
	t.Parallel()

	shutdown, err := Setup(context.Background(), Config{}, "test")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestSetup_InvalidConfig(t *testing.T) {
	t.Parallel()

	if _, err := Setup(context.Background(), Config{OTLPEndpoint: "localhost:4318", SampleRate: 2}, "test"); err == nil {
		t.Fatal("expected error for invalid sample rate")
	}
}

// Not parallel: installs the global tracer provider.
func TestSetup_InstallsProvider(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	shutdown, err := Setup(context.Background(), Config{OTLPEndpoint: "127.0.0.1:4318", Insecure: true}, "test")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
		t.Errorf("global provider = %T, want *sdktrace.TracerProvider", otel.GetTracerProvider())
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	// No spans were recorded, so there is nothing to send.
	if err := shutdown(ctx); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}
