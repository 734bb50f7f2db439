package pipeline_test

import (
	"bytes"
	"testing"

	"alan.dev/alanc/pkg/agc"
	"alan.dev/alanc/pkg/pipeline"
)

// TestRegistryComposesAmmToAgc checks scenario S6's composition property
// on the two-stage amm -> agc route: routing through the registry must
// produce exactly the bytes that running the two registered converters
// manually, in sequence, would.
func TestRegistryComposesAmmToAgc(t *testing.T) {
	src := `
event start: void;

on start fn (): void {
	const pi: float64 = 3.14;
}
`
	r := pipeline.Default()

	composed, err := r.Compile("hello.amm", src, "amm", "agc")
	if err != nil {
		t.Fatalf("unexpected pipeline error: %v", err)
	}

	// Manual step-by-step composition, bypassing the registry.
	aga, err := r.Compile("hello.amm", src, "amm", "aga")
	if err != nil {
		t.Fatalf("unexpected amm->aga error: %v", err)
	}
	manual, err := agc.Write("hello.aga", string(aga))
	if err != nil {
		t.Fatalf("unexpected agc.Write error: %v", err)
	}

	if !bytes.Equal(composed, manual) {
		t.Fatalf("composed amm->agc differs from manual amm->aga->agc:\ncomposed=%x\nmanual=  %x", composed, manual)
	}
	if len(composed) < 8 || string(composed[:8]) != agc.Magic {
		t.Fatalf("expected output to begin with magic %q, got %q", agc.Magic, composed[:8])
	}
}

// TestRegistryReportsNoRoute grounds spec §4.9's rejection of an
// unregistered endpoint pair.
func TestRegistryReportsNoRoute(t *testing.T) {
	r := pipeline.NewRegistry()
	r.Register("ln", "amm", stubConverter{})

	if _, err := r.Compile("x.ln", "", "ln", "agc"); err == nil {
		t.Fatal("expected ErrNoRoute for an endpoint pair with no registered chain")
	}
}

type stubConverter struct{}

func (stubConverter) FromText(name, source string) ([]byte, error) { return []byte(source), nil }
func (stubConverter) FromFile(path string) ([]byte, error)         { return nil, nil }
