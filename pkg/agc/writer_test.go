package agc_test

import (
	"encoding/binary"
	"math"
	"testing"

	"alan.dev/alanc/pkg/agc"
	"alan.dev/alanc/pkg/aga"
)

// TestWriteModuleHelloWorld grounds spec §8 scenario S1: the emitted stream
// begins with the agc00001 magic word and carries a handler block for the
// event bound to "start".
func TestWriteModuleHelloWorld(t *testing.T) {
	src := `
global __lit0: string @-8 size 16 = "Hi";

event start #0 size 0;
event exit #1 size 8;

handler start #0 frame 0 {
  line 0 deps [] print(@-8, _, _);
  line 1 deps [0] emit(1, 0, _);
  line 2 deps [] ret(_, _, _);
}
`
	mod, err := aga.ParseModule("hello.aga", src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	out, err := agc.WriteModule(mod)
	if err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}
	if len(out) < 8 || string(out[:8]) != agc.Magic {
		t.Fatalf("expected magic %q, got %q", agc.Magic, out[:8])
	}

	size := binary.LittleEndian.Uint64(out[8:16])
	if size != 16 {
		t.Fatalf("expected global-memory size 16, got %d", size)
	}

	length := binary.LittleEndian.Uint64(out[16:24])
	if length != 2 {
		t.Fatalf("expected packed string length 2, got %d", length)
	}
	payload := out[24:32]
	if string(payload[:2]) != "Hi" {
		t.Fatalf("expected packed string payload %q, got %q", "Hi", payload[:2])
	}

	eventsStart := 32
	if string(out[eventsStart:eventsStart+8]) != "eventdd:" {
		t.Fatalf("expected 'eventdd:' tag at offset %d, got %q", eventsStart, out[eventsStart:eventsStart+8])
	}
	startEventID := binary.LittleEndian.Uint64(out[eventsStart+8 : eventsStart+16])
	if startEventID != 0 {
		t.Fatalf("expected start event id 0, got %d", startEventID)
	}

	handlerTagOffset := eventsStart + 2*24 // two eventdd: records, 24 bytes each
	if string(out[handlerTagOffset:handlerTagOffset+8]) != "handler:" {
		t.Fatalf("expected 'handler:' tag at offset %d, got %q", handlerTagOffset, out[handlerTagOffset:handlerTagOffset+8])
	}
	handlerEventID := binary.LittleEndian.Uint64(out[handlerTagOffset+8 : handlerTagOffset+16])
	if handlerEventID != 0 {
		t.Fatalf("expected handler bound to event id 0 (start), got %d", handlerEventID)
	}
}

// TestWriteModuleConstantGlobalMemory grounds spec §8 scenario S2: a single
// float64 constant packs to exactly one 8-byte word.
func TestWriteModuleConstantGlobalMemory(t *testing.T) {
	src := `global pi: float64 @-8 size 8 = 3.14;`

	mod, err := aga.ParseModule("pi.aga", src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	out, err := agc.WriteModule(mod)
	if err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}

	size := binary.LittleEndian.Uint64(out[8:16])
	if size != 8 {
		t.Fatalf("expected global-memory size 8, got %d", size)
	}
	bits := binary.LittleEndian.Uint64(out[16:24])
	if bits != math.Float64bits(3.14) {
		t.Fatalf("expected f64 bit-pattern of 3.14, got bits for %v", math.Float64frombits(bits))
	}
}

// TestWriteModuleRejectsOversizedOpcode grounds spec §7's EmissionError for an
// opcode name longer than the 8-byte wire word it must fit.
func TestWriteModuleRejectsOversizedOpcode(t *testing.T) {
	src := `
event start #0 size 0;
handler start #0 frame 0 {
  line 0 deps [] toolongname(_, _, _);
}
`
	mod, err := aga.ParseModule("bad.aga", src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if _, err := agc.WriteModule(mod); err == nil {
		t.Fatal("expected an EmissionError for an opcode name longer than 8 bytes")
	}
}
