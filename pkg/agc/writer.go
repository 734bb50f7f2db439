// Package agc implements the AgcWriter (spec §4.8): it re-parses AGA text
// and packs it into the little-endian 64-bit-word binary container spec §6
// defines, ready for a runtime VM to load. Where pkg/aga is still textual
// and human-readable, AGC is the terminal, wire-format artifact — nothing
// downstream re-parses it.
package agc

import (
	"encoding/binary"
	"math"
	"strconv"

	"alan.dev/alanc/internal/diag"
	"alan.dev/alanc/pkg/aga"
)

// Magic is the 8-byte header every AGC stream begins with (spec §6, §8 S5).
const Magic = "agc00001"

// Write parses agaSource under file's name and packs it into AGC bytes.
// This is the Pipeline's `aga -> agc` entry point.
func Write(file, agaSource string) ([]byte, error) {
	mod, err := aga.ParseModule(file, agaSource)
	if err != nil {
		return nil, err
	}
	return WriteModule(mod)
}

// WriteModule packs an already-parsed AGA module directly, skipping the
// re-parse step (used when the module came straight out of AgaEmitter
// within the same process).
func WriteModule(mod *aga.Module) ([]byte, error) {
	w := &writer{}
	w.tag(Magic)

	globalWords, err := packGlobals(mod.Globals)
	if err != nil {
		return nil, err
	}
	w.u64(uint64(len(globalWords) * 8))
	for _, word := range globalWords {
		w.u64(word)
	}

	for _, ev := range mod.Events {
		w.tag("eventdd:")
		w.u64(uint64(ev.ID))
		w.u64(uint64(ev.PayloadSize)) // 2's-complement reinterpretation, spec §4.8
	}

	for _, h := range mod.Handlers {
		w.tag("handler:")
		w.u64(uint64(h.EventID))
		w.u64(uint64(h.FrameSize))
		for _, line := range h.Statements {
			if err := w.statement(line); err != nil {
				return nil, err
			}
		}
	}

	return w.buf, nil
}

type writer struct {
	buf []byte
}

func (w *writer) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// tag appends s as an 8-byte ASCII word, left-aligned and padded with 0x20
// (spec §6). s longer than 8 bytes is a caller bug, not a runtime input, so
// it is truncated rather than diagnosed.
func (w *writer) tag(s string) {
	var b [8]byte
	for i := range b {
		b[i] = ' '
	}
	copy(b[:], s)
	w.buf = append(w.buf, b[:]...)
}

func (w *writer) statement(line aga.StmtLine) error {
	w.tag("lineno: ")
	w.u64(uint64(line.Line))
	w.u64(uint64(len(line.Deps)))
	for _, d := range line.Deps {
		w.u64(uint64(d))
	}
	op, err := opcodeWord(line.Opcode)
	if err != nil {
		return err
	}
	w.u64(op)
	for _, arg := range line.Args {
		word, err := operandWord(arg)
		if err != nil {
			return err
		}
		w.u64(word)
	}
	return nil
}

// opcodeWord packs an opcode name into its 8-ASCII-byte wire form. Spec §7's
// EmissionError covers "unknown opcode name (length != 8 or non-ASCII)" —
// here that means any opcode longer than 8 bytes, since shorter ones are
// simply space-padded the same way a tag is.
func opcodeWord(name string) (uint64, error) {
	if len(name) > 8 {
		return 0, diag.New(diag.ClassEmission, diag.Position{}, "opcode name %q exceeds 8 bytes", name)
	}
	for _, r := range name {
		if r > 0x7F {
			return 0, diag.New(diag.ClassEmission, diag.Position{}, "opcode name %q is not ASCII", name)
		}
	}
	var b [8]byte
	for i := range b {
		b[i] = ' '
	}
	copy(b[:], name)
	return binary.LittleEndian.Uint64(b[:]), nil
}

// operandWord renders one StmtLine argument/result slot as its u64 wire
// value: an address's 2's-complement bit pattern, an immediate's literal
// value, or zero for an absent slot (spec §4.8 rule 5, "missing args are
// zero-padded").
func operandWord(op aga.Operand) (uint64, error) {
	switch op.Kind {
	case aga.OpNone:
		return 0, nil
	case aga.OpAddr:
		return uint64(op.Addr), nil
	case aga.OpImm:
		return immediateWord(op.Imm)
	default:
		return 0, diag.New(diag.ClassEmission, diag.Position{}, "unknown operand kind %v", op.Kind)
	}
}

// immediateWord encodes an AGA immediate's raw literal text as a single
// u64 word. Booleans pack to 0/1; integers pass through their 2's-complement
// bit pattern; floats pack their IEEE-754 bit pattern (spec §4.7's "8 bytes
// for numerics"). A bare string immediate cannot fit a single word — the
// AgaEmitter always spills string literals into global memory and
// references them by address instead, so one reaching here is a bug in an
// upstream stage rather than a malformed but valid program.
func immediateWord(raw string) (uint64, error) {
	if raw == "true" {
		return 1, nil
	}
	if raw == "false" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return uint64(n), nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return math.Float64bits(f), nil
	}
	return 0, diag.New(diag.ClassEmission, diag.Position{}, "immediate %q does not fit a single 64-bit word", raw)
}

// packGlobals lays out every module-level constant's packed bytes as a flat
// sequence of u64 words, in declaration order (the global at -8 first, since
// addresses decrement from -8).
func packGlobals(globals []aga.GlobalDecl) ([]uint64, error) {
	var words []uint64
	for _, g := range globals {
		gw, err := packGlobal(g)
		if err != nil {
			return nil, err
		}
		words = append(words, gw...)
	}
	return words, nil
}

func packGlobal(g aga.GlobalDecl) ([]uint64, error) {
	switch g.Type {
	case "string":
		return packString(g.Value.Value), nil
	case "bool":
		if g.Value.Value == "true" {
			return []uint64{1}, nil
		}
		return []uint64{0}, nil
	case "float32", "float64":
		f, err := strconv.ParseFloat(g.Value.Value, 64)
		if err != nil {
			return nil, diag.New(diag.ClassEmission, g.Pos, "invalid float constant %q: %v", g.Value.Value, err)
		}
		return []uint64{math.Float64bits(f)}, nil
	default: // int8/int16/int32/int64 and anything else numeric
		n, err := strconv.ParseInt(g.Value.Value, 10, 64)
		if err != nil {
			return nil, diag.New(diag.ClassEmission, g.Pos, "invalid integer constant %q: %v", g.Value.Value, err)
		}
		return []uint64{uint64(n)}, nil
	}
}

// packString packs s into spec §4.7's layout: a first word holding its
// length as a little-endian signed integer, followed by ceil(len/8) words
// of its raw bytes, zero-padded to the next 8-byte boundary.
func packString(s string) []uint64 {
	payload := []byte(s)
	padded := (len(payload) + 7) / 8 * 8
	buf := make([]byte, padded)
	copy(buf, payload)

	words := make([]uint64, 1+padded/8)
	words[0] = uint64(int64(len(payload)))
	for i := 0; i < padded/8; i++ {
		words[1+i] = binary.LittleEndian.Uint64(buf[i*8 : i*8+8])
	}
	return words
}
