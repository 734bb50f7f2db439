package aga

import (
	"fmt"
	"strconv"
	"strings"

	"alan.dev/alanc/internal/diag"
	"alan.dev/alanc/pkg/amm"
)

// Emit lowers mod — AMM text already parsed into a Module (spec §4.6's
// output) — into AGA text (spec §4.7): it assigns every module-level
// const a global-memory address, assigns every declared event a
// monotonically increasing id, lays out each handler's local frame,
// extracts every closure (and every plain function) into its own
// synthetic handler sharing its parent's frame, and numbers every
// statement with its line number and the dependency set of earlier lines
// whose destination address it reads.
func Emit(mod *amm.Module) (string, error) {
	e := &emitter{nextGlobalAddr: -8}

	// Pass 1: event table, declaration order, ids starting at 0 (spec
	// §4.7 rule 2; spec §8 invariant 3).
	for _, d := range mod.Decls {
		if ev, ok := d.(amm.EventDecl); ok {
			e.events = append(e.events, EventDecl{Name: ev.Name, ID: e.nextEventID, PayloadSize: payloadSize(ev.Type)})
			e.eventIDByName = mapSet(e.eventIDByName, ev.Name, e.nextEventID)
			e.nextEventID++
		}
	}
	// Built-in events exported by @std/app (start/print/exit's home
	// module) are handlers bound to a name no EventDecl ever declares in
	// user AMM text; `on start fn...` must still resolve to an id. Any
	// handler whose event name has no EventDecl gets one synthesized
	// here, continuing the same counter, before synthetic closure/
	// function ids begin (spec §6: start/conn/ctrl are builtins).
	for _, d := range mod.Decls {
		if h, ok := d.(amm.Handler); ok {
			if _, ok := e.eventIDByName[h.Event]; !ok {
				e.events = append(e.events, EventDecl{Name: h.Event, ID: e.nextEventID, PayloadSize: payloadSize(h.ArgType)})
				e.eventIDByName = mapSet(e.eventIDByName, h.Event, e.nextEventID)
				e.nextEventID++
			}
		}
	}

	// Pass 2: global memory, module-level consts in declaration order
	// (spec §4.7 rule 1).
	for _, d := range mod.Decls {
		if c, ok := d.(amm.ConstDecl); ok {
			if err := e.addGlobalConst(c.Name, c.Type.Name, c.Value); err != nil {
				return "", err
			}
		}
	}

	// Pass 3: handlers and plain functions, in source order, extracting
	// closures as they're encountered (spec §8 invariant 3: "synthetic
	// closure ids follow declared ids in source-order of extraction").
	for _, d := range mod.Decls {
		switch v := d.(type) {
		case amm.Handler:
			h, err := e.emitHandlerBody(v.Event, e.eventIDByName[v.Event], v.ArgName, v.Body)
			if err != nil {
				return "", err
			}
			e.handlers = append(e.handlers, h)
		case amm.FuncDecl:
			id := e.nextEventID
			e.nextEventID++
			e.events = append(e.events, EventDecl{Name: v.Name, ID: id, PayloadSize: 0})
			e.funcEventID = mapSet(e.funcEventID, v.Name, id)
			h, err := e.emitHandlerBody(v.Name, id, firstParamName(v.Params), v.Body)
			if err != nil {
				return "", err
			}
			e.handlers = append(e.handlers, h)
		}
	}

	var b strings.Builder
	for _, g := range e.globals {
		fmt.Fprintf(&b, "global %s: %s @%d size %d = %s;\n", g.Name, g.Type, g.Address, g.Size, literalText(g.Value))
	}
	if len(e.globals) > 0 {
		b.WriteByte('\n')
	}
	for _, ev := range e.events {
		fmt.Fprintf(&b, "event %s #%d size %d;\n", ev.Name, ev.ID, ev.PayloadSize)
	}
	if len(e.events) > 0 {
		b.WriteByte('\n')
	}
	for _, h := range e.handlers {
		fmt.Fprintf(&b, "handler %s #%d frame %d {\n", h.Event, h.EventID, h.FrameSize)
		for _, ln := range h.Statements {
			fmt.Fprintf(&b, "  line %d deps %s %s(%s, %s, %s);\n",
				ln.Line, depsText(ln.Deps), ln.Opcode,
				operandText(ln.Args[0]), operandText(ln.Args[1]), operandText(ln.Args[2]))
		}
		b.WriteString("}\n\n")
	}

	text := b.String()
	if _, err := ParseModule(mod.Path, text); err != nil {
		return "", diag.New(diag.ClassEmission, diag.Position{File: mod.Path}, "AgaEmitter produced AGA text that fails to re-parse: %v", err)
	}
	return text, nil
}

type emitter struct {
	globals []GlobalDecl
	nextGlobalAddr int64 // starts at -8, decrements

	events        []EventDecl
	eventIDByName map[string]int64
	nextEventID   int64

	funcEventID map[string]int64 // plain-function name -> its synthetic handler's event id

	handlers []HandlerDecl
}

func mapSet(m map[string]int64, k string, v int64) map[string]int64 {
	if m == nil {
		m = map[string]int64{}
	}
	m[k] = v
	return m
}

func firstParamName(params []amm.TypedName) string {
	if len(params) == 0 {
		return ""
	}
	return params[0].Name
}

// payloadSize returns the event payload size AgcWriter packs alongside an
// event's id (spec §4.7 rule 2): 0 for void, -1 for string/variable-size,
// 8 for every other scalar.
func payloadSize(t amm.TypeExpr) int64 {
	switch t.Name {
	case "", "void":
		return 0
	case "string":
		return -1
	default:
		return 8
	}
}

// globalSize returns the packed byte width of a global constant of type
// name holding value (spec §4.7 rule 1): 8 bytes for every numeric/bool
// primitive, 8+ceil(len/8)*8 for a string (its first packed 8 bytes are
// the little-endian signed length, spec §6).
func globalSize(typeName string, value amm.Expression) int64 {
	if typeName == "string" {
		if lit, ok := value.(amm.LiteralExpr); ok {
			n := int64(len(lit.Value))
			return 8 + ((n+7)/8)*8
		}
		return 8
	}
	return 8
}

// addGlobalConst allocates the next global-memory slot (decrementing from
// -8) for a module-level const whose value is a plain literal. A
// module-level const whose value is a call or a variable reference (which
// pkg/ln's AmmEmitter produces for a non-literal initializer) is rejected
// with an emission error and gets no address.
func (e *emitter) addGlobalConst(name, typeName string, value amm.Expression) error {
	lit, ok := value.(amm.LiteralExpr)
	if !ok {
		return diag.New(diag.ClassEmission, diag.Position{}, "module-level const %q has a non-literal value %T; AgaEmitter only lays out literal-valued globals", name, value)
	}
	size := globalSize(typeName, value)
	addr := e.nextGlobalAddr
	e.globals = append(e.globals, GlobalDecl{
		Name: name, Type: typeName, Address: addr, Size: size,
		Value: Literal{Kind: ammLiteralKind(lit.Kind), Value: lit.Value},
	})
	e.nextGlobalAddr -= size
	return nil
}

// spillString allocates a fresh, compiler-named global slot for a string
// literal appearing as a bare call argument: strings can't fit in a single
// immediate u64 word (spec §6), so every one that isn't already a named
// module-level const gets spilled to its own global slot the first time
// it's used as an operand.
func (e *emitter) spillString(value string) int64 {
	name := fmt.Sprintf("__lit%d", len(e.globals))
	size := int64(8 + ((int64(len(value))+7)/8)*8)
	addr := e.nextGlobalAddr
	e.globals = append(e.globals, GlobalDecl{
		Name: name, Type: "string", Address: addr, Size: size,
		Value: Literal{Kind: StringLiteral, Value: value},
	})
	e.nextGlobalAddr -= size
	return addr
}

func ammLiteralKind(k amm.LiteralKind) LiteralKind {
	switch k {
	case amm.IntLiteral:
		return IntLiteral
	case amm.FloatLiteral:
		return FloatLiteral
	case amm.StringLiteral:
		return StringLiteral
	case amm.BoolLiteral:
		return BoolLiteral
	default:
		return IntLiteral
	}
}

func literalText(l Literal) string {
	if l.Kind == StringLiteral {
		return strconv.Quote(l.Value)
	}
	return l.Value
}

func depsText(deps []int64) string {
	parts := make([]string, len(deps))
	for i, d := range deps {
		parts[i] = strconv.FormatInt(d, 10)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func operandText(op Operand) string {
	switch op.Kind {
	case OpNone:
		return "_"
	case OpAddr:
		return "@" + strconv.FormatInt(op.Addr, 10)
	default:
		return op.Imm
	}
}

// frameState builds one handler's local memory frame and per-statement
// line records. argName (if any) is bound to address -1 conceptually (it
// never gets a frame slot of its own and is never counted as a
// dependency, spec §4.7 rule 3/5); every other non-closure let/const gets
// the next 8-byte slot in declaration order starting at 0.
type frameState struct {
	*emitter
	event      string
	eventID    int64
	argName    string
	frameAddr  map[string]int64
	nextOffset int64
	lastWriter map[int64]int64 // address -> line number that last wrote it
	lines      []StmtLine
	lineNo     int64
	closureID  map[string]int64 // const name -> synthetic handler event id, for `const f = fn...`
	extra      []HandlerDecl    // synthetic handlers extracted while walking this handler
}

// emitHandlerBody lowers one AMM handler or function body into a
// HandlerDecl plus any synthetic handlers extracted from the closures it
// contains.
func (e *emitter) emitHandlerBody(event string, eventID int64, argName string, body []amm.Statement) (HandlerDecl, error) {
	f := &frameState{
		emitter: e, event: event, eventID: eventID, argName: argName,
		frameAddr: map[string]int64{}, lastWriter: map[int64]int64{}, closureID: map[string]int64{},
	}
	for _, st := range body {
		if err := f.emitStmt(st); err != nil {
			return HandlerDecl{}, err
		}
	}
	for i := range f.extra {
		f.extra[i].FrameSize = f.nextOffset // extracted closures share this frame
	}
	e.handlers = append(e.handlers, f.extra...)
	return HandlerDecl{Event: event, EventID: eventID, FrameSize: f.nextOffset, Statements: f.lines}, nil
}

// slotFor returns name's frame address, allocating the next 8-byte slot if
// this is its first mention (spec §4.7 rule 3).
func (f *frameState) slotFor(name string) int64 {
	if addr, ok := f.frameAddr[name]; ok {
		return addr
	}
	addr := f.nextOffset
	f.frameAddr[name] = addr
	f.nextOffset += 8
	return addr
}

func (f *frameState) emitStmt(st amm.Statement) error {
	switch v := st.(type) {
	case amm.VarStmt:
		return f.emitAssign(v.Name, v.Value, true)
	case amm.AssignStmt:
		return f.emitAssign(v.Target, v.Value, false)
	case amm.CallStmt:
		_, err := f.emitCallInto(v.FuncName, v.Args, None)
		return err
	case amm.EmitStmt:
		return f.emitEmit(v)
	default:
		return diag.New(diag.ClassEmission, diag.Position{}, "aga: unhandled AMM statement %T", st)
	}
}

// emitAssign lowers a `let`/`const` (fresh, fresh=true) or a plain
// reassignment into zero or more StmtLines, resolving name's destination
// slot first so self-referential values (`total = plus(total, n)`) see
// their own slot as an operand.
func (f *frameState) emitAssign(name string, value amm.Expression, fresh bool) error {
	switch v := value.(type) {
	case amm.ClosureExpr:
		id, err := f.extractClosure(v)
		if err != nil {
			return err
		}
		f.closureID[name] = id
		return nil
	case amm.ArrayExpr:
		return f.emitDispatchTable(name, v)
	case amm.CallExpr:
		dest := Operand{Kind: OpAddr, Addr: f.slotFor(name)}
		_, err := f.emitCallInto(v.FuncName, v.Args, dest)
		return err
	case amm.LiteralExpr:
		dest := Operand{Kind: OpAddr, Addr: f.slotFor(name)}
		imm, err := f.operandFor(v)
		if err != nil {
			return err
		}
		f.append("ldimm", [3]Operand{imm, None, dest})
		return nil
	case amm.VarExpr:
		dest := Operand{Kind: OpAddr, Addr: f.slotFor(name)}
		src, err := f.operandFor(v)
		if err != nil {
			return err
		}
		f.append("mov", [3]Operand{src, None, dest})
		return nil
	default:
		return diag.New(diag.ClassEmission, diag.Position{}, "aga: cannot lower %T into a handler frame slot", value)
	}
}

// emitDispatchTable lowers the `Array<Closure>` conditional-dispatch-table
// constant pkg/ln's flattenConditional builds (spec §4.6) into one
// `tblnew` statement plus one `tblput` statement per (cond, closure) pair,
// each arm's closure extracted into its own synthetic handler first —
// AGA's flat, three-operand statement shape has no direct way to encode
// a literal array of closures, so the table is built up imperatively
// instead (documented in DESIGN.md).
func (f *frameState) emitDispatchTable(name string, arr amm.ArrayExpr) error {
	tableAddr := f.slotFor(name)
	countImm := Operand{Kind: OpImm, Imm: strconv.Itoa(len(arr.Elems))}
	f.append("tblnew", [3]Operand{countImm, None, Operand{Kind: OpAddr, Addr: tableAddr}})

	for _, elem := range arr.Elems {
		pair, ok := elem.(amm.TupleExpr)
		if !ok || len(pair.Elems) != 2 {
			return diag.New(diag.ClassEmission, diag.Position{}, "aga: dispatch-table entry must be a (cond, closure) pair, got %T", elem)
		}
		closure, ok := pair.Elems[1].(amm.ClosureExpr)
		if !ok {
			return diag.New(diag.ClassEmission, diag.Position{}, "aga: dispatch-table entry's second element must be a closure, got %T", pair.Elems[1])
		}
		closureID, err := f.extractClosure(closure)
		if err != nil {
			return err
		}
		condOperand, err := f.operandFor(pair.Elems[0])
		if err != nil {
			return err
		}
		idOperand := Operand{Kind: OpImm, Imm: strconv.FormatInt(closureID, 10)}
		f.append("tblput", [3]Operand{{Kind: OpAddr, Addr: tableAddr}, condOperand, idOperand})
	}
	return nil
}

// extractClosure lowers a closure body into its own synthetic handler,
// sharing this frame (spec §9: "closures extracted as synthetic handlers
// sharing the enclosing handler's memory frame"), and returns its event
// id. Its own parameter (if it takes one) is bound the same way a
// handler's argName is: invoke's payload operand plays the same role for a
// closure that a handler's event payload plays for `on`.
func (f *frameState) extractClosure(v amm.ClosureExpr) (int64, error) {
	id := f.nextEventID
	f.nextEventID++
	name := fmt.Sprintf("__closure%d", id)
	f.events = append(f.events, EventDecl{Name: name, ID: id, PayloadSize: 0})

	nested := &frameState{
		emitter: f.emitter, event: name, eventID: id,
		argName:   firstParamName(v.Params), // bound to invoke's payload operand, like a handler's own arg
		frameAddr: f.frameAddr, nextOffset: f.nextOffset, // shared frame
		lastWriter: map[int64]int64{}, closureID: f.closureID,
	}
	for _, st := range v.Body {
		if err := nested.emitStmt(st); err != nil {
			return 0, err
		}
	}
	f.nextOffset = nested.nextOffset // the shared frame may have grown
	f.extra = append(f.extra, HandlerDecl{Event: name, EventID: id, FrameSize: f.nextOffset, Statements: nested.lines})
	f.extra = append(f.extra, nested.extra...)
	return id, nil
}

func (f *frameState) emitEmit(v amm.EmitStmt) error {
	id, ok := f.eventIDByName[v.Event]
	if !ok {
		return diag.New(diag.ClassEmission, diag.Position{}, "aga: emit of undeclared event %q", v.Event)
	}
	idOperand := Operand{Kind: OpImm, Imm: strconv.FormatInt(id, 10)}
	payload := None
	if v.Value != nil {
		op, err := f.operandFor(v.Value)
		if err != nil {
			return err
		}
		payload = op
	}
	f.append("emit", [3]Operand{idOperand, payload, None})
	return nil
}

// emitCallInto lowers a call into one StmtLine: the callee's name becomes
// the opcode word verbatim (spec §6: "reserved opcode names: any 8-byte
// left-aligned ASCII word" — this compiler imposes no separate builtin
// table, every callable name is an opcode the runtime VM resolves),
// except a call to a previously extracted closure or plain function,
// which becomes an `invoke` with the callee's synthetic event id as its
// first operand (spec's S5: "the caller's statement references that
// synthetic id as its first argument").
func (f *frameState) emitCallInto(funcName string, args []amm.Expression, dest Operand) ([3]Operand, error) {
	if id, ok := f.closureID[funcName]; ok {
		return f.emitInvoke(id, args, dest)
	}
	if id, ok := f.funcEventID[funcName]; ok {
		return f.emitInvoke(id, args, dest)
	}

	var line [3]Operand
	n := len(args)
	if n > 2 {
		n = 2 // the third slot is reserved for the result, spec §6
	}
	for i := 0; i < n; i++ {
		op, err := f.operandFor(args[i])
		if err != nil {
			return line, err
		}
		line[i] = op
	}
	line[2] = dest
	f.append(funcName, line)
	return line, nil
}

func (f *frameState) emitInvoke(id int64, args []amm.Expression, dest Operand) ([3]Operand, error) {
	payload := None
	if len(args) > 0 {
		op, err := f.operandFor(args[0])
		if err != nil {
			return [3]Operand{}, err
		}
		payload = op
	}
	line := [3]Operand{{Kind: OpImm, Imm: strconv.FormatInt(id, 10)}, payload, dest}
	f.append("invoke", line)
	return line, nil
}

// operandFor turns an already-flattened AMM expression (a literal or a
// bare variable reference — the only two shapes AmmEmitter's flattenArgs
// ever leaves in an argument position) into an AGA operand.
func (f *frameState) operandFor(e amm.Expression) (Operand, error) {
	switch v := e.(type) {
	case amm.LiteralExpr:
		if v.Kind == amm.StringLiteral {
			return Operand{Kind: OpAddr, Addr: f.spillString(v.Value)}, nil
		}
		return Operand{Kind: OpImm, Imm: v.Value}, nil
	case amm.VarExpr:
		if v.Name == f.argName {
			// -1 is never a real global address (those are 8-aligned and
			// <= -8); it marks "the handler's own argument", which has no
			// frame slot and is never a dependency (spec §4.7 rule 5).
			return Operand{Kind: OpAddr, Addr: -1}, nil
		}
		if id, ok := f.closureID[v.Name]; ok {
			return Operand{Kind: OpImm, Imm: strconv.FormatInt(id, 10)}, nil
		}
		return Operand{Kind: OpAddr, Addr: f.slotFor(v.Name)}, nil
	default:
		return Operand{}, diag.New(diag.ClassEmission, diag.Position{}, "aga: operand must already be a literal or variable reference, got %T", e)
	}
}

// append records one statement line, computing its dependency set: the
// line numbers of earlier statements (in this same handler) whose
// destination address this one reads, excluding the handler's own
// argument address (spec §4.7 rule 5).
func (f *frameState) append(opcode string, args [3]Operand) {
	var deps []int64
	seen := map[int64]bool{}
	for i := 0; i < 2; i++ {
		if args[i].Kind != OpAddr || args[i].Addr < 0 {
			continue
		}
		if writer, ok := f.lastWriter[args[i].Addr]; ok && !seen[writer] {
			deps = append(deps, writer)
			seen[writer] = true
		}
	}
	f.lines = append(f.lines, StmtLine{Line: f.lineNo, Deps: deps, Opcode: opcode, Args: args})
	if args[2].Kind == OpAddr && args[2].Addr >= 0 {
		f.lastWriter[args[2].Addr] = f.lineNo
	}
	f.lineNo++
}
