package bf

import (
	"go.uber.org/zap"

	"github.com/wippyai/wasm-gen/errors"
	"github.com/wippyai/wasm-gen/wasm"
)

// Commands. Every other byte is a comment.
const (
	CmdRight  = '>'
	CmdLeft   = '<'
	CmdInc    = '+'
	CmdDec    = '-'
	CmdOutput = '.'
	CmdInput  = ','
	CmdOpen   = '['
	CmdClose  = ']'
)

// IsCommand reports whether c is one of the eight commands.
func IsCommand(c byte) bool {
	switch c {
	case CmdRight, CmdLeft, CmdInc, CmdDec, CmdOutput, CmdInput, CmdOpen, CmdClose:
		return true
	}
	return false
}

// Commands returns the number of command bytes in src.
func Commands(src []byte) int {
	n := 0
	for _, c := range src {
		if IsCommand(c) {
			n++
		}
	}
	return n
}

// CheckBalance reports the first ']' without an opening '[', or the
// innermost '[' left open at the end of src.
func CheckBalance(src []byte) error {
	var open []int
	for i, c := range src {
		switch c {
		case CmdOpen:
			open = append(open, i)
		case CmdClose:
			if len(open) == 0 {
				return errors.Unbalanced(i, CmdClose)
			}
			open = open[:len(open)-1]
		}
	}
	if len(open) > 0 {
		return errors.Unbalanced(open[len(open)-1], CmdOpen)
	}
	return nil
}

// Compile translates src into a module that imports the configured write
// and read functions, owns one memory used as the tape, and exports a single
// () -> () entry point.
//
// The tape pointer is local 0 and starts at address 0. Cells are bytes and
// wrap on overflow; the pointer is not bounds checked, so moving it off the
// memory traps at run time.
func Compile(src []byte, cfg Config) (*wasm.Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := CheckBalance(src); err != nil {
		return nil, err
	}

	m := wasm.NewModule()
	voidT := m.AddType(wasm.NewFuncType(nil))
	writeT := m.AddType(wasm.NewFuncType([]wasm.ValType{wasm.ValI32}))
	readT := m.AddType(wasm.NewFuncType(nil, wasm.ValI32))

	write := m.ImportFunction(cfg.Imports.Module, cfg.Imports.Write, writeT)
	read := m.ImportFunction(cfg.Imports.Module, cfg.Imports.Read, readT)

	var maximum *uint32
	if cfg.Memory.MaxPages != 0 {
		maxPages := cfg.Memory.MaxPages
		maximum = &maxPages
	}
	mem := m.AddMemory(cfg.Memory.Pages, maximum)
	if cfg.Memory.Export != "" {
		m.ExportMemory(cfg.Memory.Export, mem)
	}

	body := m.AddFunction(voidT)
	t := translator{
		code:  &body.Code,
		ptr:   body.AddLocals(1, wasm.ValI32),
		write: write,
		read:  read,
	}
	t.code.I32Const(0).LocalSet(t.ptr)
	for _, c := range src {
		t.command(c)
	}
	t.code.Return()
	if err := t.code.Err(); err != nil {
		return nil, errors.Wrap(errors.PhaseCompile, errors.KindInvalidInput, err, "emit function body")
	}

	run, _ := m.FuncIndex(body)
	m.ExportFunction(cfg.Export.Run, run)

	Logger().Debug("compiled program",
		zap.Int("source_bytes", len(src)),
		zap.Int("commands", Commands(src)),
		zap.Int("code_bytes", t.code.Len()),
		zap.Uint32("entry", run))
	return m, nil
}

// Build compiles src and encodes the module.
func Build(src []byte, cfg Config) ([]byte, error) {
	m, err := Compile(src, cfg)
	if err != nil {
		return nil, err
	}
	return m.Encode()
}

type translator struct {
	code  *wasm.Emitter
	ptr   uint32
	write uint32
	read  uint32
}

func (t *translator) command(c byte) {
	switch c {
	case CmdRight:
		t.code.LocalGet(t.ptr).I32Const(1).I32Add().LocalSet(t.ptr)
	case CmdLeft:
		t.code.LocalGet(t.ptr).I32Const(1).I32Sub().LocalSet(t.ptr)
	case CmdInc:
		t.code.LocalGet(t.ptr).
			LocalGet(t.ptr).I32Load8U(0, 0).
			I32Const(1).I32Add().
			I32Store8(0, 0)
	case CmdDec:
		t.code.LocalGet(t.ptr).
			LocalGet(t.ptr).I32Load8U(0, 0).
			I32Const(1).I32Sub().
			I32Store8(0, 0)
	case CmdOutput:
		t.code.LocalGet(t.ptr).I32Load8U(0, 0).Call(t.write)
	case CmdInput:
		t.code.LocalGet(t.ptr).Call(t.read).I32Store8(0, 0)
	case CmdOpen:
		// block { loop { if *p == 0 break; ... br loop } }
		t.code.Block(wasm.BlockVoid).
			Loop(wasm.BlockVoid).
			LocalGet(t.ptr).I32Load8U(0, 0).I32Eqz().BrIf(1)
	case CmdClose:
		t.code.Br(0).End().End()
	}
}
