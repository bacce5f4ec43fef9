// Package wasmgen is the root of a write-only WebAssembly 1.0 module
// encoder and a small compiler built on it.
//
// # Architecture Overview
//
//	wasmgen/
//	├── wasm/            LEB128 codec, Flatten protocol, sections, Module, instruction emitter
//	├── errors/          Structured error types (phase, kind, path, width)
//	├── bf/              Tape-language to wasm compiler with TOML configuration
//	├── internal/binary/ Reader used by tests to check encoded bytes
//	├── cmd/bf2wasm/     CLI: build, inspect, edit
//	└── examples/basic/  Hand-built module run under wazero
//
// # Quick Start
//
// Compile a program and encode the module:
//
//	bin, err := bf.Build([]byte(bf.HelloWorld), bf.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Or assemble one directly:
//
//	m := wasm.NewModule()
//	t := m.AddType(wasm.NewFuncType(nil))
//	body := m.AddFunction(t)
//	body.Code.Return()
//	idx, _ := m.FuncIndex(body)
//	m.ExportFunction("run", idx)
//	bin, err := m.Encode()
//
// The encoder never validates bytecode: a module with mismatched types or
// unbalanced blocks encodes fine and is rejected by whatever loads it.
package wasmgen
