// Package wasm builds WebAssembly 1.0 binary modules.
//
// The package is write-only: it assembles a module from an in-memory node
// graph and serializes it to bytes. It does not parse binaries and does not
// validate types, nesting or index references; a malformed module is only
// rejected by whatever consumes it.
//
// # Building a module
//
//	m := wasm.NewModule()
//	voidT := m.AddType(wasm.NewFuncType(nil))
//	writeT := m.AddType(wasm.NewFuncType([]wasm.ValType{wasm.ValI32}))
//
//	write := m.ImportFunction("io", "write", writeT) // function index 0
//	m.AddMemory(1, nil)
//
//	body := m.AddFunction(voidT) // function index 1
//	body.AddLocals(1, wasm.ValI32)
//	body.Code.
//		I32Const(0).LocalSet(0).
//		LocalGet(0).I32Load8U(0, 0).
//		Call(write).
//		Return()
//
//	main, _ := m.FuncIndex(body)
//	m.ExportFunction("main", main)
//
//	bin, err := m.Encode()
//
// # Flatten protocol
//
// Every structural element implements Node. Flatten records its bytes on a
// Visitor; a Sizer counts them and a Writer copies them into a buffer that
// was allocated with exactly the counted length. Serialize runs both passes:
//
//	size, _ := wasm.Size(node)
//	bin, _ := wasm.Serialize(node)  // len(bin) == size
//
// TaggedSection, SizedSection and ArraySection compose over any Node, so
// every section shares the same framing code.
//
// # LEB128
//
// EncodeUnsigned and EncodeSigned are bounded by a bit width (Width1, Width7,
// Width32, Width64). A value that needs more than ceil(width/7) bytes fails
// with an error matching errors.ErrOverflow instead of being truncated.
package wasm
