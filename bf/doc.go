// Package bf compiles programs in the eight-command tape language to
// WebAssembly modules built with package wasm.
//
// A compiled module has this shape under DefaultConfig:
//
//	(import "io" "write" (func (param i32)))   ;; function 0
//	(import "io" "read"  (func (result i32)))  ;; function 1
//	(memory 1)
//	(func (export "run") ...)                  ;; function 2
//
// The host supplies write and read. Import names, memory size and the entry
// point name come from Config, which can be loaded from a TOML file:
//
//	[imports]
//	module = "env"
//
//	[memory]
//	pages = 2
//	export = "tape"
package bf
