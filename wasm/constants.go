package wasm

// WebAssembly binary format magic number and version.
const (
	// Magic is the WebAssembly binary magic number ("\0asm" in little-endian).
	Magic uint32 = 0x6D736100

	// Version is the binary format version written after Magic.
	Version uint32 = 0x01
)

// SectionID identifies a module section. Sections are emitted in increasing
// order by ID.
type SectionID byte

const (
	SectionCustom   SectionID = 0  // Custom section (never emitted by Module)
	SectionType     SectionID = 1  // Type section (function signatures)
	SectionImport   SectionID = 2  // Import section
	SectionFunction SectionID = 3  // Function section (type indices)
	SectionTable    SectionID = 4  // Table section
	SectionMemory   SectionID = 5  // Memory section
	SectionGlobal   SectionID = 6  // Global section
	SectionExport   SectionID = 7  // Export section
	SectionStart    SectionID = 8  // Start section
	SectionElement  SectionID = 9  // Element section
	SectionCode     SectionID = 10 // Code section (function bodies)
	SectionData     SectionID = 11 // Data section
)

var sectionNames = [...]string{
	SectionCustom:   "custom",
	SectionType:     "type",
	SectionImport:   "import",
	SectionFunction: "function",
	SectionTable:    "table",
	SectionMemory:   "memory",
	SectionGlobal:   "global",
	SectionExport:   "export",
	SectionStart:    "start",
	SectionElement:  "element",
	SectionCode:     "code",
	SectionData:     "data",
}

// SectionName returns the lower-case name of a section id.
func SectionName(id SectionID) string {
	if int(id) < len(sectionNames) {
		return sectionNames[id]
	}
	return "unknown"
}

func (id SectionID) String() string {
	return SectionName(id)
}

// ExternalKind identifies the kind of an imported or exported definition.
type ExternalKind byte

const (
	KindFunc   ExternalKind = 0 // Function import/export
	KindTable  ExternalKind = 1 // Table import/export
	KindMemory ExternalKind = 2 // Memory import/export
	KindGlobal ExternalKind = 3 // Global import/export
)

// ValType is a value type, written as a signed 7-bit LEB128 (so -0x01 is 0x7F).
type ValType int8

const (
	ValI32 ValType = -0x01 // 0x7F
	ValI64 ValType = -0x02 // 0x7E
	ValF32 ValType = -0x03 // 0x7D
	ValF64 ValType = -0x04 // 0x7C
)

func (v ValType) String() string {
	switch v {
	case ValI32:
		return "i32"
	case ValI64:
		return "i64"
	case ValF32:
		return "f32"
	case ValF64:
		return "f64"
	default:
		return "unknown"
	}
}

// Type constructors that share the ValType encoding space.
const (
	TypeFuncRef ValType = -0x10 // anyfunc table element
	TypeFunc    ValType = -0x20 // func type form, 0x60
)

// BlockType is the signature of a block or loop, also encoded as varint7.
type BlockType int8

const (
	BlockVoid BlockType = -0x40 // 0x40
	BlockI32  BlockType = BlockType(ValI32)
	BlockI64  BlockType = BlockType(ValI64)
	BlockF32  BlockType = BlockType(ValF32)
	BlockF64  BlockType = BlockType(ValF64)
)

// Control flow opcodes
const (
	OpBlock  byte = 0x02
	OpLoop   byte = 0x03
	OpEnd    byte = 0x0B
	OpBr     byte = 0x0C
	OpBrIf   byte = 0x0D
	OpReturn byte = 0x0F
	OpCall   byte = 0x10
)

// Variable access opcodes
const (
	OpLocalGet byte = 0x20
	OpLocalSet byte = 0x21
)

// Memory opcodes
const (
	OpI32Load8U byte = 0x2D
	OpI32Store8 byte = 0x3A
)

// Numeric opcodes
const (
	OpI32Const byte = 0x41
	OpI32Eqz   byte = 0x45
	OpI32Add   byte = 0x6A
	OpI32Sub   byte = 0x6B
)

// Limits flags
const (
	LimitsNoMax  uint64 = 0x00
	LimitsHasMax uint64 = 0x01
)
