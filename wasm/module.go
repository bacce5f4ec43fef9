package wasm

import (
	"encoding/binary"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-gen/errors"
)

// sectionOrder is the canonical emission order.
var sectionOrder = [...]SectionID{
	SectionType,
	SectionImport,
	SectionFunction,
	SectionTable,
	SectionMemory,
	SectionGlobal,
	SectionExport,
	SectionStart,
	SectionElement,
	SectionCode,
	SectionData,
}

// Module assembles a WebAssembly module. It owns one slot per section kind;
// slots are emitted in canonical order and empty slots are left out.
//
// Builder methods return indices that stay valid for the module's lifetime,
// except that function indices shift if more functions are imported after
// local functions were added.
type Module struct {
	slots         [SectionData + 1]*ArraySection
	start         *Index
	bodies        []*FuncBody
	importedFuncs uint32
}

// NewModule returns an empty module.
func NewModule() *Module {
	m := &Module{}
	for _, id := range sectionOrder {
		if id != SectionStart {
			m.slots[id] = &ArraySection{}
		}
	}
	return m
}

// Section returns the slot for id so callers can append entries directly.
// It returns nil for the start and custom sections, which are not vectors.
func (m *Module) Section(id SectionID) *ArraySection {
	if int(id) >= len(m.slots) {
		return nil
	}
	return m.slots[id]
}

// AddType appends a function signature and returns its type index.
func (m *Module) AddType(ft FuncType) uint32 {
	return m.slots[SectionType].Add(ft)
}

// AddMemory appends a memory with initial pages and an optional maximum and
// returns its memory index.
func (m *Module) AddMemory(initial uint32, maximum *uint32) uint32 {
	return m.slots[SectionMemory].Add(MemoryType{Initial: initial, Maximum: maximum})
}

// ImportFunction declares an imported function of type typeIdx and returns
// its function index. Imported functions are numbered before local ones,
// in declaration order.
func (m *Module) ImportFunction(module, field string, typeIdx uint32) uint32 {
	m.slots[SectionImport].Add(ImportEntry{
		Module: module,
		Field:  field,
		Kind:   KindFunc,
		Type:   FunctionImport(typeIdx),
	})
	idx := m.importedFuncs
	m.importedFuncs++
	return idx
}

// NumImportedFuncs returns how many functions have been imported.
func (m *Module) NumImportedFuncs() uint32 {
	return m.importedFuncs
}

// ExportFunction exports funcIdx under name. Names are not checked for
// uniqueness.
func (m *Module) ExportFunction(name string, funcIdx uint32) {
	m.slots[SectionExport].Add(ExportEntry{Field: name, Kind: KindFunc, Index: funcIdx})
}

// ExportMemory exports memory memIdx under name.
func (m *Module) ExportMemory(name string, memIdx uint32) {
	m.slots[SectionExport].Add(ExportEntry{Field: name, Kind: KindMemory, Index: memIdx})
}

// AddFunction declares a local function of type typeIdx and returns its
// empty body for the caller to fill.
func (m *Module) AddFunction(typeIdx uint32) *FuncBody {
	body := &FuncBody{}
	m.slots[SectionFunction].Add(Index(typeIdx))
	m.slots[SectionCode].Add(SizedSection{Payload: body})
	m.bodies = append(m.bodies, body)
	return body
}

// FuncIndex returns the function index of a body returned by AddFunction.
func (m *Module) FuncIndex(body *FuncBody) (uint32, bool) {
	for i, b := range m.bodies {
		if b == body {
			return m.importedFuncs + uint32(i), true
		}
	}
	return 0, false
}

// SetStart makes funcIdx the start function.
func (m *Module) SetStart(funcIdx uint32) {
	idx := Index(funcIdx)
	m.start = &idx
}

// AddData places init at offset in memory 0 and returns the segment index.
func (m *Module) AddData(offset int32, init []byte) uint32 {
	return m.slots[SectionData].Add(DataSegment{Offset: offset, Init: init})
}

// Flatten records the header and every non-empty section.
func (m *Module) Flatten(v Visitor) error {
	v.Record(binary.LittleEndian.AppendUint32(nil, Magic)...)
	v.Record(binary.LittleEndian.AppendUint32(nil, Version)...)
	for _, id := range sectionOrder {
		payload := m.payload(id)
		if payload == nil {
			continue
		}
		if err := (TaggedSection{ID: id, Payload: payload}).Flatten(v); err != nil {
			return err
		}
	}
	return nil
}

// payload returns the section payload for id, or nil when the section is
// absent.
func (m *Module) payload(id SectionID) Node {
	if id == SectionStart {
		if m.start == nil {
			return nil
		}
		return *m.start
	}
	slot := m.slots[id]
	if slot == nil || slot.Len() == 0 {
		return nil
	}
	return slot
}

// Encode serializes the module to the binary format.
func (m *Module) Encode() ([]byte, error) {
	out, err := Serialize(m)
	if err != nil {
		Logger().Debug("module encode failed", zap.Error(err))
		return nil, err
	}
	Logger().Debug("module encoded",
		zap.Int("bytes", len(out)),
		zap.Int("functions", len(m.bodies)),
		zap.Uint32("imported_functions", m.importedFuncs))
	return out, nil
}

// SectionInfo describes one emitted section.
type SectionInfo struct {
	Name    string
	Offset  int // offset of the id byte in the encoded module
	Size    int // payload bytes, excluding id and size prefix
	Entries int // vector length; 1 for the start section
	ID      SectionID
}

// HeaderSize is the length of magic plus version.
const HeaderSize = 8

// Sections reports the sections Encode would emit, in order.
func (m *Module) Sections() ([]SectionInfo, error) {
	var infos []SectionInfo
	offset := HeaderSize
	for _, id := range sectionOrder {
		payload := m.payload(id)
		if payload == nil {
			continue
		}
		size, err := Size(payload)
		if err != nil {
			return nil, errors.WithPath(err, SectionName(id))
		}
		entries := 1
		if slot, ok := payload.(*ArraySection); ok {
			entries = slot.Len()
		}
		infos = append(infos, SectionInfo{
			ID:      id,
			Name:    SectionName(id),
			Offset:  offset,
			Size:    size,
			Entries: entries,
		})
		Logger().Debug("section",
			zap.String("name", SectionName(id)),
			zap.Int("offset", offset),
			zap.Int("size", size),
			zap.Int("entries", entries))
		offset += 1 + SizeUnsigned(uint64(size)) + size
	}
	return infos, nil
}
