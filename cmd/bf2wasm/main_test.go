package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tetratelabs/wazero"

	"github.com/wippyai/wasm-gen/bf"
)

var header = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCommand(strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func runModule(t *testing.T, bin []byte) string {
	t.Helper()
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	var out bytes.Buffer
	_, err := rt.NewHostModuleBuilder("io").
		NewFunctionBuilder().
		WithFunc(func(_ context.Context, c uint32) { out.WriteByte(byte(c)) }).
		Export("write").
		NewFunctionBuilder().
		WithFunc(func(_ context.Context) uint32 { return 0 }).
		Export("read").
		Instantiate(ctx)
	if err != nil {
		t.Fatalf("host module: %v", err)
	}
	mod, err := rt.Instantiate(ctx, bin)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	if _, err := mod.ExportedFunction("run").Call(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	return out.String()
}

func TestBuildExampleToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.wasm")
	if _, stderr, err := execute(t, "", "build", "--example", "-o", path); err != nil {
		t.Fatalf("build: %v\n%s", err, stderr)
	}
	bin, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := runModule(t, bin); got != "Hello World!\n" {
		t.Errorf("output = %q", got)
	}
}

func TestBuildFromStdin(t *testing.T) {
	out, _, err := execute(t, "++++++++[>++++++++<-]>+.", "build")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix([]byte(out), header) {
		t.Fatalf("stdout does not start with a module header: %x", out)
	}
	if got := runModule(t, []byte(out)); got != "A" {
		t.Errorf("output = %q, want A", got)
	}
}

func TestBuildFromFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.bf")
	if err := os.WriteFile(src, []byte("+++."), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, err := execute(t, "", "build", src)
	if err != nil {
		t.Fatal(err)
	}
	if got := runModule(t, []byte(out)); got != "\x03" {
		t.Errorf("output = %q", got)
	}
}

func TestBuildLayoutFlags(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bf.toml")
	if err := os.WriteFile(cfgPath, []byte("[imports]\nmodule = \"env\"\n\n[export]\nrun = \"start\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, ".", "build", "--config", cfgPath, "--export", "main", "--export-memory", "tape")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"env", "main", "tape"} {
		if !strings.Contains(out, name) {
			t.Errorf("module does not mention %q", name)
		}
	}
	if strings.Contains(out, "start") {
		t.Error("flag did not override the config file export name")
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"unbalanced", "[+", []string{"build"}, "unbalanced"},
		{"bad pages", "+", []string{"build", "--pages", "0"}, "memory.pages"},
		{"missing file", "", []string{"build", "does-not-exist.bf"}, "read source"},
		{"missing config", "", []string{"build", "--config", "nope.toml"}, "nope.toml"},
		{"too many args", "", []string{"build", "a", "b"}, "accepts at most 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.stdin, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestVerboseLogs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wasm")
	_, stderr, err := execute(t, "+.", "build", "-v", "-o", path)
	if err != nil {
		t.Fatal(err)
	}
	for _, msg := range []string{"compiled program", "module encoded", "module written"} {
		if !strings.Contains(stderr, msg) {
			t.Errorf("stderr missing %q:\n%s", msg, stderr)
		}
	}

	_, stderr, err = execute(t, "+.", "build", "-o", path)
	if err != nil {
		t.Fatal(err)
	}
	if stderr != "" {
		t.Errorf("quiet build logged:\n%s", stderr)
	}
}

func TestInspect(t *testing.T) {
	out, _, err := execute(t, "", "inspect", "--example", "--hex")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"hello world", "SECTION", "type", "import", "function", "memory", "export", "code", "00 61 73 6d"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "data") {
		t.Errorf("inspect listed an empty section:\n%s", out)
	}
}

func TestCompact(t *testing.T) {
	if got := compact("a+b [c] ,d.e<>-"); got != "+[],.<>-" {
		t.Errorf("compact = %q", got)
	}
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestEditModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edit.wasm")
	m := newEditModel(bf.DefaultConfig(), "", path)
	if m.err != nil {
		t.Fatalf("empty program: %v", m.err)
	}

	m.Update(keys("+."))
	if m.input.Value() != "+." {
		t.Fatalf("input = %q", m.input.Value())
	}
	if view := m.View(); !strings.Contains(view, "2 commands") {
		t.Errorf("view missing command count:\n%s", view)
	}
	if len(m.sections) == 0 || !bytes.HasPrefix(m.bin, header) {
		t.Fatal("module not rebuilt after edit")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatal("ctrl+s returned no command")
	}
	m.Update(cmd())
	if !strings.Contains(m.status, "saved") {
		t.Errorf("status = %q", m.status)
	}
	saved, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(saved, m.bin) {
		t.Error("saved file differs from the encoded module")
	}

	m.Update(keys("["))
	if m.err == nil {
		t.Fatal("expected unbalanced error")
	}
	if view := m.View(); !strings.Contains(view, "Error") {
		t.Errorf("view does not show the error:\n%s", view)
	}
}

func TestEditModelSaveWithoutOutput(t *testing.T) {
	m := newEditModel(bf.DefaultConfig(), "+", "")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m.Update(cmd())
	if !strings.Contains(m.status, "no output file") {
		t.Errorf("status = %q", m.status)
	}
}

func TestEditModelQuit(t *testing.T) {
	m := newEditModel(bf.DefaultConfig(), "", "")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("esc did not quit")
	}
}

func TestEditModelSaveWhileTyping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.wasm")
	m := newEditModel(bf.DefaultConfig(), "+.", path)
	want := append([]byte(nil), m.bin...)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	done := make(chan tea.Msg)
	go func() { done <- cmd() }()
	for iter, iterN := 0, 50; iter < iterN; iter++ {
		m.Update(keys("+"))
	}
	m.Update(<-done)

	if !strings.Contains(m.status, "saved") {
		t.Fatalf("status = %q", m.status)
	}
	saved, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(saved, want) {
		t.Error("saved module is not the one on screen when ctrl+s was pressed")
	}
	if bytes.Equal(saved, m.bin) {
		t.Error("module did not change while typing")
	}
}
