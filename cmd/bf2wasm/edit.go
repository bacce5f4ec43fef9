package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/wippyai/wasm-gen/bf"
	"github.com/wippyai/wasm-gen/wasm"
)

func newEditCommand(opts *options, s *streams) *cobra.Command {
	var (
		output  string
		example bool
	)
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit a program and watch its module change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config(cmd)
			if err != nil {
				return err
			}
			initial := ""
			if example {
				initial = compact(bf.HelloWorld)
			}
			p := tea.NewProgram(newEditModel(cfg, initial, output),
				tea.WithInput(s.in), tea.WithOutput(s.out), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file ctrl+s saves the module to")
	cmd.Flags().BoolVar(&example, "example", false, "start from the hello world program")
	return cmd
}

// compact drops every non-command byte so a program fits on one line.
func compact(src string) string {
	var b strings.Builder
	for i := 0; i < len(src); i++ {
		if bf.IsCommand(src[i]) {
			b.WriteByte(src[i])
		}
	}
	return b.String()
}

type editModel struct {
	err      error
	input    textinput.Model
	cfg      bf.Config
	output   string
	status   string
	bin      []byte
	sections []wasm.SectionInfo
}

func newEditModel(cfg bf.Config, initial, output string) *editModel {
	ti := textinput.New()
	ti.Prompt = "program: "
	ti.Placeholder = "++++++++[>++++++++<-]>+."
	ti.Width = 60
	ti.SetValue(initial)
	ti.Focus()

	m := &editModel{input: ti, cfg: cfg, output: output}
	m.recompile()
	return m
}

type savedMsg struct {
	err  error
	path string
	size int
}

func (m *editModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *editModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+s":
			return m, saveModule(m.output, m.bin, m.err)
		}

	case savedMsg:
		if msg.err != nil {
			m.status = errorStyle.Render("save failed: " + msg.err.Error())
		} else {
			m.status = fmt.Sprintf("saved %d bytes to %s", msg.size, msg.path)
		}
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.status = ""
		m.recompile()
	}
	return m, cmd
}

// recompile rebuilds the module from the current program text.
func (m *editModel) recompile() {
	m.bin, m.sections = nil, nil
	mod, err := bf.Compile([]byte(m.input.Value()), m.cfg)
	if err != nil {
		m.err = err
		return
	}
	if m.sections, err = mod.Sections(); err != nil {
		m.err = err
		return
	}
	m.bin, m.err = mod.Encode()
}

// saveModule writes a snapshot of the module. The command runs on its own
// goroutine, so it takes copies instead of reading the model.
func saveModule(path string, bin []byte, compileErr error) tea.Cmd {
	return func() tea.Msg {
		if path == "" {
			return savedMsg{err: fmt.Errorf("no output file; start with --output")}
		}
		if compileErr != nil {
			return savedMsg{err: compileErr}
		}
		if err := os.WriteFile(path, bin, 0o644); err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{path: path, size: len(bin)}
	}
}

func (m *editModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("bf2wasm edit"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	} else {
		fmt.Fprintf(&b, "%d commands, %d bytes encoded\n\n",
			bf.Commands([]byte(m.input.Value())), len(m.bin))
		b.WriteString(sectionTable(m.sections))
	}
	b.WriteString("\n\n")
	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("ctrl+s save • esc quit"))
	return b.String()
}
