package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/wippyai/wasm-gen/bf"
	"github.com/wippyai/wasm-gen/wasm"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#87CEEB")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	numberStyle = cellStyle.
			Foreground(lipgloss.Color("#98FB98")).
			Align(lipgloss.Right)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type inspectOptions struct {
	example bool
	hex     bool
}

func newInspectCommand(opts *options, s *streams) *cobra.Command {
	iopts := &inspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect [FILE]",
		Short: "Show the sections of the module a program compiles to",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config(cmd)
			if err != nil {
				return err
			}
			src, name, err := readSource(s, args, iopts.example)
			if err != nil {
				return err
			}
			m, err := bf.Compile(src, cfg)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			report, err := renderReport(name, src, m, iopts.hex)
			if err != nil {
				return err
			}
			fmt.Fprintln(s.out, report)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&iopts.example, "example", false, "inspect the built-in hello world program")
	flags.BoolVar(&iopts.hex, "hex", false, "append a hex dump of the encoded module")
	return cmd
}

// renderReport describes the module m compiled from src.
func renderReport(name string, src []byte, m *wasm.Module, withHex bool) (string, error) {
	sections, err := m.Sections()
	if err != nil {
		return "", err
	}
	bin, err := m.Encode()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("bf2wasm"))
	b.WriteString(" ")
	b.WriteString(name)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%d commands, %d bytes encoded\n\n", bf.Commands(src), len(bin))
	b.WriteString(sectionTable(sections))
	if withHex {
		b.WriteString("\n\n")
		b.WriteString(hex.Dump(bin))
	}
	return b.String(), nil
}

func sectionTable(sections []wasm.SectionInfo) string {
	rows := make([][]string, 0, len(sections))
	for _, s := range sections {
		rows = append(rows, []string{
			strconv.Itoa(int(s.ID)),
			s.Name,
			fmt.Sprintf("0x%04x", s.Offset),
			strconv.Itoa(s.Size),
			strconv.Itoa(s.Entries),
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "SECTION", "OFFSET", "SIZE", "ENTRIES").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0 || col >= 3:
				return numberStyle
			default:
				return cellStyle
			}
		}).
		String()
}
