package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-gen/bf"
)

type buildOptions struct {
	output  string
	example bool
	force   bool
}

func newBuildCommand(opts *options, s *streams) *cobra.Command {
	bopts := &buildOptions{}
	cmd := &cobra.Command{
		Use:   "build [FILE]",
		Short: "Compile a program to a .wasm module",
		Long: `Compile a program to a .wasm module.

The program is read from FILE, or from stdin when FILE is omitted or "-".
The module is written to --output, or to stdout when stdout is not a
terminal.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, opts, bopts, s, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&bopts.output, "output", "o", "", "write the module to this file")
	flags.BoolVar(&bopts.example, "example", false, "compile the built-in hello world program")
	flags.BoolVarP(&bopts.force, "force", "f", false, "write binary output to a terminal")
	return cmd
}

func runBuild(cmd *cobra.Command, opts *options, bopts *buildOptions, s *streams, args []string) error {
	cfg, err := opts.config(cmd)
	if err != nil {
		return err
	}
	src, name, err := readSource(s, args, bopts.example)
	if err != nil {
		return err
	}

	if bopts.output == "" && isTerminal(s.out) && !bopts.force {
		return errors.New("refusing to write binary output to a terminal; use --output or --force")
	}

	bin, err := bf.Build(src, cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	if bopts.output == "" {
		_, err = s.out.Write(bin)
		return err
	}
	if err := os.WriteFile(bopts.output, bin, 0o644); err != nil {
		return fmt.Errorf("write module: %w", err)
	}
	bf.Logger().Info("module written",
		zap.String("source", name),
		zap.String("output", bopts.output),
		zap.Int("bytes", len(bin)))
	return nil
}
