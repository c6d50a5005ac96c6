package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/genc-murat/crystalvm/internal/loader"
	"github.com/genc-murat/crystalvm/internal/log"
	"github.com/genc-murat/crystalvm/internal/profile"
	"github.com/genc-murat/crystalvm/internal/snapshot"
	"github.com/genc-murat/crystalvm/internal/vm"
)

var runFlags struct {
	profile        bool
	profileTiming  bool
	trace          bool
	stepLimit      uint64
	input          string
	output         string
	resume         string
	snapshotPath   string
	snapshotOnHalt bool
}

var runCmd = &cobra.Command{
	Use:   "run [program]",
	Short: "Execute a machine program",
	Long: `Execute a Universal Machine program to completion. The program is
read from the given file, or from stdin when the path is "-" or
omitted. With --resume, execution continues from a saved snapshot
instead of a program file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMachine,
}

func init() {
	f := runCmd.Flags()
	f.BoolVar(&runFlags.profile, "profile", false, "print an opcode/allocator profile after the run")
	f.BoolVar(&runFlags.profileTiming, "profile-timing", false, "clock each instruction (implies --profile, slows execution)")
	f.BoolVar(&runFlags.trace, "trace", false, "log every instruction at debug level")
	f.Uint64Var(&runFlags.stepLimit, "step-limit", 0, "stop after this many instructions (0 = unlimited)")
	f.StringVar(&runFlags.input, "input", "", "read machine input from this file instead of stdin")
	f.StringVar(&runFlags.output, "output", "", "write machine output to this file instead of stdout")
	f.StringVar(&runFlags.resume, "resume", "", "resume from a snapshot file instead of loading a program")
	f.StringVar(&runFlags.snapshotPath, "snapshot", "", "snapshot file path (defaults to config)")
	f.BoolVar(&runFlags.snapshotOnHalt, "snapshot-on-halt", false, "save a snapshot when the run stops")
}

func runMachine(cmd *cobra.Command, args []string) error {
	logger := log.WithComponent("run")

	opts, cleanup, err := machineOptions()
	if err != nil {
		return err
	}
	defer cleanup()

	var m *vm.Machine
	switch {
	case runFlags.resume != "":
		st, err := snapshot.Open(runFlags.resume)
		if err != nil {
			return err
		}
		m, err = st.Machine(opts)
		if err != nil {
			return err
		}
		logger.Info().Str("snapshot", runFlags.resume).Uint64("steps", m.Steps()).Msg("resuming")
	default:
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		program, err := loader.Load(path)
		if err != nil {
			return err
		}
		logger.Debug().Int("words", len(program)).Msg("program loaded")
		m = vm.New(program, opts)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := m.Run(ctx)

	switch {
	case runErr == nil:
		logger.Debug().Uint64("steps", m.Steps()).Msg("halted")
	case errors.Is(runErr, vm.ErrStepLimit):
		logger.Warn().Uint64("steps", m.Steps()).Msg("step limit reached")
	case errors.Is(runErr, context.Canceled):
		logger.Warn().Uint64("steps", m.Steps()).Msg("interrupted")
	default:
		logger.Error().Err(runErr).Uint64("steps", m.Steps()).Msg("machine fault")
	}

	if opts.Profiler != nil {
		if err := opts.Profiler.Report(os.Stderr, m.Memory().Stats(), opts.Profiler.Elapsed()); err != nil {
			return err
		}
	}

	if runFlags.snapshotOnHalt || cfg.Snapshot.SaveOnHalt {
		path := runFlags.snapshotPath
		if path == "" {
			path = cfg.Snapshot.Path
		}
		if err := snapshot.Save(snapshot.Capture(m), path); err != nil {
			return err
		}
		logger.Info().Str("path", path).Msg("snapshot saved")
	}

	return runErr
}

// machineOptions assembles vm.Options from config and flags, opening
// any redirected console files. cleanup closes them.
func machineOptions() (vm.Options, func(), error) {
	mc := cfg.Machine
	if runFlags.stepLimit > 0 {
		mc.StepLimit = runFlags.stepLimit
	}
	if runFlags.input != "" {
		mc.Input = runFlags.input
	}
	if runFlags.output != "" {
		mc.Output = runFlags.output
	}

	opts := vm.Options{StepLimit: mc.StepLimit}
	var closers []io.Closer
	cleanup := func() {
		for _, c := range closers {
			c.Close()
		}
	}

	if mc.Input != "" {
		f, err := os.Open(mc.Input)
		if err != nil {
			return opts, cleanup, fmt.Errorf("machine input: %w", err)
		}
		closers = append(closers, f)
		opts.Input = f
	}
	if mc.Output != "" {
		f, err := os.Create(mc.Output)
		if err != nil {
			cleanup()
			return opts, func() {}, fmt.Errorf("machine output: %w", err)
		}
		closers = append(closers, f)
		opts.Output = f
	}

	if runFlags.profile || runFlags.profileTiming || cfg.Profile.Enabled {
		opts.Profiler = profile.New(runFlags.profileTiming || cfg.Profile.Timing)
	}
	if runFlags.trace || cfg.Machine.Trace {
		tl := log.WithComponent("machine")
		opts.Trace = &tl
	}
	return opts, cleanup, nil
}
