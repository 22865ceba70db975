// Command simcpu is a thin front end over the machine and asmlang
// packages: load-and-run, assemble, and single-step subcommands. It is
// deliberately not the interactive monitor spec.md §1 places out of
// scope — each subcommand is a one-shot operation, grounded on
// oisee-z80-optimizer/cmd/z80opt/main.go's cobra root-command-plus-
// subcommands shape.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/alexleitanthem/simcpu/asmlang"
	"github.com/alexleitanthem/simcpu/config"
	"github.com/alexleitanthem/simcpu/machine"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "simcpu",
		Short: "Emulator and assembler for the 8-bit accumulator CPU",
	}
	root.AddCommand(newRunCmd(), newAsmCmd(), newStepCmd())
	return root
}

func loadMachine(configPath string, addr uint16, addrSet bool, freq uint32, freqSet bool) (*machine.CPU, config.Machine, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, cfg, err
	}
	if addrSet {
		cfg.LoadAddress = addr
	}
	if freqSet {
		cfg.FrequencyHz = freq
	}

	cpu := machine.NewCPU()
	cpu.FrequencyHz = cfg.FrequencyHz
	cpu.Bus.Serial.SetOutput(os.Stdout)
	if cfg.ResetVector != nil {
		cpu.ResetTo(*cfg.ResetVector)
	}
	if cfg.Breakpoint != nil {
		cpu.SetBreakpoint(*cfg.Breakpoint)
	}
	if cfg.Watchpoint != nil {
		cpu.SetWatchpoint(*cfg.Watchpoint)
	}
	if cfg.TraceOnStart {
		cpu.EnableTrace(true)
	}
	return cpu, cfg, nil
}

func newRunCmd() *cobra.Command {
	var (
		configPath string
		addr       uint16
		freq       uint32
		trace      bool
		breakAddr  uint16
		watchAddr  uint16
		hasBreak   bool
		hasWatch   bool
		maxCycles  uint64
	)

	cmd := &cobra.Command{
		Use:   "run <image>",
		Short: "Load a binary image and run it to completion or a cycle cap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			cpu, cfg, err := loadMachine(configPath, addr, cmd.Flags().Changed("addr"), freq, cmd.Flags().Changed("freq"))
			if err != nil {
				return err
			}
			if err := cpu.Bus.Load(image, cfg.LoadAddress); err != nil {
				return err
			}
			cpu.ResetTo(cfg.LoadAddress)

			if trace {
				cpu.EnableTrace(true)
			}
			if hasBreak {
				cpu.SetBreakpoint(breakAddr)
			}
			if hasWatch {
				cpu.SetWatchpoint(watchAddr)
			}

			if err := cpu.Run(maxCycles); err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{
				"cycles":       cpu.CycleCount,
				"instructions": cpu.InstrCount,
			}).Info(cpu.StatusString())
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "TOML config file")
	cmd.Flags().Uint16Var(&addr, "addr", 0, "load address override (hex or decimal)")
	cmd.Flags().Uint32Var(&freq, "freq", 0, "throttle frequency in Hz (0 disables throttling)")
	cmd.Flags().BoolVar(&trace, "trace", false, "enable per-instruction trace output")
	cmd.Flags().Uint16Var(&breakAddr, "break", 0, "arm a breakpoint at this address")
	cmd.Flags().Uint16Var(&watchAddr, "watch", 0, "arm a watchpoint at this address")
	cmd.Flags().Uint64Var(&maxCycles, "max-cycles", ^uint64(0), "stop after this many cycles")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		hasBreak = cmd.Flags().Changed("break")
		hasWatch = cmd.Flags().Changed("watch")
	}
	return cmd
}

func newAsmCmd() *cobra.Command {
	var (
		output  string
		listing string
		origin  uint16
	)

	cmd := &cobra.Command{
		Use:   "asm <in.asm>",
		Short: "Assemble a source file into a binary image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			a := asmlang.New()
			img, err := a.Assemble(args[0], f, origin)
			for _, w := range a.Warnings() {
				fmt.Fprintln(os.Stderr, w.String())
			}
			if err != nil {
				for _, e := range a.Errors() {
					fmt.Fprintln(os.Stderr, e.String())
				}
				return err
			}

			if output == "" {
				output = args[0] + ".bin"
			}
			if err := os.WriteFile(output, img, 0o644); err != nil {
				return err
			}
			if listing != "" {
				if err := os.WriteFile(listing, []byte(a.Listing()), 0o644); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output binary path (default: <input>.bin)")
	cmd.Flags().StringVar(&listing, "listing", "", "optional listing output path")
	cmd.Flags().Uint16Var(&origin, "org", 0, "origin address")
	return cmd
}

func newStepCmd() *cobra.Command {
	var (
		configPath string
		addr       uint16
		count      int
	)

	cmd := &cobra.Command{
		Use:   "step <image>",
		Short: "Single-step an image, printing a status line after each instruction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			cpu, cfg, err := loadMachine(configPath, addr, cmd.Flags().Changed("addr"), 0, false)
			if err != nil {
				return err
			}
			if err := cpu.Bus.Load(image, cfg.LoadAddress); err != nil {
				return err
			}
			cpu.ResetTo(cfg.LoadAddress)

			for i := 0; i < count; i++ {
				result, err := cpu.Step()
				fmt.Println(cpu.StatusString())
				if err != nil {
					return err
				}
				if result.Stopped {
					break
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "TOML config file")
	cmd.Flags().Uint16Var(&addr, "addr", 0, "load address override")
	cmd.Flags().IntVar(&count, "count", 1, "number of instructions to step")
	return cmd
}
