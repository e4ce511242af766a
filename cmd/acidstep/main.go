// Package main is the entry point for the acidstep CLI
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/james-see/acidstep/pkg/api"
	"github.com/james-see/acidstep/pkg/config"
	"github.com/james-see/acidstep/pkg/control"
	"github.com/james-see/acidstep/pkg/converter"
	"github.com/james-see/acidstep/pkg/converter/devices"
	"github.com/james-see/acidstep/pkg/logging"
	"github.com/james-see/acidstep/pkg/output"
	"github.com/james-see/acidstep/pkg/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configPath string
	debug      bool
	deviceName string
	serverPort int

	cfg     config.Config
	logger  *slog.Logger
	logFile io.Closer
)

func main() {
	err := rootCmd.Execute()
	if logFile != nil {
		logFile.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "acidstep",
	Short: "303-style step sequencer",
	Long: `acidstep is a 32-step acid bassline sequencer. It edits patterns in a
terminal tracker, plays them to MIDI or a serial CV/gate interface, serves
them over HTTP and converts between MIDI files and Behringer TD-3 .seq/.syx.

Examples:
  acidstep tui pattern.seq
  acidstep play pattern.mid --midi "IAC Driver Bus 1"
  acidstep show pattern.syx
  acidstep midi2seq pattern.mid -o pattern.seq
  acidstep serve --port 8080`,
	Version:           fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var tuiCmd = &cobra.Command{
	Use:   "tui [pattern]",
	Short: "Launch the tracker",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ~/.config/acidstep/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Debug logging")
	rootCmd.PersistentFlags().StringVarP(&deviceName, "device", "d", "", "Target device (td3)")

	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "Server port (default from config)")

	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(portsCmd)
	addConvertCommands(rootCmd)
}

// setup loads the config and starts logging. The tracker owns the
// terminal, so it logs to a file.
func setup(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	c, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg = c
	if deviceName != "" {
		cfg.Device = deviceName
	}
	if debug {
		cfg.Log.Debug = true
	}

	var w io.Writer = os.Stderr
	if cmd == tuiCmd || cfg.Log.File != "" {
		logPath := cfg.Log.File
		if logPath == "" {
			dir, err := config.Dir()
			if err != nil {
				return err
			}
			logPath = filepath.Join(dir, "acidstep.log")
		}
		f, err := logging.OpenFile(logPath)
		if err != nil {
			return err
		}
		w, logFile = f, f
	}
	logger = logging.Init(w, cfg.Log.Level, cfg.Log.Debug)
	logger.Debug("config loaded", "path", path, "device", cfg.Device)
	return nil
}

func getDevice() (converter.Device, error) {
	return devices.Lookup(cfg.Device)
}

func getConverter() (*converter.Converter, error) {
	d, err := getDevice()
	if err != nil {
		return nil, err
	}
	conv := converter.New(d)
	conv.SetBaseNote(cfg.BaseNote)
	conv.SetChannel(cfg.MIDI.Channel)
	return conv, nil
}

// openOutputs opens the MIDI and serial outputs named in the config.
// The returned closer releases both.
func openOutputs() (control.Output, func(), error) {
	var outs control.Multi
	var closers []func() error

	if cfg.MIDI.Port != "" {
		m, err := output.OpenMIDI(cfg.MIDI.Port, cfg.MIDI.Channel)
		if err != nil {
			return nil, nil, err
		}
		outs = append(outs, m)
		closers = append(closers, func() error {
			output.CloseDriver()
			return nil
		})
	}
	if cfg.Serial.Port != "" {
		s, err := output.OpenSerial(cfg.Serial.Port, cfg.Serial.Baud)
		if err != nil {
			for _, c := range closers {
				c()
			}
			return nil, nil, err
		}
		outs = append(outs, s)
		closers = append(closers, s.Close)
	}

	closeAll := func() {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		if err := errors.Join(errs...); err != nil {
			logger.Warn("closing outputs", "err", err)
		}
	}
	return outs, closeAll, nil
}

func newSequencer(out control.Output) *control.Sequencer {
	return control.New(nil, out,
		control.WithSettings(cfg.Control),
		control.WithBaseNote(cfg.BaseNote),
		control.WithLogger(logger),
	)
}

func runTUI(cmd *cobra.Command, args []string) error {
	conv, err := getConverter()
	if err != nil {
		return err
	}
	out, closeOutputs, err := openOutputs()
	if err != nil {
		return err
	}
	defer closeOutputs()

	seq := newSequencer(out)
	opts := []tui.Option{tui.WithTempo(cfg.Tempo), tui.WithLogger(logger)}
	if len(args) == 1 {
		p, err := conv.LoadFile(args[0])
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if p != nil {
			if !seq.Load(p.Steps) {
				return fmt.Errorf("%s: pattern contains out-of-range steps", args[0])
			}
			opts = append(opts, tui.WithTempo(p.Tempo))
		}
		name := trimExt(filepath.Base(args[0]))
		if p != nil && p.Name != "" {
			name = p.Name
		}
		opts = append(opts, tui.WithPattern(name, args[0]))
	}

	return tui.Run(tui.New(seq, conv, opts...))
}

func runServe(cmd *cobra.Command, args []string) error {
	conv, err := getConverter()
	if err != nil {
		return err
	}
	port := serverPort
	if port == 0 {
		port = cfg.Server.Port
	}
	out, closeOutputs, err := openOutputs()
	if err != nil {
		return err
	}
	defer closeOutputs()

	srv := api.NewServer(newSequencer(out), conv, logger)
	srv.SetMeta("", cfg.Tempo)
	fmt.Printf("Starting API server on port %d...\n", port)
	return srv.Run(port)
}

func trimExt(path string) string {
	return path[:len(path)-len(filepath.Ext(path))]
}
