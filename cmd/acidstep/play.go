package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/james-see/acidstep/pkg/converter"
	"github.com/james-see/acidstep/pkg/engine"
	"github.com/james-see/acidstep/pkg/output"
)

var (
	playTempo  float64
	playLoops  int
	midiPort   string
	serialPort string
	newName    string
	newForce   bool
)

var playCmd = &cobra.Command{
	Use:   "play <pattern>",
	Short: "Play a pattern to MIDI and/or serial outputs until Ctrl-C",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlay,
}

var showCmd = &cobra.Command{
	Use:   "show <pattern>",
	Short: "Print the steps of a pattern file",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var newCmd = &cobra.Command{
	Use:   "new <pattern>",
	Short: "Write an empty pattern",
	Args:  cobra.ExactArgs(1),
	RunE:  runNew,
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI output and serial ports",
	Args:  cobra.NoArgs,
	RunE:  runPorts,
}

func init() {
	playCmd.Flags().Float64VarP(&playTempo, "tempo", "t", 0, "Tempo in BPM (default from the pattern)")
	playCmd.Flags().IntVarP(&playLoops, "loops", "n", 0, "Stop after this many loops (0 plays forever)")
	playCmd.Flags().StringVar(&midiPort, "midi", "", "MIDI output port (overrides config)")
	playCmd.Flags().StringVar(&serialPort, "serial", "", "Serial CV/gate device (overrides config)")

	newCmd.Flags().StringVar(&newName, "name", "", "Pattern name")
	newCmd.Flags().BoolVarP(&newForce, "force", "f", false, "Overwrite an existing file")
}

func runPlay(cmd *cobra.Command, args []string) error {
	conv, err := getConverter()
	if err != nil {
		return err
	}
	p, err := conv.LoadFile(args[0])
	if err != nil {
		return err
	}

	if midiPort != "" {
		cfg.MIDI.Port = midiPort
	}
	if serialPort != "" {
		cfg.Serial.Port = serialPort
	}
	if cfg.MIDI.Port == "" && cfg.Serial.Port == "" {
		return errors.New("no output: pass --midi or --serial, or set one in the config")
	}
	out, closeOutputs, err := openOutputs()
	if err != nil {
		return err
	}
	defer closeOutputs()

	seq := newSequencer(out)
	if !seq.Load(p.Steps) {
		return fmt.Errorf("%s: pattern contains out-of-range steps", args[0])
	}

	tempo := cfg.Tempo
	if p.Tempo > 0 {
		tempo = p.Tempo
	}
	if playTempo > 0 {
		tempo = playTempo
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	half := time.Duration(float64(time.Minute) / tempo / 8)
	ticker := time.NewTicker(half)
	defer ticker.Stop()

	fmt.Printf("Playing %s at %.1f bpm, loop %d steps (Ctrl-C to stop)\n", args[0], tempo, p.Steps.LoopLength())
	logger.Info("play: start", "pattern", args[0], "tempo", tempo)

	// The first tick advances off step 0, so a full loop ends back on it
	limit := playLoops * p.Steps.LoopLength()
	played, high := 0, true
	for {
		select {
		case <-ctx.Done():
			logger.Info("play: interrupted")
			return seq.Close()
		case <-ticker.C:
		}

		if !high {
			if err := seq.ClockOff(); err != nil {
				return err
			}
			if limit > 0 && played >= limit {
				logger.Info("play: done", "loops", playLoops)
				return seq.Close()
			}
			high = true
			continue
		}
		high = false

		f, ok, err := seq.ClockOn()
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		played++
		logger.Debug("play: step", "step", f.Step, "note", f.Note, "gate", f.Gate)
	}
}

var noteNames = [12]string{"C-", "C#", "D-", "D#", "E-", "F-", "F#", "G-", "G#", "A-", "A#", "B-"}

func runShow(cmd *cobra.Command, args []string) error {
	conv, err := getConverter()
	if err != nil {
		return err
	}
	p, err := conv.LoadFile(args[0])
	if err != nil {
		return err
	}

	e, ok := p.Engine()
	if !ok {
		return fmt.Errorf("%s: pattern contains out-of-range steps", args[0])
	}
	loop := e.LoopLength()
	fmt.Printf("%s  %.1f bpm  loop %d\n\n", p.Name, p.Tempo, loop)
	fmt.Println("step note gate acc sld oct end")
	for i := 0; i < loop; i++ {
		st := e.StepAt(i)
		note := noteNames[e.DeterminedPitch(i)%12]
		if st.Pitch == engine.PitchRest {
			note = "(" + note + ")"
		} else {
			note = " " + note + " "
		}
		fmt.Printf("%02d  %s %-4s %-3s %-3s %-4s %s\n",
			i+1, note, st.Gate, mark(st.Accent), mark(st.Slide), st.Transpose, mark(st.Reset))
	}
	return nil
}

func mark(on bool) string {
	if on {
		return "x"
	}
	return "."
}

func runNew(cmd *cobra.Command, args []string) error {
	path := args[0]
	if converter.DetectFormat(path) == converter.FormatUnknown {
		return fmt.Errorf("%s: extension must be .mid, .seq or .syx", path)
	}
	if _, err := os.Stat(path); err == nil && !newForce {
		return fmt.Errorf("%s exists, pass --force to overwrite", path)
	}

	conv, err := getConverter()
	if err != nil {
		return err
	}
	name := newName
	if name == "" {
		name = trimExt(filepath.Base(path))
	}
	p := converter.NewPattern(name)
	p.Tempo = cfg.Tempo
	if err := conv.SaveFile(p, path); err != nil {
		return err
	}
	fmt.Printf("Wrote empty pattern %s\n", path)
	return nil
}

func runPorts(cmd *cobra.Command, args []string) error {
	fmt.Println("MIDI outputs:")
	for _, name := range output.OutPorts() {
		fmt.Printf("  %s\n", name)
	}
	defer output.CloseDriver()

	ports, err := output.SerialPorts()
	if err != nil {
		return fmt.Errorf("list serial ports: %w", err)
	}
	fmt.Println("Serial ports:")
	for _, name := range ports {
		fmt.Printf("  %s\n", name)
	}
	return nil
}
