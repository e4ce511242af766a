// Package main is the entry point for the acidstep API server
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/james-see/acidstep/pkg/api"
	"github.com/james-see/acidstep/pkg/config"
	"github.com/james-see/acidstep/pkg/control"
	"github.com/james-see/acidstep/pkg/converter"
	"github.com/james-see/acidstep/pkg/converter/devices"
	"github.com/james-see/acidstep/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "Config file (default ~/.config/acidstep/config.yaml)")
	port := flag.Int("port", 0, "Server port (default from config)")
	device := flag.String("device", "", "Target device (td3)")
	debug := flag.Bool("debug", false, "Debug logging")
	flag.Parse()

	if err := run(*configPath, *port, *device, *debug); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, port int, device string, debug bool) error {
	if configPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		configPath = p
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if port == 0 {
		port = cfg.Server.Port
	}
	if device == "" {
		device = cfg.Device
	}

	logger := logging.Init(os.Stderr, cfg.Log.Level, debug || cfg.Log.Debug)
	d, err := devices.Lookup(device)
	if err != nil {
		return err
	}

	seq := control.New(nil, nil,
		control.WithSettings(cfg.Control),
		control.WithBaseNote(cfg.BaseNote),
		control.WithLogger(logger),
	)
	conv := converter.New(d)
	conv.SetBaseNote(cfg.BaseNote)
	conv.SetChannel(cfg.MIDI.Channel)
	srv := api.NewServer(seq, conv, logger)
	srv.SetMeta("", cfg.Tempo)

	fmt.Printf("Starting acidstep API server on port %d...\n", port)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", port)
	return srv.Run(port)
}
