package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

const usage = `usage: wheelsim [command] [configDir]

commands:
  run       build the vehicle and drive it with the input script (default)
  validate  build the vehicle and print its derived layout as JSON
  version   print version information`

func run(args []string) int {
	command := "run"
	if len(args) > 0 {
		command = strings.ToLower(args[0])
	}
	configDir := "."
	if len(args) > 1 {
		configDir = args[1]
	}

	switch command {
	case "version":
		fmt.Printf("%s %s (built %s)\n", AppName, CurrentVersion, BuildDate)
		return 0
	case "help", "-h", "--help":
		fmt.Println(usage)
		return 0
	case "run", "validate":
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", command, usage)
		return 2
	}

	cleanup := setupLogging(configDir)
	defer cleanup()

	if command == "validate" {
		if err := validate(); err != nil {
			Logger.Error("Validation failed", "error", err)
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := simulate(ctx); err != nil {
		Logger.Error("Simulation failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// validate builds the vehicle without running it and prints its summary.
func validate() error {
	v, _, err := buildVehicle()
	if err != nil {
		return err
	}
	summary := v.Summary()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
