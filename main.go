package main

import (
	"alistlauncher/health"
	"alistlauncher/logger"
	"alistlauncher/models"
	"alistlauncher/network"
	"alistlauncher/storage"
	"alistlauncher/ui"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ncruces/zenity"
	"github.com/rs/zerolog"
)

// errorDialog shows the fatal error without a second Fyne app
var errorDialog = zenity.Error

func main() {
	log := logger.NewConsole(logger.LevelFromEnv())

	// Check for command-line arguments
	if len(os.Args) > 1 {
		os.Exit(handleCommandLineArgs(os.Args[1:], os.Stdout, log))
	}

	// Normal GUI mode
	log.Info().Msg("starting AList launcher")
	if err := runGUI(log); err != nil {
		log.Error().Err(err).Msg("launcher failed to start")
		showFatal(err, log)
		os.Exit(1)
	}
}

// runGUI builds and runs the main window, turning a construction panic into
// an error
func runGUI(log zerolog.Logger) (err error) {
	var mw *ui.MainWindow
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("initialisation failed: %v", r)
			}
		}()
		mw = ui.NewMainWindow(log)
	}()
	if err != nil {
		return err
	}

	mw.ShowAndRun()
	return nil
}

// showFatal displays a native error dialog before exit
func showFatal(err error, log zerolog.Logger) {
	if dlgErr := errorDialog(err.Error(), zenity.Title("AList Launcher - fatal error"), zenity.ErrorIcon); dlgErr != nil {
		log.Warn().Err(dlgErr).Msg("could not show error dialog")
	}
}

// handleCommandLineArgs processes console sub-commands and returns the exit code
func handleCommandLineArgs(args []string, out io.Writer, log zerolog.Logger) int {
	if len(args) == 0 {
		showUsage(out)
		return 0
	}

	store := storage.NewManager(log)

	switch args[0] {
	case "-ips", "--ips":
		printAddresses(out, store)
	case "-config", "--config":
		return printConfig(out, store)
	case "-reset", "--reset":
		if err := store.Remove(); err != nil {
			fmt.Fprintf(out, "Error deleting config: %v\n", err)
			return 1
		}
		fmt.Fprintf(out, "Config %s removed.\n", store.Path())
	case "-status", "--status":
		return checkStatus(out, store)
	case "-help", "--help", "-h", "--h":
		showUsage(out)
	default:
		fmt.Fprintf(out, "Unknown option: %s\n", args[0])
		showUsage(out)
		return 2
	}
	return 0
}

// currentPort returns the stored port or the default
func currentPort(store *storage.Manager) int {
	cfg, err := store.Load()
	if err != nil || cfg == nil {
		return models.DefaultPort
	}
	return cfg.Port
}

func printAddresses(out io.Writer, store *storage.Manager) {
	port := currentPort(store)
	addrs := network.DetectIPs()

	for _, row := range []struct{ label, ip string }{
		{"IPv4", addrs.IPv4},
		{"IPv6", addrs.IPv6},
	} {
		if row.ip == "" {
			fmt.Fprintf(out, "%s: not detected\n", row.label)
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", row.label, models.FormatAddress(row.ip, port))
	}
}

func printConfig(out io.Writer, store *storage.Manager) int {
	cfg, err := store.Load()
	if err != nil {
		fmt.Fprintf(out, "Error loading config: %v\n", err)
		return 1
	}
	if cfg == nil {
		fmt.Fprintf(out, "No config at %s.\n", store.Path())
		return 0
	}

	fmt.Fprintf(out, "Config file: %s\n", store.Path())
	fmt.Fprintf(out, "   Program: %s\n", cfg.Path)
	fmt.Fprintf(out, "   Port:    %d\n", cfg.Port)
	return 0
}

func checkStatus(out io.Writer, store *storage.Manager) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, err := health.NewChecker().Check(ctx, "127.0.0.1", currentPort(store))
	if err != nil {
		fmt.Fprintf(out, "Service check failed: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, status.Summary())
	return 0
}

// showUsage displays command-line usage information
func showUsage(out io.Writer) {
	fmt.Fprintln(out, "AList Launcher - Command Line Usage")
	fmt.Fprintln(out, "===================================")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "GUI Mode (default):")
	fmt.Fprintln(out, "  alistlauncher")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Command Line Options:")
	fmt.Fprintln(out, "  -ips       Print the detected access addresses")
	fmt.Fprintln(out, "  -config    Print the saved program and port")
	fmt.Fprintln(out, "  -reset     Delete the saved config")
	fmt.Fprintln(out, "  -status    Check whether the service answers on its port")
	fmt.Fprintln(out, "  -help      Show this help message")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Environment:")
	fmt.Fprintf(out, "  %s   config file location (default ~/%s)\n", storage.EnvConfigPath, storage.ConfigName)
	fmt.Fprintf(out, "  %s      log level: debug, info, warn, error\n", logger.EnvLevel)
}
