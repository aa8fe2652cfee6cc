package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/zarlcorp/core/pkg/zapp"
	"golang.org/x/term"

	"github.com/sdis66/epitrack/internal/cli"
	"github.com/sdis66/epitrack/internal/haptics"
	"github.com/sdis66/epitrack/internal/tui"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	app := zapp.New(zapp.WithName("epitrack"))

	ctx, cancel := zapp.SignalContext(context.Background())
	defer cancel()

	// a .env next to the binary may carry GEMINI_API_KEY on kiosk installs
	_ = godotenv.Load()

	if len(os.Args) > 1 {
		runCLI(ctx, os.Args[1])
		_ = app.Close()
		return
	}

	if err := runTUI(); err != nil {
		slog.Error("tui", "err", err)
		_ = app.Close()
		os.Exit(1)
	}

	if err := app.Close(); err != nil {
		slog.Error("shutdown", "err", err)
		os.Exit(1)
	}
}

func runCLI(_ context.Context, cmd string) {
	switch cmd {
	case "version":
		fmt.Printf("epitrack %s\n", version)
	case "roster":
		cli.CmdRoster(os.Args[2:])
	case "recipients":
		cli.CmdRecipients(os.Args[2:])
	case "export":
		cli.CmdExport()
	default:
		fmt.Fprintf(os.Stderr, "epitrack: unknown command %q\n", cmd)
		os.Exit(1)
	}
}

func runTUI() error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("stdout is not a terminal; see `epitrack roster` for scripted use")
	}

	dataDir := cli.DataDir()
	store, rosterCol, rcptCol, err := cli.OpenStore(dataDir)
	if err != nil {
		return err
	}

	m := tui.New(version, store, rosterCol, rcptCol)
	m.SetPulser(haptics.Discover())

	p := tea.NewProgram(m)
	finalModel, err := p.Run()
	if err != nil {
		store.Close()
		return err
	}

	if fm, ok := finalModel.(tui.Model); ok {
		fm.Close()
	} else {
		store.Close()
	}

	return nil
}
