// Package cli implements epitrack's command-line subcommands.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/zarlcorp/core/pkg/zcrypto"
	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/core/pkg/zstore"

	"github.com/sdis66/epitrack/internal/recipients"
	"github.com/sdis66/epitrack/internal/roster"
	"github.com/sdis66/epitrack/internal/scan"
)

const deviceKeyFile = "device.key"

// DataDir returns the default data directory for epitrack.
func DataDir() string {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return d + "/epitrack"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".epitrack"
	}
	return home + "/.local/share/epitrack"
}

// OpenStore opens the local store with the device key, creating both on
// first run. Storage is bound to the device, not to an operator account —
// there is no login.
func OpenStore(dir string) (*zstore.Store, *zstore.Collection[roster.Person], *zstore.Collection[recipients.Entry], error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, nil, nil, fmt.Errorf("create data dir: %w", err)
	}

	key, err := deviceKey(dir)
	if err != nil {
		return nil, nil, nil, err
	}

	fsys := zfilesystem.NewOSFileSystem(dir)
	s, err := zstore.Open(fsys, key)
	if err != nil {
		return nil, nil, nil, err
	}

	rosterCol, err := zstore.NewCollection[roster.Person](s, "roster")
	if err != nil {
		s.Close()
		return nil, nil, nil, err
	}

	rcptCol, err := zstore.NewCollection[recipients.Entry](s, "recipients")
	if err != nil {
		s.Close()
		return nil, nil, nil, err
	}

	return s, rosterCol, rcptCol, nil
}

// deviceKey reads the per-device store key, generating it on first run.
func deviceKey(dir string) ([]byte, error) {
	path := filepath.Join(dir, deviceKeyFile)

	key, err := os.ReadFile(path)
	if err == nil {
		return key, nil
	}

	key, err = zcrypto.RandBytes(32)
	if err != nil {
		return nil, fmt.Errorf("generate device key: %w", err)
	}

	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, fmt.Errorf("write device key: %w", err)
	}

	return key, nil
}

// LoadRoster returns the saved roster in enrollment order.
func LoadRoster(col *zstore.Collection[roster.Person]) ([]roster.Person, error) {
	people, err := col.List()
	if err != nil {
		return nil, err
	}
	sort.Slice(people, func(i, j int) bool {
		return people[i].CreatedAt.Before(people[j].CreatedAt)
	})
	return people, nil
}

// LoadRecipients returns the saved recipient addresses, oldest first.
func LoadRecipients(col *zstore.Collection[recipients.Entry]) ([]string, error) {
	entries, err := col.List()
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].AddedAt.Before(entries[j].AddedAt)
	})
	emails := make([]string, len(entries))
	for i, e := range entries {
		emails[i] = e.Email
	}
	return emails, nil
}

// CmdRoster lists the saved roster.
func CmdRoster(args []string) {
	asJSON := hasFlag(args, "--json")

	s, rosterCol, _, err := OpenStore(DataDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "epitrack: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	people, err := LoadRoster(rosterCol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "epitrack: roster: %v\n", err)
		os.Exit(1)
	}

	if len(people) == 0 {
		fmt.Println("no saved roster")
		return
	}

	if asJSON {
		printJSON(people)
		return
	}

	for _, p := range people {
		fmt.Printf("  %-10s %-24s %-8s %s\n",
			p.Badge,
			p.DisplayName(),
			p.Unit,
			p.CreatedAt.Format("2006-01-02"),
		)
	}
}

// CmdRecipients lists the saved report recipients.
func CmdRecipients(args []string) {
	asJSON := hasFlag(args, "--json")

	s, _, rcptCol, err := OpenStore(DataDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "epitrack: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	emails, err := LoadRecipients(rcptCol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "epitrack: recipients: %v\n", err)
		os.Exit(1)
	}

	if len(emails) == 0 {
		fmt.Println("no saved recipients")
		return
	}

	if asJSON {
		printJSON(emails)
		return
	}

	for _, e := range emails {
		fmt.Println("  " + e)
	}
}

// CmdExport prints a sync payload for the saved roster. The scan log is
// session-only and never persisted, so an exported payload carries the
// roster alone.
func CmdExport() {
	s, rosterCol, _, err := OpenStore(DataDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "epitrack: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	people, err := LoadRoster(rosterCol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "epitrack: roster: %v\n", err)
		os.Exit(1)
	}

	payload, err := scan.EncodePayload(people, nil, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "epitrack: export: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(payload)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "epitrack: encode json: %v\n", err)
		os.Exit(1)
	}
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if strings.EqualFold(a, flag) {
			return true
		}
	}
	return false
}
