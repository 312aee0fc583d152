// Package cli implements zacct's command-line subcommands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"syscall"

	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/core/pkg/zstore"
	"github.com/zarlcorp/zacct/internal/account"
	"github.com/zarlcorp/zacct/internal/api"
	"github.com/zarlcorp/zacct/internal/config"
	"golang.org/x/term"
)

// DataDir returns the default data directory for zacct.
func DataDir() string {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return d + "/zacct"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".zacct"
	}
	return home + "/.local/share/zacct"
}

// ReadPassword prompts for a password on stderr and reads it without echo.
func ReadPassword(prompt string, w io.Writer) (string, error) {
	fmt.Fprint(w, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// IsFirstRun checks whether the vault has been initialized.
func IsFirstRun(dir string) bool {
	_, err := os.Stat(dir + "/salt")
	return err != nil
}

// openClient prompts for the vault password, reads the server settings
// and returns a ready API client.
func openClient(dir string) (*api.Client, error) {
	if IsFirstRun(dir) {
		return nil, fmt.Errorf("vault not initialized; run zacct once to set it up")
	}

	pass, err := ReadPassword("vault password: ", os.Stderr)
	if err != nil {
		return nil, err
	}

	fsys := zfilesystem.NewOSFileSystem(dir)
	s, err := zstore.Open(fsys, []byte(pass))
	if err != nil {
		return nil, err
	}
	defer s.Close()

	col, err := zstore.NewCollection[config.Envelope](s, "config")
	if err != nil {
		return nil, err
	}

	cfg := config.LoadServer(col)
	if !cfg.Configured() {
		return nil, fmt.Errorf("no server configured; run zacct and set it up")
	}

	return api.NewClient(cfg.APIConfig()), nil
}

// CmdList lists all accounts on the server.
func CmdList(ctx context.Context, args []string) {
	asJSON := hasFlag(args, "--json")

	client, err := openClient(DataDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "zacct: %v\n", err)
		os.Exit(1)
	}

	accounts, err := client.List(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "zacct: list: %v\n", err)
		os.Exit(1)
	}

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Login < accounts[j].Login
	})

	if len(accounts) == 0 {
		fmt.Println("no accounts")
		return
	}

	if asJSON {
		printJSON(accounts)
		return
	}

	for _, a := range accounts {
		fmt.Printf("  %-10s %-7s %-30s %s\n",
			a.ID,
			a.Type,
			a.Login,
			account.JoinLabels(a.Labels),
		)
	}
}

// CmdRemove deletes an account by id.
func CmdRemove(ctx context.Context, id string) {
	client, err := openClient(DataDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "zacct: %v\n", err)
		os.Exit(1)
	}

	if err := client.Delete(ctx, id); err != nil {
		fmt.Fprintf(os.Stderr, "zacct: rm: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("deleted %s\n", id)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "zacct: encode json: %v\n", err)
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
