package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/stablestore"
)

const rootEnv = "STABLESTORE_ROOT"

var (
	// Global flags
	rootDir string
	verbose bool
)

// errNotFound is returned by get when the key is absent so the process exits non-zero.
var errNotFound = errors.New("key not found")

// NewRootCmd builds the command tree. Output goes to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stablestore",
		Short: "Durable key-value blob store CLI",
		Long: `stablestore - inspect and modify a durable key-value directory.

Every key is stored in <root>/<digest>.data, where digest is derived from
SHA-256 of the key. Writes are crash-safe: temp file, flush, rename,
directory flush.

Examples:
  # Store a value
  stablestore --root /var/lib/node/stable put raft/term 7

  # Store a value from stdin
  cat snapshot.bin | stablestore put snapshot -

  # Read it back
  STABLESTORE_ROOT=/var/lib/node/stable stablestore get raft/term
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)

	// Global persistent flags
	cmd.PersistentFlags().StringVarP(&rootDir, "root", "r", "", "storage root directory (default $"+rootEnv+")")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	cmd.AddCommand(newPutCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newRmCmd())
	cmd.AddCommand(newSweepCmd())
	cmd.AddCommand(newDigestCmd())

	return cmd
}

// Execute runs the CLI with os.Stdout as output.
func Execute() error {
	return NewRootCmd(os.Stdout).Execute()
}

// openStore opens the store selected by --root or the environment.
// configuredRoot returns the root from --root or the environment, or "".
func configuredRoot() string {
	if rootDir != "" {
		return rootDir
	}
	return os.Getenv(rootEnv)
}

func openStore() (*stablestore.Store, error) {
	dir := configuredRoot()
	if dir == "" {
		return nil, fmt.Errorf("no storage root: pass --root or set %s", rootEnv)
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return stablestore.Open(dir, stablestore.WithLogLevel(level))
}
