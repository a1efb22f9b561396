package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hupe1980/stablestore"
	"github.com/hupe1980/stablestore/internal/keyenc"
)

func newPutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put <key> <value|->",
		Short: "Durably store a value",
		Long:  `Store a value under key. Pass "-" to read the value from stdin.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}

			value := []byte(args[1])
			if args[1] == "-" {
				value, err = io.ReadAll(io.LimitReader(cmd.InOrStdin(), stablestore.MaxValueLen+1))
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
			}

			return st.Put(cmd.Context(), args[0], value)
		},
	}
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print a stored value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}

			value, ok := st.Get(cmd.Context(), args[0])
			if !ok {
				return errNotFound
			}
			_, err = cmd.OutOrStdout().Write(value)
			return err
		},
	}
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <key>",
		Short: "Remove a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}

			if !st.Remove(cmd.Context(), args[0]) {
				return errNotFound
			}
			return nil
		},
	}
}

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Remove temp files left behind by a crash",
		Long:  `Remove stale <digest>.tmp files. Do not run while another process writes to the root.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}

			n, err := st.SweepTemp(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d temp file(s)\n", n)
			return nil
		},
	}
}

func newDigestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "digest <key>",
		Short: "Print the digest and data file path of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			digest := keyenc.Encode(args[0])
			out := cmd.OutOrStdout()

			// The digest does not depend on the root.
			if configuredRoot() == "" {
				fmt.Fprintln(out, digest)
				return nil
			}
			st, err := openStore()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\t%s\n", digest, st.DataPath(args[0]))
			return nil
		},
	}
}
