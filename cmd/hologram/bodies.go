package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ayusman/hologram/internal/config"
	"github.com/ayusman/hologram/internal/store"
)

func newBodiesCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "bodies",
		Short: "List the body catalog in scene order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			st, err := openStore(cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			bodies, err := st.Bodies().List()
			if err != nil {
				return fmt.Errorf("list bodies: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(bodies) == 0 {
				fmt.Fprintln(out, "No bodies in the catalog.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "POS\tNAME\tDISTANCE\tSIZE\tSPEED\tID")
			fmt.Fprintln(w, "---\t----\t--------\t----\t-----\t--")
			for _, b := range bodies {
				fmt.Fprintf(w, "%d\t%s\t%g\t%g\t%g\t%s\n", b.Position, b.Name, b.Distance, b.Size, b.Speed, b.ID)
			}
			return w.Flush()
		},
	}
}

// openStore creates the data directory if needed and opens the catalog.
func openStore(dbPath string) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}
