package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/allspots/spots-cli/internal/ingest"
)

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import a JSON payload of POIs",
	Long: `Imports a JSON array of POIs through the import-time resolver: records
without coordinates are rejected, in-payload duplicates are dropped, and
every record is upserted under its deterministic id — re-importing the
same payload leaves the collection unchanged.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("store"); err != nil {
			return err
		}

		pois, err := readPayload(args[0])
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		importer, err := ingest.NewImporter(st, cfg.Import.BatchSize, cfg.Import.MaxImages)
		if err != nil {
			return err
		}

		stats, err := importer.Run(ctx, pois)
		if err != nil {
			return err
		}

		fmt.Printf("Import complete: imported=%d, skipped=%d\n", stats.Imported, stats.Skipped)
		return nil
	},
}

// readPayload decodes a JSON array of raw POI objects.
func readPayload(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read payload %s", path)
	}
	var pois []map[string]any
	if err := json.Unmarshal(data, &pois); err != nil {
		return nil, eris.Wrapf(err, "payload %s must be a JSON array of POIs", path)
	}
	return pois, nil
}

func init() {
	rootCmd.AddCommand(importCmd)
}
