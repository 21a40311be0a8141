package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/allspots/spots-cli/internal/ingest"
	"github.com/allspots/spots-cli/pkg/overpass"
)

// fetchOpts holds parsed fetch command flags.
type fetchOpts struct {
	Lat        float64
	Lng        float64
	Radius     int
	Categories []string
	Output     string
	Import     bool
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch POIs from OpenStreetMap",
	Long: `Queries the Overpass API for named POIs around a point and either writes
them to a JSON file (--output) or feeds them straight into the import-time
resolver (--import).`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("overpass"); err != nil {
			return err
		}
		opts, err := parseFetchOpts(cmd)
		if err != nil {
			return err
		}
		if opts.Output == "" && !opts.Import {
			return eris.New("nothing to do: pass --output and/or --import")
		}

		client := overpass.NewClient(overpass.Options{
			BaseURL:    cfg.Overpass.BaseURL,
			Timeout:    time.Duration(cfg.Overpass.TimeoutSecs) * time.Second,
			MaxRetries: cfg.Overpass.MaxRetries,
			RatePerSec: cfg.Overpass.RatePerSec,
		})

		pois, err := client.FetchPOIs(ctx, overpass.Query{
			Lat:        opts.Lat,
			Lng:        opts.Lng,
			Radius:     opts.Radius,
			Categories: opts.Categories,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Fetched %d POIs\n", len(pois))

		if opts.Output != "" {
			data, err := json.MarshalIndent(pois, "", "  ")
			if err != nil {
				return eris.Wrap(err, "marshal POIs")
			}
			if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
				return eris.Wrapf(err, "write %s", opts.Output)
			}
			fmt.Printf("Wrote %s\n", opts.Output)
		}

		if opts.Import {
			if err := cfg.Validate("store"); err != nil {
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
		}

		return nil
	},
}

func parseFetchOpts(cmd *cobra.Command) (fetchOpts, error) {
	var opts fetchOpts
	var err error

	if opts.Lat, err = cmd.Flags().GetFloat64("lat"); err != nil {
		return opts, err
	}
	if opts.Lng, err = cmd.Flags().GetFloat64("lng"); err != nil {
		return opts, err
	}
	if opts.Radius, err = cmd.Flags().GetInt("radius"); err != nil {
		return opts, err
	}
	if opts.Output, err = cmd.Flags().GetString("output"); err != nil {
		return opts, err
	}
	if opts.Import, err = cmd.Flags().GetBool("import"); err != nil {
		return opts, err
	}

	raw, err := cmd.Flags().GetString("categories")
	if err != nil {
		return opts, err
	}
	for _, cat := range strings.Split(raw, ",") {
		if cat = strings.TrimSpace(cat); cat != "" {
			opts.Categories = append(opts.Categories, cat)
		}
	}

	return opts, nil
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().Float64("lat", 0, "Latitude of the search center")
	fetchCmd.Flags().Float64("lng", 0, "Longitude of the search center")
	fetchCmd.Flags().Int("radius", 0, "Search radius in meters (clamped to 1000..50000)")
	fetchCmd.Flags().String("categories", "", "Comma-separated category filter (default: all)")
	fetchCmd.Flags().String("output", "", "Write fetched POIs to this JSON file")
	fetchCmd.Flags().Bool("import", false, "Import fetched POIs into the store")
	_ = fetchCmd.MarkFlagRequired("lat")
	_ = fetchCmd.MarkFlagRequired("lng")
}
