package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/allspots/spots-cli/internal/dedupe"
	"github.com/allspots/spots-cli/internal/store"
)

// dedupeOpts holds parsed dedupe command flags.
type dedupeOpts struct {
	Apply  bool
	Backup string
}

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Find and eliminate duplicate spots",
	Long: `Scans the spots collection, groups records by canonical key, and reports
duplicate groups. Dry run by default: nothing is mutated without --apply.
With --backup, every record slated for deletion is serialized to the given
file before any write happens.

Do not run two passes concurrently against the same collection.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("store"); err != nil {
			return err
		}
		opts, err := parseDedupeOpts(cmd)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		zap.L().Info("scanning spots collection")
		records, err := store.ScanAll(ctx, st, cfg.Dedupe.PageSize)
		if err != nil {
			return err
		}

		groups := dedupe.BuildPlan(records)
		duplicates := dedupe.TotalDuplicates(groups)

		fmt.Printf("Documents scanned:  %d\n", len(records))
		fmt.Printf("Duplicate groups:   %d\n", len(groups))
		fmt.Printf("Duplicate records:  %d\n", duplicates)

		if len(groups) > 0 {
			fmt.Println("\nSample groups (5 max):")
			for _, g := range groups[:min(5, len(groups))] {
				ids := make([]string, 0, len(g.All))
				for _, rec := range g.All {
					ids = append(ids, rec.ID)
				}
				fmt.Printf("  - key=%s\n    keeper=%s\n    docs=[%s]\n", g.Key, g.Keeper.ID, strings.Join(ids, ", "))
				if spread := g.SpreadMeters(); spread > 0 {
					fmt.Printf("    spread=%.0fm\n", spread)
				}
			}
		}

		if !opts.Apply {
			fmt.Println("\nDry run: nothing was deleted. Re-run with --apply to execute the plan.")
			return nil
		}

		if duplicates == 0 {
			fmt.Println("\nNo duplicates to remove.")
			return nil
		}

		applier, err := dedupe.NewApplier(st, cfg.Dedupe.KeeperBatchSize, cfg.Dedupe.DeleteBatchSize)
		if err != nil {
			return err
		}
		result, err := applier.Apply(ctx, groups, opts.Backup)
		if err != nil {
			return err
		}

		if result.BackupPath != "" {
			fmt.Printf("\nBackup written: %s\n", result.BackupPath)
		}
		fmt.Printf("Done: keepers updated=%d, duplicates deleted=%d\n", result.KeepersUpdated, result.Deleted)
		return nil
	},
}

func parseDedupeOpts(cmd *cobra.Command) (dedupeOpts, error) {
	apply, err := cmd.Flags().GetBool("apply")
	if err != nil {
		return dedupeOpts{}, err
	}
	backup, err := cmd.Flags().GetString("backup")
	if err != nil {
		return dedupeOpts{}, err
	}
	return dedupeOpts{Apply: apply, Backup: strings.TrimSpace(backup)}, nil
}

func init() {
	rootCmd.AddCommand(dedupeCmd)
	dedupeCmd.Flags().Bool("apply", false, "Execute the plan (default is dry run)")
	dedupeCmd.Flags().String("backup", "", "Write deleted records to this JSON file before applying")
}
