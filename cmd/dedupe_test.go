package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDedupeTestCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "dedupe"}
	cmd.Flags().Bool("apply", false, "")
	cmd.Flags().String("backup", "", "")
	return cmd
}

func TestParseDedupeOpts_Defaults(t *testing.T) {
	opts, err := parseDedupeOpts(newDedupeTestCmd())
	require.NoError(t, err)
	assert.False(t, opts.Apply)
	assert.Empty(t, opts.Backup)
}

func TestParseDedupeOpts_ApplyWithBackup(t *testing.T) {
	cmd := newDedupeTestCmd()
	require.NoError(t, cmd.Flags().Set("apply", "true"))
	require.NoError(t, cmd.Flags().Set("backup", "  backups/run.json  "))

	opts, err := parseDedupeOpts(cmd)
	require.NoError(t, err)
	assert.True(t, opts.Apply)
	assert.Equal(t, "backups/run.json", opts.Backup)
}
