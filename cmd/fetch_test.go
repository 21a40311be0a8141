package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFetchTestCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "fetch"}
	cmd.Flags().Float64("lat", 0, "")
	cmd.Flags().Float64("lng", 0, "")
	cmd.Flags().Int("radius", 0, "")
	cmd.Flags().String("categories", "", "")
	cmd.Flags().String("output", "", "")
	cmd.Flags().Bool("import", false, "")
	return cmd
}

func TestParseFetchOpts(t *testing.T) {
	cmd := newFetchTestCmd()
	require.NoError(t, cmd.Flags().Set("lat", "48.8566"))
	require.NoError(t, cmd.Flags().Set("lng", "2.3522"))
	require.NoError(t, cmd.Flags().Set("radius", "15000"))
	require.NoError(t, cmd.Flags().Set("categories", "culture, nature,"))
	require.NoError(t, cmd.Flags().Set("output", "pois.json"))
	require.NoError(t, cmd.Flags().Set("import", "true"))

	opts, err := parseFetchOpts(cmd)
	require.NoError(t, err)
	assert.Equal(t, 48.8566, opts.Lat)
	assert.Equal(t, 2.3522, opts.Lng)
	assert.Equal(t, 15000, opts.Radius)
	assert.Equal(t, []string{"culture", "nature"}, opts.Categories)
	assert.Equal(t, "pois.json", opts.Output)
	assert.True(t, opts.Import)
}

func TestParseFetchOpts_EmptyCategories(t *testing.T) {
	opts, err := parseFetchOpts(newFetchTestCmd())
	require.NoError(t, err)
	assert.Nil(t, opts.Categories)
}
