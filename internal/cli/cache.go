package cli

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/swatchbook/internal/config"
	"github.com/jmylchreest/swatchbook/internal/recipecache/store"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the recipe cache",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List cached recipes, oldest first",
		Args:  cobra.NoArgs,
		RunE:  runCacheList,
	}
	listCmd.Flags().Bool("json", false, "output JSON")

	cmd.AddCommand(listCmd)
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print where the recipe snapshot is stored",
		Args:  cobra.NoArgs,
		RunE:  runCachePath,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show recipe cache statistics",
		Args:  cobra.NoArgs,
		RunE:  runCacheStats,
	})

	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runCacheList(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	entries := a.cache.Entries()
	out := cmd.OutOrStdout()

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(out, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "recipe cache is empty")
		return nil
	}
	fmt.Fprint(out, renderResults(entries, isStyled(out)))
	return nil
}

// snapshotLocation describes where cfg keeps the recipe snapshot.
func snapshotLocation(cfg config.Cache) string {
	switch cfg.Backend {
	case config.BackendFile:
		return filepath.Join(cfg.Dir, store.Filename(cfg.SnapshotKey))
	case config.BackendBadger:
		return fmt.Sprintf("%s (key %s)", filepath.Join(cfg.Dir, "badger"), cfg.SnapshotKey)
	case config.BackendRedis:
		return fmt.Sprintf("%s (key %s%s)", redactURL(cfg.RedisURL), cfg.RedisPrefix, cfg.SnapshotKey)
	default:
		return "in memory only"
	}
}

// redactURL hides any password in raw.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Redacted()
}

func runCachePath(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), snapshotLocation(cfg.Cache))
	return nil
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	counts := map[string]int{}
	for _, r := range a.cache.Entries() {
		counts[r.Provenance.String()]++
	}

	table := NewTable([]string{"SETTING", "VALUE"})
	table.AddRow([]string{"backend", a.cfg.Cache.Backend})
	table.AddRow([]string{"location", snapshotLocation(a.cfg.Cache)})
	table.AddRow([]string{"entries", fmt.Sprintf("%d / %d", a.cache.Len(), a.cache.MaxEntries())})
	for _, p := range []string{"ai", "cache", "heuristic"} {
		if n := counts[p]; n > 0 {
			table.AddRow([]string{"  " + p, fmt.Sprint(n)})
		}
	}
	table.AddRow([]string{"degraded", fmt.Sprint(a.cache.Degraded())})
	table.AddRow([]string{"remote", fmt.Sprint(a.coordinator.RemoteEnabled())})
	fmt.Fprint(cmd.OutOrStdout(), table.Render())
	return nil
}
