package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/swatchbook/internal/accessor"
	"github.com/jmylchreest/swatchbook/internal/colour"
)

func newRecipeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipe <hex>...",
		Short: "Show CMYK print recipes for one or more colours",
		Long: `Show the standard and smart CMYK recipes for each colour.

Colours may be written with or without a leading '#', in 3 or 6 digit form.
Invalid colours fall back to #FFFFFF. Colours are resolved in one batch;
anything already cached is not requested again.`,
		Example: `  swatchbook recipe '#6366F1' e11d48 0f0
  swatchbook recipe --json 22c55e`,
		Args: cobra.MinimumNArgs(1),
		RunE: runRecipe,
	}

	cmd.Flags().Bool("json", false, "output JSON")
	cmd.Flags().Bool("no-wait", false, "print immediately with cached or heuristic recipes")
	cmd.Flags().Duration("timeout", 60*time.Second, "how long to wait for smart recipes")

	return cmd
}

func runRecipe(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close(context.WithoutCancel(ctx))

	view := accessor.New(a.coordinator, a.cache, accessor.WithLogger(a.logger.Named("accessor")))
	defer view.Close()

	view.SetColours(args)

	if noWait, _ := cmd.Flags().GetBool("no-wait"); !noWait {
		timeout, _ := cmd.Flags().GetDuration("timeout")
		waitCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := view.Wait(waitCtx); err != nil {
			a.logger.Warn("smart recipes not ready, showing best available", "error", err)
		}
	}

	results := view.Results()

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(cmd.OutOrStdout(), results)
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, renderResults(results, isStyled(out)))
	if view.Loading() {
		fmt.Fprintln(out, "\nsmart recipes are still loading; run again to see them")
	}
	if !a.coordinator.RemoteEnabled() {
		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
			fmt.Fprintf(out, "\nno remote credential configured; smart recipes use built-in %s rules\n", colour.ProvenanceHeuristic)
		}
	}
	return nil
}
