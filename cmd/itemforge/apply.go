package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/l1jgo/itemforge/internal/apply"
	"github.com/l1jgo/itemforge/internal/data"
	"github.com/l1jgo/itemforge/internal/patch"
	"github.com/l1jgo/itemforge/internal/persist"
)

var (
	applyExportKeywords string
	applyNoAudit        bool
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Replay every stored patch document onto the catalog",
	Long:  `Apply loads the catalog, replays shared documents and then local ones, and reports per-document outcomes. With a database DSN configured the run is recorded.`,
	RunE:  runApply,
}

func init() {
	applyCmd.Flags().StringVar(&applyExportKeywords, "export-keywords", "", "write the keyword change list to this file")
	applyCmd.Flags().BoolVar(&applyNoAudit, "no-audit", false, "do not record the run in the database")
}

func runApply(_ *cobra.Command, _ []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	cfg := a.cfg

	cat, err := data.LoadCatalog(cfg.Data.Catalog)
	if err != nil {
		return err
	}
	kw, err := data.LoadKeywordSets(cfg.Data.Keywords)
	if err != nil {
		return err
	}
	a.log.Info("catalog loaded", zap.Int("items", cat.Count()), zap.Int("scopes", len(cat.Scopes())))

	applier := apply.New(cat, apply.Config{
		Interesting: kw.Interesting,
		RoundWeight: cfg.Patch.RoundWeight,
		WarmthScale: cfg.Rebalance.WarmthScale,
		CraftBench:  cfg.Rebalance.CraftBench,
		TemperBench: cfg.Rebalance.TemperBench,
		Local:       cfg.Permissions.Local,
		Shared:      cfg.Permissions.Shared,
	}, a.log, a.bus)

	store := patch.NewStore(cfg.Patch.Dir, a.log)
	sum := applier.ApplyAll(store)

	for _, d := range sum.Documents {
		fmt.Printf("%-7s %-32s applied %4d  failed %4d  skipped %4d\n",
			d.Scope, d.Origin, d.Applied, d.Failed, d.Skipped)
	}
	fmt.Printf("total   %-32s applied %4d  failed %4d  skipped %4d\n",
		"", sum.Total.Applied, sum.Total.Failed, sum.Total.Skipped)
	if sum.Invalid > 0 {
		fmt.Printf("invalid documents: %d\n", sum.Invalid)
	}

	if applyExportKeywords != "" {
		if err := exportKeywords(applier.State(), applyExportKeywords); err != nil {
			return err
		}
	}

	if cfg.Database.DSN != "" && !applyNoAudit {
		if err := audit(a, sum); err != nil {
			// The catalog is already patched; a lost audit row is not fatal.
			a.log.Warn("apply run not recorded", zap.Error(err))
		}
	}
	return a.finish()
}

func exportKeywords(st *apply.State, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export keywords: %w", err)
	}
	if err := st.ExportKeywords(f); err != nil {
		f.Close()
		return fmt.Errorf("export keywords: %w", err)
	}
	return f.Close()
}

func audit(a *app, sum *apply.Summary) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, a.cfg.Database, a.log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	version, err := db.RunMigrations(ctx)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	id, err := persist.NewRunRepo(db).Record(ctx, sum)
	if err != nil {
		return err
	}
	a.log.Info("apply run recorded", zap.String("run_id", id.String()), zap.Int64("schema", version))
	return nil
}
