package main

import (
	"context"
	"fmt"
	"time"

	"github.com/d2vault/d2vault/internal/persist"
	"go.uber.org/zap"
)

// importSaves decodes saves and stores the new ones. Files whose content
// hash is already present are skipped.
func (a *app) importSaves(ctx context.Context, args []string) error {
	results, err := a.decodeAll(ctx, args)
	if err != nil {
		return err
	}

	a.out.printBanner("import")
	a.out.printSection("Database")

	dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(dbCtx, a.cfg.Database, a.log.Named("db"))
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	a.out.printOK("PostgreSQL connected")

	schema, err := persist.RunMigrations(dbCtx, db.Pool)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	a.out.printStat("Schema version", schema)
	fmt.Fprintln(a.out.w)

	repo := persist.NewSaveRepo(db)
	a.out.printSection("Import")
	imported, skipped, failed := 0, 0, 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			a.out.printFail(r.Err.Error())
			continue
		}
		exists, err := repo.Exists(ctx, r.Hash)
		if err != nil {
			return fmt.Errorf("lookup %s: %w", r.Path, err)
		}
		if exists {
			skipped++
			a.log.Debug("already imported", zap.String("file", r.Path), zap.String("hash", r.Hash))
			continue
		}

		row := persist.NewCharacterRow(r.Path, r.Hash, r.Size, r.Save)
		items := persist.NewItemRows(r.Save)
		if err := repo.Import(ctx, row, items); err != nil {
			return fmt.Errorf("import %s: %w", r.Path, err)
		}
		imported++
		a.out.printOK(fmt.Sprintf("%s (%d items)", row.Name, len(items)))
		a.log.Info("imported",
			zap.String("file", r.Path),
			zap.Int64("id", row.ID),
			zap.Int("items", len(items)),
		)
	}

	fmt.Fprintln(a.out.w)
	a.out.printStat("Imported", imported)
	a.out.printStat("Already known", skipped)
	a.out.printStat("Failed", failed)
	if failed > 0 {
		return errFailed
	}
	return nil
}
