// Package store persists the merged panel and the model fits to a
// SQLite database in the scratch directory, the structured artifact for
// downstream programmatic consumption.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"fbpanel/internal/dataset"
	"fbpanel/internal/predict"
)

// Store wraps the scratch SQLite database.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and applies migrations.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store: path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS panel_rows (
			bank_id      TEXT NOT NULL,
			year         INTEGER NOT NULL,
			quarter      INTEGER NOT NULL,
			event_index  INTEGER NOT NULL,
			assets       REAL,
			deposits     REAL,
			equity       REAL,
			end_cause    TEXT NOT NULL,
			dividends    REAL,
			recovery     REAL,
			good_assets      REAL,
			doubtful_assets  REAL,
			worthless_assets REAL,
			additional_assets     REAL,
			collected_from_assets REAL,
			failed       REAL,
			growth_short REAL,
			growth_long  REAL,
			q_short      INTEGER,
			q_long       INTEGER,
			PRIMARY KEY (bank_id, event_index)
		);
		CREATE TABLE IF NOT EXISTS model_fits (
			spec       TEXT NOT NULL,
			term       TEXT NOT NULL,
			coef       REAL NOT NULL,
			start_year INTEGER NOT NULL,
			end_year   INTEGER NOT NULL,
			auc_in     REAL,
			auc_out    REAL,
			PRIMARY KEY (spec, term)
		);
	`)
	return err
}

// SavePanel replaces the stored panel with rows.
func (s *Store) SavePanel(ctx context.Context, rows []dataset.PanelRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM panel_rows`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO panel_rows (
			bank_id, year, quarter, event_index, assets, deposits, equity,
			end_cause, dividends, recovery,
			good_assets, doubtful_assets, worthless_assets,
			additional_assets, collected_from_assets, failed,
			growth_short, growth_long, q_short, q_long
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err = stmt.ExecContext(ctx,
			r.BankID, r.Year, r.Quarter, r.EventIndex,
			nullable(r.Assets), nullable(r.Deposits), nullable(r.Equity),
			r.EndCause.String(), nullable(r.Dividends), nullable(r.RecoveryRate),
			nullable(r.GoodAssets), nullable(r.DoubtfulAssets), nullable(r.WorthlessAssets),
			nullable(r.AdditionalAssets), nullable(r.CollectedFromAssets),
			nullable(r.Failed),
			nullable(r.AssetGrowthShort), nullable(r.AssetGrowthLong),
			nullableBucket(r.GrowthQuintileShort), nullableBucket(r.GrowthQuintileLong),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SaveFits replaces the stored model-fit coefficients.
func (s *Store) SaveFits(ctx context.Context, fits []*predict.ModelFit) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM model_fits`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO model_fits (spec, term, coef, start_year, end_year, auc_in, auc_out)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range fits {
		if f == nil {
			continue
		}
		for j, coef := range f.Coef {
			term := "intercept"
			if j > 0 && j-1 < len(f.Spec.Regressors) {
				term = f.Spec.Regressors[j-1]
			}
			if _, err = stmt.ExecContext(ctx,
				f.Spec.Name, term, coef, f.StartYear, f.EndYear,
				nullable(f.AUCInSample), nullable(f.AUCOutOfSample),
			); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// CountPanelRows returns the number of stored panel rows.
func (s *Store) CountPanelRows(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM panel_rows`).Scan(&n)
	return n, err
}

// nullable converts the missing sentinel to SQL NULL so a missing value
// never lands in the database as zero.
func nullable(v float64) any {
	if dataset.IsMissing(v) {
		return nil
	}
	return v
}

func nullableBucket(b int) any {
	if b == 0 {
		return nil
	}
	return b
}
