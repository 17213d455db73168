package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/d2vault/d2vault/internal/d2s"
	"github.com/jackc/pgx/v5"
)

// CharacterRow is one imported save.
type CharacterRow struct {
	ID             int64
	ContentHash    string
	FilePath       string
	FileSize       int32
	Name           string
	Class          int16
	Level          int16
	StatusFlags    int64
	Hardcore       bool
	Expansion      bool
	Died           bool
	SavedAt        *time.Time
	Strength       int32
	Energy         int32
	Dexterity      int32
	Vitality       int32
	Experience     int64
	Gold           int64
	GoldBank       int64
	Skills         []int16
	MercHired      bool
	MercExperience int32
	Golem          bool
	ItemErrors     int32
	ImportedAt     time.Time
}

// NewCharacterRow maps a decoded save to a row.
func NewCharacterRow(path, hash string, size int, s *d2s.Save) *CharacterRow {
	row := &CharacterRow{
		ContentHash:    hash,
		FilePath:       path,
		FileSize:       int32(size),
		Name:           s.DisplayName(),
		Class:          int16(s.Class),
		Level:          int16(s.Level),
		StatusFlags:    int64(s.Flags),
		Hardcore:       s.Hardcore(),
		Expansion:      s.Expansion(),
		Died:           s.Died(),
		Strength:       s.Stats.Strength,
		Energy:         s.Stats.Energy,
		Dexterity:      s.Stats.Dexterity,
		Vitality:       s.Stats.Vitality,
		Experience:     s.Stats.Experience,
		Gold:           s.Stats.Gold,
		GoldBank:       s.Stats.GoldBank,
		MercHired:      s.Merc.Hired(),
		MercExperience: s.Merc.Experience,
		Golem:          s.Golem.Exists,
		ItemErrors:     int32(s.Items.Errors),
	}
	if s.Timestamp != 0 {
		t := time.Unix(int64(s.Timestamp), 0).UTC()
		row.SavedAt = &t
	}
	row.Skills = make([]int16, len(s.Skills.Skills))
	for i, p := range s.Skills.Skills {
		row.Skills[i] = int16(p)
	}
	if s.Merc.Items != nil {
		row.ItemErrors += int32(s.Merc.Items.Errors)
	}
	return row
}

// SaveRepo stores decoded saves and their items.
type SaveRepo struct {
	db *DB
}

func NewSaveRepo(db *DB) *SaveRepo {
	return &SaveRepo{db: db}
}

// Exists reports whether a save with this content hash was imported.
func (r *SaveRepo) Exists(ctx context.Context, hash string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM characters WHERE content_hash = $1)`, hash,
	).Scan(&exists)
	return exists, err
}

// Import inserts the character and its items in one transaction and sets c.ID.
func (r *SaveRepo) Import(ctx context.Context, c *CharacterRow, items []ItemRow) error {
	skills, err := json.Marshal(c.Skills)
	if err != nil {
		return err
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("import begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO characters (
			content_hash, file_path, file_size, name, class, level,
			status_flags, hardcore, expansion, died, saved_at,
			strength, energy, dexterity, vitality,
			experience, gold, gold_bank, skills,
			merc_hired, merc_experience, golem, item_errors
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,
			$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23
		) RETURNING id, imported_at`,
		c.ContentHash, c.FilePath, c.FileSize, c.Name, c.Class, c.Level,
		c.StatusFlags, c.Hardcore, c.Expansion, c.Died, c.SavedAt,
		c.Strength, c.Energy, c.Dexterity, c.Vitality,
		c.Experience, c.Gold, c.GoldBank, skills,
		c.MercHired, c.MercExperience, c.Golem, c.ItemErrors,
	).Scan(&c.ID, &c.ImportedAt)
	if err != nil {
		return fmt.Errorf("insert character: %w", err)
	}

	if err := insertItems(ctx, tx, c.ID, items); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// List returns the most recently imported characters.
func (r *SaveRepo) List(ctx context.Context, limit int) ([]CharacterRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+characterColumns+`
		 FROM characters
		 ORDER BY imported_at DESC, id DESC
		 LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CharacterRow
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

// LoadByHash returns the character imported from content hash, or nil.
func (r *SaveRepo) LoadByHash(ctx context.Context, hash string) (*CharacterRow, error) {
	c, err := scanCharacter(r.db.Pool.QueryRow(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE content_hash = $1`, hash,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

const characterColumns = `id, content_hash, file_path, file_size, name, class, level,
		        status_flags, hardcore, expansion, died, saved_at,
		        strength, energy, dexterity, vitality,
		        experience, gold, gold_bank, skills,
		        merc_hired, merc_experience, golem, item_errors, imported_at`

func scanCharacter(row pgx.Row) (*CharacterRow, error) {
	var c CharacterRow
	var skills []byte
	if err := row.Scan(
		&c.ID, &c.ContentHash, &c.FilePath, &c.FileSize, &c.Name, &c.Class, &c.Level,
		&c.StatusFlags, &c.Hardcore, &c.Expansion, &c.Died, &c.SavedAt,
		&c.Strength, &c.Energy, &c.Dexterity, &c.Vitality,
		&c.Experience, &c.Gold, &c.GoldBank, &skills,
		&c.MercHired, &c.MercExperience, &c.Golem, &c.ItemErrors, &c.ImportedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(skills, &c.Skills); err != nil {
		return nil, fmt.Errorf("character %d skills: %w", c.ID, err)
	}
	return &c, nil
}
