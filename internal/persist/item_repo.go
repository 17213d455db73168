package persist

import (
	"context"
	"fmt"

	"github.com/d2vault/d2vault/internal/d2s"
	"github.com/d2vault/d2vault/internal/item"
	"github.com/jackc/pgx/v5"
)

// Item owners.
const (
	OwnerCharacter = "character"
	OwnerMerc      = "merc"
	OwnerGolem     = "golem"
)

// ItemRow represents a persisted item. Socketed children follow their
// parent and point at it through SocketParent.
type ItemRow struct {
	ID           int64
	CharacterID  int64
	Owner        string
	Position     int32
	SocketParent *int32
	Code         string
	Flags        int64
	Location     int16
	BodyLocation int16
	GridX        int16
	GridY        int16
	Store        int16
	EarName      *string
	Raw          []byte
}

// NewItemRows flattens the items of a save: character items, merc items,
// then the golem item, each owner numbered from 0.
func NewItemRows(s *d2s.Save) []ItemRow {
	var rows []ItemRow
	rows = appendItems(rows, OwnerCharacter, s.Items.Items)
	if s.Merc.Items != nil {
		rows = appendItems(rows, OwnerMerc, s.Merc.Items.Items)
	}
	if s.Golem.Item != nil {
		rows = appendItems(rows, OwnerGolem, []*item.Item{s.Golem.Item})
	}
	return rows
}

func appendItems(rows []ItemRow, owner string, items []*item.Item) []ItemRow {
	var pos int32
	var add func(it *item.Item, parent *int32)
	add = func(it *item.Item, parent *int32) {
		row := ItemRow{
			Owner:        owner,
			Position:     pos,
			SocketParent: parent,
			Code:         it.Code,
			Flags:        int64(it.Flags),
			Location:     int16(it.Location),
			BodyLocation: int16(it.BodyLoc),
			GridX:        int16(it.GridX),
			GridY:        int16(it.GridY),
			Store:        int16(it.Store),
			Raw:          it.Raw,
		}
		if it.Ear != nil {
			name := it.Ear.Name
			row.EarName = &name
		}
		rows = append(rows, row)
		self := pos
		pos++
		for _, child := range it.Socketed {
			add(child, &self)
		}
	}
	for _, it := range items {
		add(it, nil)
	}
	return rows
}

func insertItems(ctx context.Context, tx pgx.Tx, characterID int64, items []ItemRow) error {
	for i := range items {
		it := &items[i]
		it.CharacterID = characterID
		if err := tx.QueryRow(ctx,
			`INSERT INTO character_items (
				character_id, owner, position, socket_parent, code, flags,
				location, body_location, grid_x, grid_y, store, ear_name, raw
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
			RETURNING id`,
			it.CharacterID, it.Owner, it.Position, it.SocketParent, it.Code, it.Flags,
			it.Location, it.BodyLocation, it.GridX, it.GridY, it.Store, it.EarName, it.Raw,
		).Scan(&it.ID); err != nil {
			return fmt.Errorf("insert %s item %d: %w", it.Owner, it.Position, err)
		}
	}
	return nil
}

// LoadItems returns all items of a character in owner and position order.
func (r *SaveRepo) LoadItems(ctx context.Context, characterID int64) ([]ItemRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, character_id, owner, position, socket_parent, code, flags,
		        location, body_location, grid_x, grid_y, store, ear_name, raw
		 FROM character_items WHERE character_id = $1
		 ORDER BY owner, position`, characterID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ItemRow
	for rows.Next() {
		var it ItemRow
		if err := rows.Scan(
			&it.ID, &it.CharacterID, &it.Owner, &it.Position, &it.SocketParent, &it.Code, &it.Flags,
			&it.Location, &it.BodyLocation, &it.GridX, &it.GridY, &it.Store, &it.EarName, &it.Raw,
		); err != nil {
			return nil, err
		}
		result = append(result, it)
	}
	return result, rows.Err()
}
