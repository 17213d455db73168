package d2s

import (
	"errors"
	"fmt"

	"github.com/d2vault/d2vault/internal/codec"
	"github.com/d2vault/d2vault/internal/item"
	"go.uber.org/zap"
)

// ItemReader parses single items and finds item boundaries.
type ItemReader interface {
	// ReadItem parses one item at the cursor. It fails with
	// codec.ErrSignatureMismatch when no item starts there and with
	// codec.ErrInvalidFormat when the item is malformed.
	ReadItem(in *codec.ByteReader) (*item.Item, error)
	// SkipToNext moves the cursor to the next recognizable item start, or
	// fails with codec.ErrEndOfInput.
	SkipToNext(in *codec.ByteReader) error
}

// readItemList reads an items section: signature, 16-bit count, then count
// items. Malformed items are dropped and counted; the list resynchronizes
// at the next item boundary.
func readItemList(in *codec.ByteReader, items ItemReader, log *zap.Logger) (ItemList, error) {
	var list ItemList
	if err := in.ReadSignature(ItemsSignature); err != nil {
		return list, err
	}
	count, err := in.ReadSafe16u()
	if err != nil {
		return list, err
	}
	log.Debug("reading items", zap.Int16("count", count))

	list.Items = make([]*item.Item, 0, count)
	for i := 0; i < int(count); {
		at := in.Offset()
		it, err := items.ReadItem(in)
		switch {
		case err == nil:
			list.Items = append(list.Items, it)
			i++
			continue
		case errors.Is(err, codec.ErrInvalidFormat):
			log.Warn("dropping malformed item", zap.Int("item", i), zap.Int("offset", at), zap.Error(err))
			list.Errors++
			i++
		case errors.Is(err, codec.ErrSignatureMismatch):
			// Not an item start: retry the same index at the next boundary.
			log.Warn("item signature mismatch", zap.Int("item", i), zap.Int("offset", at), zap.Error(err))
		default:
			return list, fmt.Errorf("item %d: %w", i, err)
		}
		if err := resync(in, items, at); err != nil {
			return list, fmt.Errorf("item %d: resync: %w", i, err)
		}
	}
	if list.Errors > 0 {
		log.Warn("items could not be loaded due to formatting errors", zap.Int("errors", list.Errors))
	}
	return list, nil
}

// resync moves in to the next item boundary strictly after failedAt, so a
// reader that fails without consuming input cannot stall the list.
func resync(in *codec.ByteReader, items ItemReader, failedAt int) error {
	if err := items.SkipToNext(in); err != nil {
		return err
	}
	if in.Offset() > failedAt {
		return nil
	}
	if err := in.SkipBytes(1); err != nil {
		return err
	}
	return items.SkipToNext(in)
}

// readMercItems reads the merc section. With no merc hired the section
// body is not read and m is left as decoded from the header.
func readMercItems(in *codec.ByteReader, m *MercData, items ItemReader, log *zap.Logger) error {
	if err := in.ReadSignature(MercSignature); err != nil {
		return err
	}
	if !m.Hired() {
		log.Debug("no merc hired")
		return nil
	}
	list, err := readItemList(in, items, log)
	if err != nil {
		return err
	}
	m.Items = &list
	return nil
}

func readGolemData(in *codec.ByteReader, g *GolemData, items ItemReader, log *zap.Logger) error {
	if err := in.ReadSignature(GolemSignature); err != nil {
		return err
	}
	bits := in.OpenBits()
	exists, err := bits.ReadBool()
	if err != nil {
		return err
	}
	g.Exists = exists
	log.Debug("golem", zap.Bool("exists", exists))
	if !exists {
		return nil
	}
	it, err := items.ReadItem(bits.Align())
	if err != nil {
		return err
	}
	g.Item = it
	return nil
}
