package db

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/damon-houk/freight-forecast-service/internal/domain/entity"
	"github.com/dgraph-io/badger/v3"
)

const uploadKeyPrefix = "upload:"

// BadgerUploadRepository implements the upload catalog using BadgerDB
type BadgerUploadRepository struct {
	db *badger.DB
}

// NewBadgerUploadRepository creates a new BadgerDB upload repository
func NewBadgerUploadRepository(db *badger.DB) *BadgerUploadRepository {
	return &BadgerUploadRepository{db: db}
}

// OpenBadger opens (creating if needed) a BadgerDB at dir with logging disabled
func OpenBadger(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return db, nil
}

// Save records an upload keyed by its stored name, so a re-upload
// replaces the previous entry
func (r *BadgerUploadRepository) Save(ctx context.Context, upload *entity.Upload) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(upload)
	if err != nil {
		return fmt.Errorf("failed to marshal upload: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(uploadKeyPrefix+upload.StoredName), data)
	})
	if err != nil {
		return fmt.Errorf("failed to store upload: %w", err)
	}

	return nil
}

// FindByCategory lists the uploads of a category, newest first
func (r *BadgerUploadRepository) FindByCategory(ctx context.Context, category string) ([]*entity.Upload, error) {
	// "bid_" also prefixes uploads of a category named "bid_x", so filter on the decoded category
	uploads, err := r.scan(ctx, uploadKeyPrefix+entity.CategoryPrefix(category))
	if err != nil {
		return nil, err
	}

	matching := uploads[:0]
	for _, u := range uploads {
		if u.Category == category {
			matching = append(matching, u)
		}
	}
	return matching, nil
}

// List returns every recorded upload, newest first
func (r *BadgerUploadRepository) List(ctx context.Context) ([]*entity.Upload, error) {
	return r.scan(ctx, uploadKeyPrefix)
}

func (r *BadgerUploadRepository) scan(ctx context.Context, prefix string) ([]*entity.Upload, error) {
	var uploads []*entity.Upload

	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var u entity.Upload
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &u)
			})
			if err != nil {
				return fmt.Errorf("failed to decode upload %s: %w", it.Item().Key(), err)
			}
			uploads = append(uploads, &u)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}

	sort.SliceStable(uploads, func(i, j int) bool {
		return uploads[i].UploadedAt.After(uploads[j].UploadedAt)
	})

	return uploads, nil
}
