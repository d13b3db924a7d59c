package cache

import (
	"context"

	"github.com/mikepea/daybook/pkg/daybook/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// GormBackend is the durable Backend: a SQLite database managed
// through GORM, schema auto-migrated from the model structs.
type GormBackend struct {
	db *gorm.DB
}

// NewGormBackend opens (or creates) the SQLite database at dsn and
// runs migrations.
func NewGormBackend(dsn string) (*GormBackend, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := models.AutoMigrate(db); err != nil {
		return nil, err
	}
	return &GormBackend{db: db}, nil
}

// NewGormBackendDB wraps an already-open GORM connection. Used by
// tests that share an in-memory database.
func NewGormBackendDB(db *gorm.DB) (*GormBackend, error) {
	if err := models.AutoMigrate(db); err != nil {
		return nil, err
	}
	return &GormBackend{db: db}, nil
}

func (b *GormBackend) FetchEntries(ctx context.Context) ([]*models.Entry, error) {
	var entries []*models.Entry
	err := b.db.WithContext(ctx).Find(&entries).Error
	return entries, err
}

func (b *GormBackend) FetchTags(ctx context.Context) ([]*models.Tag, error) {
	var tags []*models.Tag
	err := b.db.WithContext(ctx).Find(&tags).Error
	return tags, err
}

func (b *GormBackend) FetchLinks(ctx context.Context) ([]*models.Link, error) {
	var links []*models.Link
	err := b.db.WithContext(ctx).Find(&links).Error
	return links, err
}

func (b *GormBackend) FetchQueries(ctx context.Context) ([]*models.Query, error) {
	var queries []*models.Query
	err := b.db.WithContext(ctx).Find(&queries).Error
	return queries, err
}

func (b *GormBackend) FetchQueryResults(ctx context.Context) ([]*models.QueryResult, error) {
	var results []*models.QueryResult
	err := b.db.WithContext(ctx).Find(&results).Error
	return results, err
}

// Persist commits the change set in a single transaction: upserts
// first, then deletions.
func (b *GormBackend) Persist(ctx context.Context, cs *ChangeSet) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, e := range cs.Entries {
			if err := tx.Save(e).Error; err != nil {
				return err
			}
		}
		for _, t := range cs.Tags {
			if err := tx.Save(t).Error; err != nil {
				return err
			}
		}
		for _, l := range cs.Links {
			if err := tx.Save(l).Error; err != nil {
				return err
			}
		}
		for _, q := range cs.Queries {
			if err := tx.Save(q).Error; err != nil {
				return err
			}
		}
		for _, r := range cs.QueryResults {
			if err := tx.Save(r).Error; err != nil {
				return err
			}
		}
		if len(cs.DeletedQueryResults) > 0 {
			if err := tx.Delete(&models.QueryResult{}, "id IN ?", cs.DeletedQueryResults).Error; err != nil {
				return err
			}
		}
		if len(cs.DeletedQueries) > 0 {
			if err := tx.Delete(&models.Query{}, "id IN ?", cs.DeletedQueries).Error; err != nil {
				return err
			}
		}
		if len(cs.DeletedLinks) > 0 {
			if err := tx.Delete(&models.Link{}, "id IN ?", cs.DeletedLinks).Error; err != nil {
				return err
			}
		}
		if len(cs.DeletedEntries) > 0 {
			if err := tx.Delete(&models.Entry{}, "id IN ?", cs.DeletedEntries).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *GormBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
