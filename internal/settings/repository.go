package settings

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// Get returns the global row, inserting the defaults first if it does not exist.
	Get(ctx context.Context) (*Settings, error)
	Replace(ctx context.Context, s *Settings) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM settings repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Get(ctx context.Context) (*Settings, error) {
	defaults := Defaults()
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&defaults).Error
	if err != nil {
		return nil, fmt.Errorf("ensuring settings row: %w", err)
	}

	var s Settings
	if err := r.db.WithContext(ctx).Where("id = ?", GlobalID).First(&s).Error; err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	return &s, nil
}

// Replace writes every field of s onto the global row.
func (r *gormRepository) Replace(ctx context.Context, s *Settings) error {
	s.ID = GlobalID
	if _, err := r.Get(ctx); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).Model(&Settings{ID: GlobalID}).
		Select("*").Omit("id", "created_at").
		Updates(s).Error
	if err != nil {
		return fmt.Errorf("replacing settings: %w", err)
	}
	return nil
}
