package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	gormModels "gestor-pelada/gestor/internal/models/gorm"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PreferenceRepositoryGORM stores client preferences in the local database.
// Keys are scoped by namespace so several client profiles can share a file.
type PreferenceRepositoryGORM struct {
	db        *gorm.DB
	namespace string
}

func NewPreferenceRepositoryGORM(db *gorm.DB, namespace string) *PreferenceRepositoryGORM {
	return &PreferenceRepositoryGORM{db: db, namespace: namespace}
}

func (r *PreferenceRepositoryGORM) key(name string) string {
	return r.namespace + ":" + name
}

// Load returns the stored value and whether it exists.
func (r *PreferenceRepositoryGORM) Load(ctx context.Context, name string) (string, bool, error) {
	var pref gormModels.Preference

	err := r.db.WithContext(ctx).
		Where("key = ?", r.key(name)).
		First(&pref).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to load preference %s: %w", name, err)
	}

	return pref.Value, true, nil
}

// Save upserts the value.
func (r *PreferenceRepositoryGORM) Save(ctx context.Context, name, value string) error {
	pref := gormModels.Preference{Key: r.key(name), Value: value, UpdatedAt: time.Now().UTC()}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&pref).Error

	if err != nil {
		return fmt.Errorf("failed to save preference %s: %w", name, err)
	}
	return nil
}

func (r *PreferenceRepositoryGORM) Delete(ctx context.Context, name string) error {
	err := r.db.WithContext(ctx).
		Where("key = ?", r.key(name)).
		Delete(&gormModels.Preference{}).Error

	if err != nil {
		return fmt.Errorf("failed to delete preference %s: %w", name, err)
	}
	return nil
}
