package repositories

import (
	"context"
	"errors"
	"fmt"

	"gestor-pelada/gestor/internal/models/entities"
	gormModels "gestor-pelada/gestor/internal/models/gorm"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionRepositoryGORM keeps one saved session per client slot.
type SessionRepositoryGORM struct {
	db   *gorm.DB
	slot string
}

func NewSessionRepositoryGORM(db *gorm.DB, slot string) *SessionRepositoryGORM {
	return &SessionRepositoryGORM{db: db, slot: slot}
}

// Load returns the saved session, or nil when the slot is empty.
func (r *SessionRepositoryGORM) Load(ctx context.Context) (*entities.Session, error) {
	var stored gormModels.StoredSession

	err := r.db.WithContext(ctx).
		Where("slot = ?", r.slot).
		First(&stored).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	return &entities.Session{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		TokenType:    stored.TokenType,
		UserID:       stored.UserID,
		Email:        stored.Email,
		ExpiresAt:    stored.ExpiresAt.UTC(),
	}, nil
}

func (r *SessionRepositoryGORM) Save(ctx context.Context, session entities.Session) error {
	stored := gormModels.StoredSession{
		Slot:         r.slot,
		UserID:       session.UserID,
		Email:        session.Email,
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		TokenType:    session.TokenType,
		ExpiresAt:    session.ExpiresAt.UTC(),
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "slot"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"user_id", "email", "access_token", "refresh_token", "token_type", "expires_at", "updated_at",
			}),
		}).
		Create(&stored).Error

	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *SessionRepositoryGORM) Clear(ctx context.Context) error {
	err := r.db.WithContext(ctx).
		Where("slot = ?", r.slot).
		Delete(&gormModels.StoredSession{}).Error

	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
