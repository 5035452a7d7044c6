package repo

import (
	"context"
	"errors"

	"github.com/Skotchmaster/artesan_shop/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionRepo struct {
	DB *gorm.DB
}

// Set points the single session row at userID, creating it if absent.
func (r *SessionRepo) Set(ctx context.Context, userID string) error {
	row := models.Session{ID: models.SessionRowID, UserID: userID}
	err := r.DB.WithContext(ctx).
		Omit("User").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id"}),
		}).
		Create(&row).Error
	return translate(err)
}

// CurrentUserID returns "" when nobody is logged in.
func (r *SessionRepo) CurrentUserID(ctx context.Context) (string, error) {
	var row models.Session
	err := r.DB.WithContext(ctx).Where("id = ?", models.SessionRowID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return row.UserID, nil
}

func (r *SessionRepo) Clear(ctx context.Context) error {
	return r.DB.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Session{}).Error
}
