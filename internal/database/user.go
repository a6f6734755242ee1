package database

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thereayou/secure-profile/internal/models"
)

func (d *Database) GetUser(ctx context.Context, id string) (*models.User, error) {
	user := models.User{}
	if err := d.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (d *Database) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user := models.User{}
	if err := d.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (d *Database) ListUsers(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	if err := d.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpsertUser inserts or fully overwrites the record with user.ID. The
// username check and the write share one transaction; the unique index
// catches whatever slips between concurrent transactions.
func (d *Database) UpsertUser(ctx context.Context, user *models.User) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		err := tx.Model(&models.User{}).
			Where("username = ? AND id <> ?", user.Username, user.ID).
			Count(&taken).Error
		if err != nil {
			return err
		}
		if taken > 0 {
			return models.ErrUsernameTaken
		}

		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(user).Error
		return translate(err)
	})
}

// ImportUsers upserts every record that is not already present, leaving
// existing rows untouched. Used to seed a fresh database from users.json.
func (d *Database) ImportUsers(ctx context.Context, users []*models.User) (int, error) {
	imported := 0
	for _, u := range users {
		_, err := d.GetUser(ctx, u.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, models.ErrUserNotFound) {
			return imported, err
		}
		if err := d.UpsertUser(ctx, u); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.ErrUserNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return models.ErrUsernameTaken
	default:
		return err
	}
}
