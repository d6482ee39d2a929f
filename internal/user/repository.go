package user

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	Touch(ctx context.Context, user *User) error
	Search(ctx context.Context, query string, limit int) ([]User, error)
}

type UserRepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

// Touch creates the user or refreshes its role and last login.
func (r *UserRepositoryImpl) Touch(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "last_login_at"}),
	}).Create(user).Error
}

// Search lists users whose name contains query, case-insensitively.
func (r *UserRepositoryImpl) Search(ctx context.Context, query string, limit int) ([]User, error) {
	var users []User
	tx := r.db.WithContext(ctx).Order("name ASC").Limit(limit)
	if q := strings.TrimSpace(query); q != "" {
		tx = tx.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}
	if err := tx.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
