package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/models"
)

var ErrEmailTaken = errors.New("email already registered")

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// UserByID loads the user with whichever profile matches its role.
func (r *UserRepository) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).
		Preload("FreelancerProfile").
		Preload("RecruiterProfile").
		First(&u, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts the user and its empty role profile in one transaction.
func (r *UserRepository) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(u).Error; err != nil {
			return err
		}
		switch u.Role {
		case models.RoleFreelancer:
			p := &models.FreelancerProfile{ID: uuid.New(), UserID: u.ID, FullName: u.Name}
			if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
				return err
			}
			u.FreelancerProfile = p
		case models.RoleRecruiter:
			p := &models.RecruiterProfile{ID: uuid.New(), UserID: u.ID}
			if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
				return err
			}
			u.RecruiterProfile = p
		}
		return nil
	})
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

func (r *UserRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("name", name).Error
}

func (r *UserRepository) TouchLogin(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_login_at", gorm.Expr("NOW()")).Error
}

// isUniqueViolation needs gorm.Config.TranslateError, set by db.Connect.
func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
