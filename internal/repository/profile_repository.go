package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/models"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) FreelancerByUserID(ctx context.Context, userID uuid.UUID) (*models.FreelancerProfile, error) {
	var p models.FreelancerProfile
	if err := r.db.WithContext(ctx).First(&p, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) RecruiterByUserID(ctx context.Context, userID uuid.UUID) (*models.RecruiterProfile, error) {
	var p models.RecruiterProfile
	if err := r.db.WithContext(ctx).First(&p, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateFreelancer writes fields and returns the stored row.
func (r *ProfileRepository) UpdateFreelancer(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.FreelancerProfile, error) {
	var p models.FreelancerProfile
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.FreelancerProfile{}).Where("id = ?", id).Updates(fields)
		if err := affected(res); err != nil {
			return err
		}
		return tx.First(&p, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) UpdateRecruiter(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.RecruiterProfile, error) {
	var p models.RecruiterProfile
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.RecruiterProfile{}).Where("id = ?", id).Updates(fields)
		if err := affected(res); err != nil {
			return err
		}
		return tx.First(&p, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}
