package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/models"
)

type AIRepository struct {
	db *gorm.DB
}

func NewAIRepository(db *gorm.DB) *AIRepository {
	return &AIRepository{db: db}
}

func (r *AIRepository) CreateAIRequestLog(ctx context.Context, l *models.AIRequestLog) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *AIRepository) ListAIRequestLogs(ctx context.Context, userID uuid.UUID, limit int) ([]models.AIRequestLog, error) {
	var logs []models.AIRequestLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
