package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/models"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/services/stats"
)

type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) ProfileByID(ctx context.Context, id uuid.UUID) (*models.FreelancerProfile, error) {
	var p models.FreelancerProfile
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *StatsRepository) ProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.FreelancerProfile, error) {
	var p models.FreelancerProfile
	if err := r.db.WithContext(ctx).First(&p, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *StatsRepository) ProfileCounts(ctx context.Context, profileID uuid.UUID) (stats.Counts, error) {
	var c stats.Counts
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.Application{}).
		Where("freelancer_profile_id = ?", profileID).
		Count(&c.Applications).Error; err != nil {
		return c, err
	}
	if err := db.Model(&models.Application{}).
		Where("freelancer_profile_id = ? AND status = ?", profileID, models.ApplicationAccepted).
		Count(&c.Accepted).Error; err != nil {
		return c, err
	}
	if err := db.Model(&models.Task{}).
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Where("projects.freelancer_profile_id = ?", profileID).
		Count(&c.Tasks).Error; err != nil {
		return c, err
	}
	err := db.Model(&models.Task{}).
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Where("projects.freelancer_profile_id = ? AND tasks.approval_status = ?", profileID, models.ApprovalApproved).
		Count(&c.ApprovedTasks).Error
	return c, err
}

func (r *StatsRepository) UpdateProfileStats(ctx context.Context, profileID uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&models.FreelancerProfile{}).
		Where("id = ?", profileID).
		UpdateColumns(fields).Error
}

func (r *StatsRepository) EnsureBadge(ctx context.Context, def models.Badge) (*models.Badge, error) {
	var b models.Badge
	err := r.db.WithContext(ctx).
		Attrs(models.Badge{ID: uuid.New(), Name: def.Name, Description: def.Description, Icon: def.Icon}).
		FirstOrCreate(&b, models.Badge{Type: def.Type, Level: def.Level}).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *StatsRepository) AwardBadge(ctx context.Context, profileID, badgeID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.FreelancerBadge{ID: uuid.New(), FreelancerProfileID: profileID, BadgeID: badgeID})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *StatsRepository) ProfileBadges(ctx context.Context, profileID uuid.UUID) ([]models.FreelancerBadge, error) {
	var bs []models.FreelancerBadge
	err := r.db.WithContext(ctx).
		Preload("Badge").
		Where("freelancer_profile_id = ?", profileID).
		Order("earned_at ASC").
		Find(&bs).Error
	return bs, err
}

type taskTotals struct {
	ProfileID uuid.UUID
	Total     int64
	Approved  int64
}

func (r *StatsRepository) RankRows(ctx context.Context) ([]stats.RankRow, error) {
	db := r.db.WithContext(ctx)

	var profiles []models.FreelancerProfile
	if err := db.Preload("User").Order("created_at ASC").Find(&profiles).Error; err != nil {
		return nil, err
	}

	var totals []taskTotals
	err := db.Table("tasks").
		Select("projects.freelancer_profile_id AS profile_id, COUNT(*) AS total, "+
			"COUNT(*) FILTER (WHERE tasks.approval_status = ?) AS approved", models.ApprovalApproved).
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Group("projects.freelancer_profile_id").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	byProfile := make(map[uuid.UUID]taskTotals, len(totals))
	for _, t := range totals {
		byProfile[t.ProfileID] = t
	}

	rows := make([]stats.RankRow, len(profiles))
	for i, p := range profiles {
		t := byProfile[p.ID]
		rows[i] = stats.RankRow{Profile: p, TotalTasks: t.Total, ApprovedTasks: t.Approved}
	}
	return rows, nil
}

func (r *StatsRepository) SetRanks(ctx context.Context, ranks map[uuid.UUID]int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, pos := range ranks {
			if err := tx.Model(&models.FreelancerProfile{}).
				Where("id = ?", id).
				UpdateColumn("rank_position", pos).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
