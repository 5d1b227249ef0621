package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/models"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/services/marketplace"
)

type MarketplaceRepository struct {
	db *gorm.DB
}

func NewMarketplaceRepository(db *gorm.DB) *MarketplaceRepository {
	return &MarketplaceRepository{db: db}
}

func (r *MarketplaceRepository) RecruiterByUserID(ctx context.Context, userID uuid.UUID) (*models.RecruiterProfile, error) {
	var p models.RecruiterProfile
	if err := r.db.WithContext(ctx).Preload("User").First(&p, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *MarketplaceRepository) FreelancerByUserID(ctx context.Context, userID uuid.UUID) (*models.FreelancerProfile, error) {
	var p models.FreelancerProfile
	if err := r.db.WithContext(ctx).Preload("User").First(&p, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *MarketplaceRepository) Freelancers(ctx context.Context) ([]models.FreelancerProfile, error) {
	var ps []models.FreelancerProfile
	err := r.db.WithContext(ctx).
		Where("skills <> ''").
		Find(&ps).Error
	return ps, err
}

func (r *MarketplaceRepository) CreateJob(ctx context.Context, job *models.Job) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(job).Error
}

func (r *MarketplaceRepository) JobByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var j models.Job
	if err := r.db.WithContext(ctx).Preload("Recruiter.User").First(&j, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *MarketplaceRepository) ListJobs(ctx context.Context, filter marketplace.JobFilter) ([]models.Job, error) {
	q := r.db.WithContext(ctx).
		Preload("Recruiter").
		Where("is_active = ?", true)
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		q = q.Where("title ILIKE ? OR description ILIKE ? OR skills_required ILIKE ?", like, like, like)
	}
	var jobs []models.Job
	err := q.Order("created_at DESC").Limit(filter.Limit).Find(&jobs).Error
	return jobs, err
}

func (r *MarketplaceRepository) ApplicationExists(ctx context.Context, jobID, freelancerProfileID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Where("job_id = ? AND freelancer_profile_id = ?", jobID, freelancerProfileID).
		Count(&n).Error
	return n > 0, err
}

func (r *MarketplaceRepository) CreateApplication(ctx context.Context, app *models.Application) error {
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(app).Error
	if isUniqueViolation(err) {
		return marketplace.ErrAlreadyApplied
	}
	return err
}

func (r *MarketplaceRepository) ApplicationByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var a models.Application
	err := r.db.WithContext(ctx).
		Preload("Job.Recruiter.User").
		Preload("Freelancer.User").
		First(&a, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *MarketplaceRepository) JobApplications(ctx context.Context, jobID uuid.UUID) ([]models.Application, error) {
	var apps []models.Application
	err := r.db.WithContext(ctx).
		Preload("Freelancer").
		Where("job_id = ?", jobID).
		Order("applied_at DESC").
		Find(&apps).Error
	return apps, err
}

func (r *MarketplaceRepository) FreelancerApplications(ctx context.Context, freelancerProfileID uuid.UUID) ([]models.Application, error) {
	var apps []models.Application
	err := r.db.WithContext(ctx).
		Preload("Job").
		Where("freelancer_profile_id = ?", freelancerProfileID).
		Order("applied_at DESC").
		Find(&apps).Error
	return apps, err
}

func (r *MarketplaceRepository) SetApplicationStatus(ctx context.Context, id uuid.UUID, status models.ApplicationStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Where("id = ?", id).
		Update("status", status)
	return affected(res)
}

func (r *MarketplaceRepository) GetOrCreateProject(ctx context.Context, p *models.Project) (*models.Project, error) {
	var out models.Project
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).
		Attrs(models.Project{ID: p.ID, Title: p.Title, Description: p.Description, Status: p.Status}).
		FirstOrCreate(&out, models.Project{RecruiterProfileID: p.RecruiterProfileID, FreelancerProfileID: p.FreelancerProfileID, JobID: p.JobID}).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *MarketplaceRepository) CountApprovedTasks(ctx context.Context, freelancerProfileID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Where("projects.freelancer_profile_id = ? AND tasks.approval_status = ?", freelancerProfileID, models.ApprovalApproved).
		Count(&n).Error
	return n, err
}
