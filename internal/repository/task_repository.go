package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/models"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/services/tasks"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/services/wallet"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Transaction(ctx context.Context, fn func(tx tasks.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&TaskRepository{db: tx})
	})
}

func (r *TaskRepository) ProjectByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var p models.Project
	err := r.db.WithContext(ctx).
		Preload("Recruiter").
		Preload("Freelancer").
		Preload("Job").
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *TaskRepository) TaskByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return r.loadTask(r.db.WithContext(ctx), id)
}

// LockTask loads the task with SELECT ... FOR UPDATE. Only meaningful inside Transaction.
func (r *TaskRepository) LockTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return r.loadTask(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

// LockProject locks the project row FOR UPDATE and returns its status.
func (r *TaskRepository) LockProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var p models.Project
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "status").
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *TaskRepository) loadTask(q *gorm.DB, id uuid.UUID) (*models.Task, error) {
	var t models.Task
	err := q.
		Preload("Project").
		Preload("Project.Recruiter").
		Preload("Project.Freelancer").
		Preload("Project.Job").
		First(&t, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) CreateTask(ctx context.Context, t *models.Task) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(t).Error
}

func (r *TaskRepository) SaveTask(ctx context.Context, t *models.Task) error {
	return r.db.WithContext(ctx).
		Model(&models.Task{ID: t.ID}).
		Updates(map[string]interface{}{
			"status":          t.Status,
			"approval_status": t.ApprovalStatus,
			"freelancer_file": t.FreelancerFile,
		}).Error
}

func (r *TaskRepository) ProjectTasks(ctx context.Context, projectID uuid.UUID) ([]models.Task, error) {
	var ts []models.Task
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&ts).Error
	return ts, err
}

func (r *TaskRepository) CountUnapproved(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("project_id = ? AND approval_status <> ?", projectID, models.ApprovalApproved).
		Count(&n).Error
	return n, err
}

func (r *TaskRepository) SetProjectStatus(ctx context.Context, projectID uuid.UUID, status models.ProjectStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ?", projectID).
		Update("status", status).Error
}

func (r *TaskRepository) CreditEarnings(ctx context.Context, freelancerProfileID uuid.UUID, amount int64, taskID uuid.UUID, description string) error {
	return wallet.CreditFreelancer(r.db.WithContext(ctx), freelancerProfileID, amount, taskID, description)
}

func (r *TaskRepository) RoomByID(ctx context.Context, id uuid.UUID) (*models.ChatRoom, error) {
	var room models.ChatRoom
	if err := r.db.WithContext(ctx).First(&room, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *TaskRepository) ProjectsBetween(ctx context.Context, recruiterUserID, freelancerUserID uuid.UUID) ([]models.Project, error) {
	var ps []models.Project
	err := r.db.WithContext(ctx).
		Joins("JOIN recruiter_profiles rp ON rp.id = projects.recruiter_profile_id").
		Joins("JOIN freelancer_profiles fp ON fp.id = projects.freelancer_profile_id").
		Where("rp.user_id = ? AND fp.user_id = ?", recruiterUserID, freelancerUserID).
		Where("EXISTS (SELECT 1 FROM tasks t WHERE t.project_id = projects.id)").
		Preload("Job").
		Preload("Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("tasks.created_at ASC") }).
		Order("projects.created_at DESC").
		Find(&ps).Error
	return ps, err
}
