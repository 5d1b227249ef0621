package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/models"
)

var (
	ErrForbidden    = errors.New("tasks: not allowed for this user")
	ErrInvalidInput = errors.New("tasks: invalid input")
)

const (
	assignedText    = "📝 New Task Assigned: '%s' — Please review the details and start working on it."
	approvedText    = "✅ Task Approved: Great job on '%s'! Your work has been accepted."
	disapprovedText = "❌ Task Disapproved: '%s' needs some revisions. Please review and re-upload."
)

type Repository interface {
	// Transaction runs fn against a repository bound to one DB transaction.
	Transaction(ctx context.Context, fn func(tx Repository) error) error

	// ProjectByID and the task loaders preload the recruiter, freelancer and
	// job of the project.
	ProjectByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	TaskByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	LockTask(ctx context.Context, id uuid.UUID) (*models.Task, error)
	// LockProject takes the project row lock that serializes verdicts on
	// sibling tasks, so the last approval sees every other one.
	LockProject(ctx context.Context, id uuid.UUID) (*models.Project, error)

	CreateTask(ctx context.Context, t *models.Task) error
	SaveTask(ctx context.Context, t *models.Task) error
	ProjectTasks(ctx context.Context, projectID uuid.UUID) ([]models.Task, error)
	CountUnapproved(ctx context.Context, projectID uuid.UUID) (int64, error)
	SetProjectStatus(ctx context.Context, projectID uuid.UUID, status models.ProjectStatus) error
	CreditEarnings(ctx context.Context, freelancerProfileID uuid.UUID, amount int64, taskID uuid.UUID, description string) error

	RoomByID(ctx context.Context, id uuid.UUID) (*models.ChatRoom, error)
	// ProjectsBetween returns the projects of the pair that have tasks, tasks preloaded.
	ProjectsBetween(ctx context.Context, recruiterUserID, freelancerUserID uuid.UUID) ([]models.Project, error)
}

// Messenger posts into the recruiter and freelancer room.
type Messenger interface {
	Post(ctx context.Context, recruiterID, freelancerID, senderID uuid.UUID, text, kind string) (*models.Message, error)
}

// StatsQueue schedules a derived stats recompute for a freelancer profile.
type StatsQueue interface {
	Enqueue(freelancerProfileID uuid.UUID)
}

type Service struct {
	repo  Repository
	chat  Messenger
	stats StatsQueue
	log   logrus.FieldLogger
}

func NewService(repo Repository, chat Messenger, stats StatsQueue, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, chat: chat, stats: stats, log: log}
}

type NewTask struct {
	Title         string
	Description   string
	DueDate       *time.Time
	Priority      models.TaskPriority
	ReferenceFile string
}

// Outcome reports what a recruiter verdict changed. Changed is false when
// the guard rejected the transition.
type Outcome struct {
	Task          *models.Task         `json:"task"`
	Changed       bool                 `json:"changed"`
	ProjectStatus models.ProjectStatus `json:"project_status"`
	Credited      int64                `json:"credited"`
}

func (s *Service) CreateTask(ctx context.Context, recruiterUserID, projectID uuid.UUID, in NewTask) (*models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	project, err := s.repo.ProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if recruiterUser(project) != recruiterUserID {
		return nil, ErrForbidden
	}

	priority := in.Priority
	switch priority {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
	default:
		priority = models.PriorityMedium
	}

	task := &models.Task{
		ProjectID:      project.ID,
		Title:          title,
		Description:    in.Description,
		DueDate:        in.DueDate,
		Priority:       priority,
		Status:         models.TaskTodo,
		ApprovalStatus: models.ApprovalPending,
		ReferenceFile:  in.ReferenceFile,
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	task.Project = project

	s.post(ctx, project, fmt.Sprintf(assignedText, task.Title))
	s.enqueueStats(project)
	return task, nil
}

// AuthorizeRecruiter reports whether recruiterUserID owns the project.
// Handlers call it before storing an upload meant for CreateTask.
func (s *Service) AuthorizeRecruiter(ctx context.Context, recruiterUserID, projectID uuid.UUID) error {
	project, err := s.repo.ProjectByID(ctx, projectID)
	if err != nil {
		return err
	}
	if recruiterUser(project) != recruiterUserID {
		return ErrForbidden
	}
	return nil
}

// AuthorizeFreelancer reports whether freelancerUserID works on the task.
func (s *Service) AuthorizeFreelancer(ctx context.Context, freelancerUserID, taskID uuid.UUID) error {
	task, err := s.repo.TaskByID(ctx, taskID)
	if err != nil {
		return err
	}
	if freelancerUser(task.Project) != freelancerUserID {
		return ErrForbidden
	}
	return nil
}

// FreelancerUpdate applies the freelancer's status change and optional
// deliverable. An empty status only attaches the deliverable.
func (s *Service) FreelancerUpdate(ctx context.Context, freelancerUserID, taskID uuid.UUID, status, deliverable string) (*models.Task, error) {
	task, err := s.repo.TaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if freelancerUser(task.Project) != freelancerUserID {
		return nil, ErrForbidden
	}

	switch models.TaskStatus(status) {
	case models.TaskCompleted:
		err = Submit(task, deliverable)
	case models.TaskInProgress:
		err = Start(task)
	case "":
		if deliverable == "" {
			return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
		}
	default:
		err = ErrInvalidTransition
	}
	if err != nil {
		return nil, err
	}
	if status != string(models.TaskCompleted) && deliverable != "" {
		task.FreelancerFile = deliverable
	}

	if err := s.repo.SaveTask(ctx, task); err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}
	s.enqueueStats(task.Project)
	return task, nil
}

// Approve accepts a completed task, credits the freelancer and closes the
// project once every task is approved. Any other status is a no-op.
func (s *Service) Approve(ctx context.Context, recruiterUserID, taskID uuid.UUID) (*Outcome, error) {
	out := &Outcome{}
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		task, err := tx.LockTask(ctx, taskID)
		if err != nil {
			return err
		}
		if recruiterUser(task.Project) != recruiterUserID {
			return ErrForbidden
		}
		out.Task = task
		out.ProjectStatus = task.Project.Status

		if err := Approve(task); err != nil {
			return nil
		}
		if _, err := tx.LockProject(ctx, task.ProjectID); err != nil {
			return err
		}
		if err := tx.SaveTask(ctx, task); err != nil {
			return err
		}

		var salary int64
		if task.Project.Job != nil {
			salary = task.Project.Job.Salary
		}
		if amount := Earnings(salary); amount > 0 {
			desc := fmt.Sprintf("Approved task '%s'", task.Title)
			if err := tx.CreditEarnings(ctx, task.Project.FreelancerProfileID, amount, task.ID, desc); err != nil {
				return fmt.Errorf("credit earnings: %w", err)
			}
			out.Credited = amount
		}

		remaining, err := tx.CountUnapproved(ctx, task.ProjectID)
		if err != nil {
			return err
		}
		if remaining == 0 {
			if err := tx.SetProjectStatus(ctx, task.ProjectID, models.ProjectCompleted); err != nil {
				return err
			}
			out.ProjectStatus = models.ProjectCompleted
		}
		out.Changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.Changed {
		out.Task.Project.Status = out.ProjectStatus
		s.log.WithFields(logrus.Fields{"task_id": taskID, "credited": out.Credited, "project_status": out.ProjectStatus}).Info("task approved")
		s.post(ctx, out.Task.Project, fmt.Sprintf(approvedText, out.Task.Title))
		s.enqueueStats(out.Task.Project)
	}
	return out, nil
}

// Disapprove rejects a completed task and reopens its project.
func (s *Service) Disapprove(ctx context.Context, recruiterUserID, taskID uuid.UUID) (*Outcome, error) {
	out := &Outcome{}
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		task, err := tx.LockTask(ctx, taskID)
		if err != nil {
			return err
		}
		if recruiterUser(task.Project) != recruiterUserID {
			return ErrForbidden
		}
		out.Task = task
		out.ProjectStatus = task.Project.Status

		if err := Disapprove(task); err != nil {
			return nil
		}
		if _, err := tx.LockProject(ctx, task.ProjectID); err != nil {
			return err
		}
		if err := tx.SaveTask(ctx, task); err != nil {
			return err
		}
		if err := tx.SetProjectStatus(ctx, task.ProjectID, models.ProjectActive); err != nil {
			return err
		}
		out.ProjectStatus = models.ProjectActive
		out.Changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.Changed {
		out.Task.Project.Status = out.ProjectStatus
		s.log.WithField("task_id", taskID).Info("task disapproved")
		s.post(ctx, out.Task.Project, fmt.Sprintf(disapprovedText, out.Task.Title))
		s.enqueueStats(out.Task.Project)
	}
	return out, nil
}

// ProjectTasks lists a project's tasks for either participant.
func (s *Service) ProjectTasks(ctx context.Context, userID, projectID uuid.UUID) (*models.Project, []models.Task, error) {
	project, err := s.repo.ProjectByID(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	if recruiterUser(project) != userID && freelancerUser(project) != userID {
		return nil, nil, ErrForbidden
	}
	tasks, err := s.repo.ProjectTasks(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	return project, tasks, nil
}

// ProjectsForRoom lists, for the freelancer of a room, the projects with that
// recruiter which already have tasks.
func (s *Service) ProjectsForRoom(ctx context.Context, freelancerUserID, roomID uuid.UUID) ([]models.Project, error) {
	room, err := s.repo.RoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.FreelancerID != freelancerUserID {
		return nil, ErrForbidden
	}
	return s.repo.ProjectsBetween(ctx, room.RecruiterID, room.FreelancerID)
}

func (s *Service) post(ctx context.Context, project *models.Project, text string) {
	recruiterID, freelancerID := recruiterUser(project), freelancerUser(project)
	if recruiterID == uuid.Nil || freelancerID == uuid.Nil {
		s.log.WithField("project_id", project.ID).Warn("project without participants, chat message skipped")
		return
	}
	if _, err := s.chat.Post(ctx, recruiterID, freelancerID, recruiterID, text, models.MessageSystem); err != nil {
		s.log.WithError(err).WithField("project_id", project.ID).Warn("post task message failed")
	}
}

func (s *Service) enqueueStats(project *models.Project) {
	if s.stats != nil && project != nil {
		s.stats.Enqueue(project.FreelancerProfileID)
	}
}

func recruiterUser(p *models.Project) uuid.UUID {
	if p == nil || p.Recruiter == nil {
		return uuid.Nil
	}
	return p.Recruiter.UserID
}

func freelancerUser(p *models.Project) uuid.UUID {
	if p == nil || p.Freelancer == nil {
		return uuid.Nil
	}
	return p.Freelancer.UserID
}
