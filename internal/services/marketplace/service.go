package marketplace

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/models"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/worker"
)

var (
	ErrAlreadyApplied = errors.New("marketplace: already applied to this job")
	ErrForbidden      = errors.New("marketplace: not allowed for this user")
	ErrInvalidStatus  = errors.New("marketplace: status must be Accepted or Rejected")
	ErrJobClosed      = errors.New("marketplace: job is not accepting applications")
	ErrInvalidInput   = errors.New("marketplace: invalid input")
)

type JobFilter struct {
	Keyword string
	Limit   int
}

type Repository interface {
	RecruiterByUserID(ctx context.Context, userID uuid.UUID) (*models.RecruiterProfile, error)
	FreelancerByUserID(ctx context.Context, userID uuid.UUID) (*models.FreelancerProfile, error)
	Freelancers(ctx context.Context) ([]models.FreelancerProfile, error)

	CreateJob(ctx context.Context, job *models.Job) error
	// JobByID preloads Recruiter.User.
	JobByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]models.Job, error)

	ApplicationExists(ctx context.Context, jobID, freelancerProfileID uuid.UUID) (bool, error)
	CreateApplication(ctx context.Context, app *models.Application) error
	// ApplicationByID preloads Job.Recruiter.User and Freelancer.User.
	ApplicationByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
	JobApplications(ctx context.Context, jobID uuid.UUID) ([]models.Application, error)
	FreelancerApplications(ctx context.Context, freelancerProfileID uuid.UUID) ([]models.Application, error)
	SetApplicationStatus(ctx context.Context, id uuid.UUID, status models.ApplicationStatus) error

	// GetOrCreateProject keys on the recruiter, freelancer and job triple and
	// only uses the other fields of p when creating.
	GetOrCreateProject(ctx context.Context, p *models.Project) (*models.Project, error)
	CountApprovedTasks(ctx context.Context, freelancerProfileID uuid.UUID) (int64, error)
}

type Notifier interface {
	Create(ctx context.Context, n *models.Notification) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type Messenger interface {
	Post(ctx context.Context, recruiterID, freelancerID, senderID uuid.UUID, text, kind string) (*models.Message, error)
}

type StatsQueue interface {
	Enqueue(freelancerProfileID uuid.UUID)
}

type Submitter interface {
	Submit(job worker.Job) bool
}

type BadgeSource interface {
	Badges(ctx context.Context, freelancerProfileID uuid.UUID) ([]models.FreelancerBadge, error)
}

type HistorySource interface {
	History(ctx context.Context, userID uuid.UUID, limit int) ([]models.AIRequestLog, error)
}

type Deps struct {
	Repo    Repository
	Notify  Notifier
	Chat    Messenger
	Stats   StatsQueue
	Pool    Submitter
	Mailer  Mailer
	Badges  BadgeSource
	History HistorySource
	Log     logrus.FieldLogger
}

type Service struct {
	Deps
}

func NewService(d Deps) *Service {
	return &Service{Deps: d}
}

type NewJob struct {
	Title          string
	Description    string
	SkillsRequired string
	Location       string
	JobType        string
	Salary         int64
}

// PostJob stores the job and tells every freelancer with a matching skill.
// The notifications are written by the worker pool.
func (s *Service) PostJob(ctx context.Context, recruiterUserID uuid.UUID, in NewJob) (*models.Job, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if in.Salary < 0 {
		return nil, fmt.Errorf("%w: salary cannot be negative", ErrInvalidInput)
	}
	recruiter, err := s.Repo.RecruiterByUserID(ctx, recruiterUserID)
	if err != nil {
		return nil, err
	}

	job := &models.Job{
		RecruiterProfileID: recruiter.ID,
		Title:              title,
		Description:        in.Description,
		SkillsRequired:     in.SkillsRequired,
		Location:           in.Location,
		JobType:            in.JobType,
		Salary:             in.Salary,
		IsActive:           true,
	}
	if err := s.Repo.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	freelancers, err := s.Repo.Freelancers(ctx)
	if err != nil {
		s.Log.WithError(err).WithField("job_id", job.ID).Warn("load freelancers for job match")
		return job, nil
	}
	queued := 0
	for _, f := range freelancers {
		if !SkillsMatch(f.SkillList(), job.SkillList()) {
			continue
		}
		userID, jobID := f.UserID, job.ID
		n := &models.Notification{
			UserID:       userID,
			Type:         models.NotifNewJob,
			Message:      fmt.Sprintf("New job posted: %s - matches your skills!", job.Title),
			RelatedJobID: &jobID,
		}
		ok := s.Pool.Submit(worker.JobFunc{
			Name: "job-match:" + userID.String(),
			Fn:   func(ctx context.Context) error { return s.Notify.Create(ctx, n) },
		})
		if ok {
			queued++
		}
	}
	s.Log.WithFields(logrus.Fields{"job_id": job.ID, "matched": queued}).Info("job posted")
	return job, nil
}

func (s *Service) ListJobs(ctx context.Context, filter JobFilter) ([]models.Job, error) {
	filter.Keyword = strings.TrimSpace(filter.Keyword)
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}
	return s.Repo.ListJobs(ctx, filter)
}

func (s *Service) Apply(ctx context.Context, freelancerUserID, jobID uuid.UUID, coverLetter, resumeURL string) (*models.Application, error) {
	freelancer, err := s.Repo.FreelancerByUserID(ctx, freelancerUserID)
	if err != nil {
		return nil, err
	}
	job, err := s.Repo.JobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.IsActive {
		return nil, ErrJobClosed
	}
	exists, err := s.Repo.ApplicationExists(ctx, job.ID, freelancer.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyApplied
	}

	if resumeURL == "" {
		resumeURL = freelancer.Resume
	}
	app := &models.Application{
		JobID:               job.ID,
		FreelancerProfileID: freelancer.ID,
		CandidateName:       candidateName(freelancer),
		CoverLetter:         coverLetter,
		Resume:              resumeURL,
		Status:              models.ApplicationPending,
	}
	if freelancer.User != nil {
		app.CandidateEmail = freelancer.User.Email
	}
	if err := s.Repo.CreateApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}

	if job.Recruiter != nil {
		jobID, appID := job.ID, app.ID
		if err := s.Notify.Create(ctx, &models.Notification{
			UserID:               job.Recruiter.UserID,
			Type:                 models.NotifNewApplication,
			Message:              fmt.Sprintf("New application received for '%s' from %s", job.Title, app.CandidateName),
			RelatedJobID:         &jobID,
			RelatedApplicationID: &appID,
		}); err != nil {
			s.Log.WithError(err).WithField("application_id", app.ID).Warn("new application notification failed")
		}
	}
	s.Stats.Enqueue(freelancer.ID)
	return app, nil
}

func (s *Service) JobApplications(ctx context.Context, recruiterUserID, jobID uuid.UUID) (*models.Job, []models.Application, error) {
	job, err := s.Repo.JobByID(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	if job.Recruiter == nil || job.Recruiter.UserID != recruiterUserID {
		return nil, nil, ErrForbidden
	}
	apps, err := s.Repo.JobApplications(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	return job, apps, nil
}

// Decision is what UpdateApplicationStatus produced.
type Decision struct {
	Application *models.Application `json:"application"`
	Project     *models.Project     `json:"project,omitempty"`
}

// UpdateApplicationStatus records the recruiter's verdict. Accepting opens the
// chat room with a welcome message and creates the project.
func (s *Service) UpdateApplicationStatus(ctx context.Context, recruiterUserID, appID uuid.UUID, status models.ApplicationStatus) (*Decision, error) {
	if status != models.ApplicationAccepted && status != models.ApplicationRejected {
		return nil, ErrInvalidStatus
	}
	app, err := s.Repo.ApplicationByID(ctx, appID)
	if err != nil {
		return nil, err
	}
	job := app.Job
	if job == nil || job.Recruiter == nil || job.Recruiter.UserID != recruiterUserID {
		return nil, ErrForbidden
	}
	if app.Freelancer == nil || app.Freelancer.User == nil || job.Recruiter.User == nil {
		return nil, fmt.Errorf("application %s is missing its participants", app.ID)
	}

	if err := s.Repo.SetApplicationStatus(ctx, app.ID, status); err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}
	app.Status = status
	out := &Decision{Application: app}

	recruiterUser, freelancerUser := job.Recruiter.User, app.Freelancer.User
	var (
		notifType models.NotificationType
		message   string
		mail      Email
	)
	if status == models.ApplicationAccepted {
		welcome := fmt.Sprintf("Hi %s, congratulations! I accepted your application for '%s'. Let's discuss further here.",
			freelancerUser.FirstName(), job.Title)
		if _, err := s.Chat.Post(ctx, recruiterUser.ID, freelancerUser.ID, recruiterUser.ID, welcome, models.MessageText); err != nil {
			s.Log.WithError(err).WithField("application_id", app.ID).Warn("welcome message failed")
		}

		project, err := s.Repo.GetOrCreateProject(ctx, &models.Project{
			RecruiterProfileID:  job.RecruiterProfileID,
			FreelancerProfileID: app.FreelancerProfileID,
			JobID:               job.ID,
			Title:               fmt.Sprintf("%s - %s", job.Title, app.Freelancer.FullName),
			Description:         fmt.Sprintf("Project for %s on job '%s'", app.Freelancer.FullName, job.Title),
			Status:              models.ProjectActive,
		})
		if err != nil {
			return nil, fmt.Errorf("create project: %w", err)
		}
		out.Project = project

		notifType = models.NotifApplicationAccepted
		message = fmt.Sprintf("Congratulations! Your application for '%s' has been accepted.", job.Title)
		mail = Email{
			To:      freelancerUser.Email,
			Subject: "🎉 Congratulations! Your Application is Accepted",
			Body: fmt.Sprintf("Hi %s,\n\nCongratulations! Your application for the position '%s' has been accepted.\n\nThe recruiter will contact you soon with further details.\n\nBest regards,\n%s\n",
				freelancerUser.FirstName(), job.Title, recruiterUser.FirstName()),
		}
	} else {
		notifType = models.NotifApplicationRejected
		message = fmt.Sprintf("Your application for '%s' was not selected this time.", job.Title)
		mail = Email{
			To:      freelancerUser.Email,
			Subject: "Application Status Update: Regret",
			Body: fmt.Sprintf("Hi %s,\n\nWe appreciate your interest in the position '%s'.\n\nUnfortunately, your application has not been selected this time. Keep applying and we wish you all the best for your future opportunities.\n\nBest regards,\n%s\n",
				freelancerUser.FirstName(), job.Title, recruiterUser.FirstName()),
		}
	}

	jobID, relAppID := job.ID, app.ID
	if err := s.Notify.Create(ctx, &models.Notification{
		UserID:               freelancerUser.ID,
		Type:                 notifType,
		Message:              message,
		RelatedJobID:         &jobID,
		RelatedApplicationID: &relAppID,
	}); err != nil {
		s.Log.WithError(err).WithField("application_id", app.ID).Warn("decision notification failed")
	}
	if err := s.Mailer.Send(ctx, mail); err != nil {
		s.Log.WithError(err).WithField("to", mail.To).Warn("decision email failed")
	}
	s.Stats.Enqueue(app.FreelancerProfileID)
	return out, nil
}

// MyApplications lists a freelancer's own applications, newest first.
func (s *Service) MyApplications(ctx context.Context, freelancerUserID uuid.UUID) ([]models.Application, error) {
	freelancer, err := s.Repo.FreelancerByUserID(ctx, freelancerUserID)
	if err != nil {
		return nil, err
	}
	return s.Repo.FreelancerApplications(ctx, freelancer.ID)
}

// SkillsMatch reports whether any required skill is among have. Both lists
// are expected lowercased.
func SkillsMatch(have, required []string) bool {
	if len(required) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(have))
	for _, s := range have {
		set[strings.ToLower(s)] = struct{}{}
	}
	for _, r := range required {
		if _, ok := set[strings.ToLower(r)]; ok {
			return true
		}
	}
	return false
}

func candidateName(f *models.FreelancerProfile) string {
	if f.FullName != "" {
		return f.FullName
	}
	if f.User != nil {
		return f.User.Name
	}
	return "a freelancer"
}
