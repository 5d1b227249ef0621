package marketplace

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/models"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/worker"
)

type memRepo struct {
	mu          sync.Mutex
	recruiters  map[uuid.UUID]*models.RecruiterProfile
	freelancers map[uuid.UUID]*models.FreelancerProfile
	jobs        []*models.Job
	apps        []*models.Application
	projects    []*models.Project
	approved    map[uuid.UUID]int64
}

func newMemRepo() *memRepo {
	return &memRepo{
		recruiters:  map[uuid.UUID]*models.RecruiterProfile{},
		freelancers: map[uuid.UUID]*models.FreelancerProfile{},
		approved:    map[uuid.UUID]int64{},
	}
}

func (r *memRepo) addRecruiter(name string) *models.RecruiterProfile {
	u := &models.User{ID: uuid.New(), Name: name, Email: strings.ToLower(strings.Fields(name)[0]) + "@corp.test", Role: models.RoleRecruiter}
	p := &models.RecruiterProfile{ID: uuid.New(), UserID: u.ID, CompanyName: "Corp", User: u}
	r.recruiters[p.ID] = p
	return p
}

func (r *memRepo) addFreelancer(name, skills string) *models.FreelancerProfile {
	u := &models.User{ID: uuid.New(), Name: name, Email: strings.ToLower(strings.Fields(name)[0]) + "@mail.test", Role: models.RoleFreelancer}
	p := &models.FreelancerProfile{ID: uuid.New(), UserID: u.ID, FullName: name, Skills: skills, User: u}
	r.freelancers[p.ID] = p
	return p
}

func (r *memRepo) RecruiterByUserID(ctx context.Context, userID uuid.UUID) (*models.RecruiterProfile, error) {
	for _, p := range r.recruiters {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memRepo) FreelancerByUserID(ctx context.Context, userID uuid.UUID) (*models.FreelancerProfile, error) {
	for _, p := range r.freelancers {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memRepo) Freelancers(ctx context.Context) ([]models.FreelancerProfile, error) {
	var out []models.FreelancerProfile
	for _, p := range r.freelancers {
		out = append(out, *p)
	}
	return out, nil
}

func (r *memRepo) CreateJob(ctx context.Context, job *models.Job) error {
	job.ID = uuid.New()
	job.CreatedAt = time.Now()
	r.jobs = append(r.jobs, job)
	return nil
}

func (r *memRepo) JobByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	for _, j := range r.jobs {
		if j.ID == id {
			cp := *j
			cp.Recruiter = r.recruiters[j.RecruiterProfileID]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memRepo) ListJobs(ctx context.Context, filter JobFilter) ([]models.Job, error) {
	var out []models.Job
	for i := len(r.jobs) - 1; i >= 0; i-- {
		j := r.jobs[i]
		if !j.IsActive {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(strings.ToLower(j.Title+" "+j.Description), strings.ToLower(filter.Keyword)) {
			continue
		}
		out = append(out, *j)
	}
	return out, nil
}

func (r *memRepo) ApplicationExists(ctx context.Context, jobID, freelancerProfileID uuid.UUID) (bool, error) {
	for _, a := range r.apps {
		if a.JobID == jobID && a.FreelancerProfileID == freelancerProfileID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) CreateApplication(ctx context.Context, app *models.Application) error {
	app.ID = uuid.New()
	app.AppliedAt = time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
	cp := *app
	r.apps = append(r.apps, &cp)
	return nil
}

func (r *memRepo) ApplicationByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	for _, a := range r.apps {
		if a.ID == id {
			cp := *a
			job, err := r.JobByID(ctx, a.JobID)
			if err != nil {
				return nil, err
			}
			cp.Job = job
			cp.Freelancer = r.freelancers[a.FreelancerProfileID]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memRepo) JobApplications(ctx context.Context, jobID uuid.UUID) ([]models.Application, error) {
	var out []models.Application
	for _, a := range r.apps {
		if a.JobID == jobID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *memRepo) FreelancerApplications(ctx context.Context, profileID uuid.UUID) ([]models.Application, error) {
	var out []models.Application
	for _, a := range r.apps {
		if a.FreelancerProfileID == profileID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *memRepo) SetApplicationStatus(ctx context.Context, id uuid.UUID, status models.ApplicationStatus) error {
	for _, a := range r.apps {
		if a.ID == id {
			a.Status = status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memRepo) GetOrCreateProject(ctx context.Context, p *models.Project) (*models.Project, error) {
	for _, existing := range r.projects {
		if existing.RecruiterProfileID == p.RecruiterProfileID && existing.FreelancerProfileID == p.FreelancerProfileID && existing.JobID == p.JobID {
			return existing, nil
		}
	}
	p.ID = uuid.New()
	r.projects = append(r.projects, p)
	return p, nil
}

func (r *memRepo) CountApprovedTasks(ctx context.Context, profileID uuid.UUID) (int64, error) {
	return r.approved[profileID], nil
}

type notifySpy struct {
	mu     sync.Mutex
	sent   []models.Notification
	unread int64
}

func (n *notifySpy) Create(ctx context.Context, notif *models.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, *notif)
	return nil
}

func (n *notifySpy) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return n.unread, nil
}

type MockMessenger struct {
	mock.Mock
}

func (m *MockMessenger) Post(ctx context.Context, recruiterID, freelancerID, senderID uuid.UUID, text, kind string) (*models.Message, error) {
	args := m.Called(ctx, recruiterID, freelancerID, senderID, text, kind)
	msg, _ := args.Get(0).(*models.Message)
	return msg, args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, mail Email) error {
	return m.Called(ctx, mail).Error(0)
}

type statsSpy struct {
	profiles []uuid.UUID
}

func (s *statsSpy) Enqueue(id uuid.UUID) { s.profiles = append(s.profiles, id) }

// inlinePool runs each job on submit.
type inlinePool struct {
	ran []string
}

func (p *inlinePool) Submit(job worker.Job) bool {
	p.ran = append(p.ran, job.ID())
	_ = job.Execute(context.Background())
	return true
}
