package marketplace

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/models"
)

const dashboardHistory = 20

type BadgeProgress struct {
	Type       models.BadgeType `json:"type"`
	HasBadge   bool             `json:"has_badge"`
	Level      int              `json:"level"`
	Completed  int64            `json:"completed"`
	NextTarget int64            `json:"next_target,omitempty"`
}

type Dashboard struct {
	Profile              *models.FreelancerProfile `json:"profile"`
	ApplicationsSent     int                       `json:"applications_sent"`
	ApplicationsAccepted int                       `json:"applications_accepted"`
	MatchingJobs         int                       `json:"matching_jobs"`
	UnreadNotifications  int64                     `json:"unread_notifications"`
	ApprovedTasks        int64                     `json:"approved_tasks"`
	TotalEarnings        int64                     `json:"total_earnings"`
	ApplicationDates     []string                  `json:"application_dates"`
	Badges               []models.FreelancerBadge  `json:"badges"`
	Progress             []BadgeProgress           `json:"progress"`
	AIHistory            []models.AIRequestLog     `json:"ai_history"`
}

// Dashboard gathers the freelancer home screen in one call.
func (s *Service) Dashboard(ctx context.Context, freelancerUserID uuid.UUID) (*Dashboard, error) {
	profile, err := s.Repo.FreelancerByUserID(ctx, freelancerUserID)
	if err != nil {
		return nil, err
	}
	apps, err := s.Repo.FreelancerApplications(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("load applications: %w", err)
	}
	d := &Dashboard{
		Profile:          profile,
		ApplicationsSent: len(apps),
		TotalEarnings:    profile.TotalEarnings,
		ApplicationDates: make([]string, 0, len(apps)),
	}
	for _, a := range apps {
		if a.Status == models.ApplicationAccepted {
			d.ApplicationsAccepted++
		}
		d.ApplicationDates = append(d.ApplicationDates, a.AppliedAt.Format("2006-01-02"))
	}

	if d.ApprovedTasks, err = s.Repo.CountApprovedTasks(ctx, profile.ID); err != nil {
		return nil, fmt.Errorf("count approved tasks: %w", err)
	}
	if d.UnreadNotifications, err = s.Notify.UnreadCount(ctx, freelancerUserID); err != nil {
		return nil, fmt.Errorf("count notifications: %w", err)
	}

	jobs, err := s.Repo.ListJobs(ctx, JobFilter{Limit: 500})
	if err != nil {
		return nil, fmt.Errorf("load jobs: %w", err)
	}
	skills := profile.SkillList()
	for _, j := range jobs {
		if len(skills) == 0 || SkillsMatch(skills, j.SkillList()) {
			d.MatchingJobs++
		}
	}

	if s.Badges != nil {
		if d.Badges, err = s.Badges.Badges(ctx, profile.ID); err != nil {
			return nil, fmt.Errorf("load badges: %w", err)
		}
	}
	if s.History != nil {
		if d.AIHistory, err = s.History.History(ctx, freelancerUserID, dashboardHistory); err != nil {
			s.Log.WithError(err).Warn("load ai history")
		}
	}
	d.Progress = badgeProgress(int64(d.ApplicationsSent), int64(d.ApplicationsAccepted), profile)
	return d, nil
}

func badgeProgress(applied, accepted int64, p *models.FreelancerProfile) []BadgeProgress {
	var out []BadgeProgress
	if applied > 0 {
		out = append(out, stepProgress(models.BadgeApplication, applied, 10))
	}
	if accepted > 0 {
		out = append(out, stepProgress(models.BadgeAcceptance, accepted, 5))
	}
	if c := int64(p.ProfileCompletion); c > 0 {
		bp := BadgeProgress{Type: models.BadgeProfile, Completed: c, HasBadge: c == 100}
		if bp.HasBadge {
			bp.Level = 1
		} else {
			bp.NextTarget = 100
		}
		out = append(out, bp)
	}
	if p.LoginStreak > 0 {
		bp := BadgeProgress{Type: models.BadgeLogin, Completed: int64(p.LoginStreak), HasBadge: true}
		switch {
		case p.LoginStreak >= 30:
			bp.Level = 3
		case p.LoginStreak >= 7:
			bp.Level, bp.NextTarget = 2, 30
		default:
			bp.Level, bp.NextTarget = 1, 7
		}
		out = append(out, bp)
	}
	return out
}

func stepProgress(t models.BadgeType, done, step int64) BadgeProgress {
	level := done / step
	return BadgeProgress{
		Type:       t,
		HasBadge:   level > 0,
		Level:      int(level),
		Completed:  done,
		NextTarget: (level + 1) * step,
	}
}
