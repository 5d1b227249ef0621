package stats

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/models"
)

type Counts struct {
	Applications  int64
	Accepted      int64
	Tasks         int64
	ApprovedTasks int64
}

// RankRow is one freelancer with its task totals.
type RankRow struct {
	Profile       models.FreelancerProfile
	TotalTasks    int64
	ApprovedTasks int64
}

type Repository interface {
	ProfileByID(ctx context.Context, id uuid.UUID) (*models.FreelancerProfile, error)
	ProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.FreelancerProfile, error)
	ProfileCounts(ctx context.Context, profileID uuid.UUID) (Counts, error)
	UpdateProfileStats(ctx context.Context, profileID uuid.UUID, fields map[string]interface{}) error

	// EnsureBadge returns the badge with def's type and level, creating it from def.
	EnsureBadge(ctx context.Context, def models.Badge) (*models.Badge, error)
	// AwardBadge reports true only when the badge was not held before.
	AwardBadge(ctx context.Context, profileID, badgeID uuid.UUID) (bool, error)
	ProfileBadges(ctx context.Context, profileID uuid.UUID) ([]models.FreelancerBadge, error)

	RankRows(ctx context.Context) ([]RankRow, error)
	SetRanks(ctx context.Context, ranks map[uuid.UUID]int) error
}

type Notifier interface {
	Create(ctx context.Context, n *models.Notification) error
}

type Service struct {
	repo   Repository
	notify Notifier
	log    logrus.FieldLogger
}

func NewService(repo Repository, notify Notifier, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, notify: notify, log: log}
}

// Snapshot is the result of one recompute.
type Snapshot struct {
	Counts            Counts   `json:"counts"`
	CompletionRate    float64  `json:"task_completion_rate"`
	ProfileCompletion int      `json:"profile_completion"`
	NewBadges         []string `json:"new_badges,omitempty"`
}

// RecomputeDerivedStats refreshes the counters, rates and badges of one
// freelancer. Badges are only ever added.
func (s *Service) RecomputeDerivedStats(ctx context.Context, profileID uuid.UUID) (*Snapshot, error) {
	profile, err := s.repo.ProfileByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.ProfileCounts(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("count profile activity: %w", err)
	}

	snap := &Snapshot{
		Counts:            counts,
		CompletionRate:    CompletionRate(counts.ApprovedTasks, counts.Tasks),
		ProfileCompletion: ProfileCompletion(profile),
	}
	if err := s.repo.UpdateProfileStats(ctx, profileID, map[string]interface{}{
		"task_completion_rate": snap.CompletionRate,
		"profile_completion":   snap.ProfileCompletion,
	}); err != nil {
		return nil, fmt.Errorf("update profile stats: %w", err)
	}

	var defs []models.Badge
	for lvl := 1; lvl <= int(counts.Applications/10); lvl++ {
		defs = append(defs, BadgeDef(models.BadgeApplication, lvl))
	}
	for lvl := 1; lvl <= int(counts.Accepted/5); lvl++ {
		defs = append(defs, BadgeDef(models.BadgeAcceptance, lvl))
	}
	if snap.ProfileCompletion == 100 {
		defs = append(defs, BadgeDef(models.BadgeProfile, 1))
	}

	snap.NewBadges, err = s.award(ctx, profile, defs)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// RecordLogin advances the daily login streak of a freelancer and awards
// the matching streak badge. Other roles are ignored.
func (s *Service) RecordLogin(ctx context.Context, user *models.User, now time.Time) error {
	if user.Role != models.RoleFreelancer {
		return nil
	}
	profile, err := s.repo.ProfileByUserID(ctx, user.ID)
	if err != nil {
		return err
	}

	today := truncateDay(now)
	streak := NextStreak(profile.LoginStreak, profile.LastLoginDate, today)
	if err := s.repo.UpdateProfileStats(ctx, profile.ID, map[string]interface{}{
		"login_streak":    streak,
		"last_login_date": today,
	}); err != nil {
		return fmt.Errorf("update login streak: %w", err)
	}

	if lvl := LoginLevel(streak); lvl > 0 {
		if _, err := s.award(ctx, profile, []models.Badge{BadgeDef(models.BadgeLogin, lvl)}); err != nil {
			return err
		}
	}
	return nil
}

type LeaderboardEntry struct {
	Profile        models.FreelancerProfile `json:"profile"`
	TotalTasks     int64                    `json:"total_tasks"`
	ApprovedTasks  int64                    `json:"approved_tasks"`
	CompletionRate float64                  `json:"completion_rate"`
	Rank           int                      `json:"rank"`
}

// Leaderboard ranks every freelancer by completion rate without storing it.
func (s *Service) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	rows, err := s.repo.RankRows(ctx)
	if err != nil {
		return nil, err
	}
	return rank(rows), nil
}

// RecomputeRanks writes rank_position 1..n for every freelancer.
func (s *Service) RecomputeRanks(ctx context.Context) ([]LeaderboardEntry, error) {
	board, err := s.Leaderboard(ctx)
	if err != nil {
		return nil, err
	}
	ranks := make(map[uuid.UUID]int, len(board))
	for _, e := range board {
		ranks[e.Profile.ID] = e.Rank
	}
	if err := s.repo.SetRanks(ctx, ranks); err != nil {
		return nil, fmt.Errorf("store ranks: %w", err)
	}
	return board, nil
}

// StartRankWorker recomputes ranks every interval until ctx is done.
func (s *Service) StartRankWorker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				board, err := s.RecomputeRanks(ctx)
				if err != nil {
					s.log.WithError(err).Error("rank recompute failed")
					continue
				}
				s.log.WithField("freelancers", len(board)).Debug("ranks recomputed")
			}
		}
	}()
}

func (s *Service) award(ctx context.Context, profile *models.FreelancerProfile, defs []models.Badge) ([]string, error) {
	var earned []string
	for _, def := range defs {
		badge, err := s.repo.EnsureBadge(ctx, def)
		if err != nil {
			return earned, fmt.Errorf("ensure badge %s/%d: %w", def.Type, def.Level, err)
		}
		created, err := s.repo.AwardBadge(ctx, profile.ID, badge.ID)
		if err != nil {
			return earned, fmt.Errorf("award badge %s: %w", badge.Name, err)
		}
		if !created {
			continue
		}
		earned = append(earned, badge.Name)
		s.log.WithFields(logrus.Fields{"profile_id": profile.ID, "badge": badge.Name}).Info("badge earned")

		if s.notify == nil {
			continue
		}
		if err := s.notify.Create(ctx, &models.Notification{
			UserID:  profile.UserID,
			Type:    models.NotifSystem,
			Message: fmt.Sprintf("🎉 Congratulations! You earned the '%s' badge!", badge.Name),
		}); err != nil {
			s.log.WithError(err).WithField("badge", badge.Name).Warn("badge notification failed")
		}
	}
	return earned, nil
}

func rank(rows []RankRow) []LeaderboardEntry {
	board := make([]LeaderboardEntry, len(rows))
	for i, r := range rows {
		board[i] = LeaderboardEntry{
			Profile:        r.Profile,
			TotalTasks:     r.TotalTasks,
			ApprovedTasks:  r.ApprovedTasks,
			CompletionRate: CompletionRate(r.ApprovedTasks, r.TotalTasks),
		}
	}
	sort.SliceStable(board, func(i, j int) bool {
		if board[i].CompletionRate != board[j].CompletionRate {
			return board[i].CompletionRate > board[j].CompletionRate
		}
		return board[i].ApprovedTasks > board[j].ApprovedTasks
	})
	for i := range board {
		board[i].Rank = i + 1
	}
	return board
}

// CompletionRate is approved/total as a percentage with two decimals.
func CompletionRate(approved, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(approved)/float64(total)*10000) / 100
}

// ProfileCompletion is the share of filled profile fields, truncated to an int percentage.
func ProfileCompletion(p *models.FreelancerProfile) int {
	fields := []string{
		p.FullName,
		p.ProfessionalTitle,
		p.Bio,
		p.Skills,
		string(p.ExperienceLevel),
		p.ProfilePicture,
		p.Resume,
	}
	filled := 0
	for _, f := range fields {
		if f != "" {
			filled++
		}
	}
	return filled * 100 / len(fields)
}

// NextStreak returns the streak after a login on today.
func NextStreak(current int, last *time.Time, today time.Time) int {
	if last == nil {
		return 1
	}
	lastDay := truncateDay(*last)
	switch {
	case lastDay.Equal(today):
		if current < 1 {
			return 1
		}
		return current
	case lastDay.Equal(today.AddDate(0, 0, -1)):
		return current + 1
	default:
		return 1
	}
}

func LoginLevel(streak int) int {
	switch {
	case streak >= 30:
		return 3
	case streak >= 7:
		return 2
	case streak >= 1:
		return 1
	}
	return 0
}

// BadgeDef is the catalogue entry for a badge type and level.
func BadgeDef(t models.BadgeType, level int) models.Badge {
	b := models.Badge{Type: t, Level: level}
	switch t {
	case models.BadgeApplication:
		b.Name = fmt.Sprintf("Application Level %d", level)
		b.Description = fmt.Sprintf("Completed %d job applications", level*10)
		b.Icon = "fa-solid fa-briefcase"
	case models.BadgeAcceptance:
		b.Name = fmt.Sprintf("Acceptance Level %d", level)
		b.Description = fmt.Sprintf("%d job acceptances achieved", level*5)
		b.Icon = "fa-solid fa-check-circle"
	case models.BadgeProfile:
		b.Name = "Profile Master"
		b.Description = "Profile 100% completed"
		b.Icon = "fa-solid fa-user"
	case models.BadgeLogin:
		b.Name = fmt.Sprintf("Login Streak Level %d", level)
		b.Description = fmt.Sprintf("Logged in for %d consecutive days", loginThreshold(level))
		b.Icon = "fa-solid fa-fire"
	}
	return b
}

func loginThreshold(level int) int {
	switch level {
	case 3:
		return 30
	case 2:
		return 7
	}
	return 1
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *Service) Badges(ctx context.Context, profileID uuid.UUID) ([]models.FreelancerBadge, error) {
	return s.repo.ProfileBadges(ctx, profileID)
}
