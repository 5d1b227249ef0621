package tasks

import (
	"errors"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/models"
)

var ErrInvalidTransition = errors.New("tasks: invalid transition")

// freelancerMoves lists the statuses a freelancer may set from each status.
// A completed task may be resubmitted after a disapproval.
var freelancerMoves = map[models.TaskStatus][]models.TaskStatus{
	models.TaskTodo:       {models.TaskInProgress, models.TaskCompleted},
	models.TaskInProgress: {models.TaskInProgress, models.TaskCompleted},
	models.TaskCompleted:  {models.TaskCompleted},
}

func CanFreelancerMove(from, to models.TaskStatus) bool {
	for _, s := range freelancerMoves[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Start moves a task into in_progress.
func Start(t *models.Task) error {
	if !CanFreelancerMove(t.Status, models.TaskInProgress) {
		return ErrInvalidTransition
	}
	t.Status = models.TaskInProgress
	return nil
}

// Submit marks the work as done and waiting for the recruiter. An empty
// deliverable keeps the current file.
func Submit(t *models.Task, deliverable string) error {
	if !CanFreelancerMove(t.Status, models.TaskCompleted) {
		return ErrInvalidTransition
	}
	t.Status = models.TaskCompleted
	t.ApprovalStatus = models.ApprovalPending
	if deliverable != "" {
		t.FreelancerFile = deliverable
	}
	return nil
}

// Approve accepts a completed task. The task leaves completed, so a second
// approval or a late disapproval fails the guard.
func Approve(t *models.Task) error {
	if t.Status != models.TaskCompleted {
		return ErrInvalidTransition
	}
	t.Status = models.TaskApproved
	t.ApprovalStatus = models.ApprovalApproved
	return nil
}

// Disapprove sends a completed task back for revision. The status stays
// completed so the freelancer can resubmit.
func Disapprove(t *models.Task) error {
	if t.Status != models.TaskCompleted {
		return ErrInvalidTransition
	}
	t.ApprovalStatus = models.ApprovalDisapproved
	return nil
}

// Earnings converts an annual salary in lakhs to one month in rupees.
func Earnings(salaryLakhs int64) int64 {
	if salaryLakhs <= 0 {
		return 0
	}
	return salaryLakhs * 100000 / 12
}
