package wallet

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/models"
)

var ErrNonPositiveAmount = errors.New("amount to credit must be greater than zero")

// CreditFreelancer adds amount to the freelancer's total earnings and writes
// the ledger row for taskID. Call it inside the approving transaction; the
// unique task_id on the ledger stops a task from being paid twice.
func CreditFreelancer(tx *gorm.DB, freelancerProfileID uuid.UUID, amount int64, taskID uuid.UUID, description string) error {
	if amount <= 0 {
		return ErrNonPositiveAmount
	}

	result := tx.Model(&models.FreelancerProfile{}).
		Where("id = ?", freelancerProfileID).
		Update("total_earnings", gorm.Expr("total_earnings + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("freelancer profile %s not found", freelancerProfileID)
	}

	entry := models.EarningEntry{
		ID:                  uuid.New(),
		FreelancerProfileID: freelancerProfileID,
		TaskID:              taskID,
		Amount:              amount,
		Description:         description,
	}
	return tx.Create(&entry).Error
}
