package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/models"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/services/tasks"
	"github.com/Windi-Fikriyansyah/skillhub_be/internal/services/wallet"
)

func setupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return gormDB, mock
}

func TestChatRepository_IncrementUnreadReturnsNewCount(t *testing.T) {
	db, mock := setupTestDB(t)
	roomID := uuid.New()

	mock.ExpectQuery(`UPDATE "chat_rooms" SET "freelancer_unread_count"=freelancer_unread_count \+ \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"freelancer_unread_count"}).AddRow(3))

	n, err := NewChatRepository(db).IncrementUnread(context.Background(), roomID, models.SideFreelancer)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatRepository_RecentMessagesOldestFirst(t *testing.T) {
	db, mock := setupTestDB(t)
	roomID, sender := uuid.New(), uuid.New()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "messages" WHERE chat_room_id = \$1 ORDER BY created_at DESC, id DESC LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "chat_room_id", "sender_id", "type", "content", "created_at"}).
			AddRow(uuid.New(), roomID, sender, "text", "third", base.Add(3*time.Second)).
			AddRow(uuid.New(), roomID, sender, "text", "second", base.Add(2*time.Second)).
			AddRow(uuid.New(), roomID, sender, "text", "first", base.Add(time.Second)))
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(sender, "Alice"))

	msgs, err := NewChatRepository(db).RecentMessages(context.Background(), roomID, 50)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "third", msgs[2].Content)
	require.NotNil(t, msgs[0].Sender)
	assert.Equal(t, "Alice", msgs[0].Sender.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_MarkReadOfForeignRow(t *testing.T) {
	db, mock := setupTestDB(t)

	mock.ExpectExec(`UPDATE "notifications" SET "is_read"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewNotificationRepository(db).MarkNotificationRead(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_CountUnread(t *testing.T) {
	db, mock := setupTestDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "notifications" WHERE user_id = \$1 AND is_read = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	n, err := NewNotificationRepository(db).CountUnreadNotifications(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_CountUnapproved(t *testing.T) {
	db, mock := setupTestDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "tasks" WHERE project_id = \$1 AND approval_status <> \$2`).
		WithArgs(sqlmock.AnyArg(), "approved").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := NewTaskRepository(db).CountUnapproved(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Transaction(t *testing.T) {
	tests := []struct {
		name    string
		fnErr   error
		prepare func(sqlmock.Sqlmock)
	}{
		{
			name:  "commit",
			fnErr: nil,
			prepare: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectCommit()
			},
		},
		{
			name:  "rollback on error",
			fnErr: assert.AnError,
			prepare: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectRollback()
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupTestDB(t)
			tt.prepare(mock)

			called := false
			err := NewTaskRepository(db).Transaction(context.Background(), func(tx tasks.Repository) error {
				called = true
				assert.IsType(t, &TaskRepository{}, tx)
				return tt.fnErr
			})

			assert.True(t, called)
			if tt.fnErr != nil {
				assert.ErrorIs(t, err, tt.fnErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTaskRepository_LockProjectInsideTransaction(t *testing.T) {
	db, mock := setupTestDB(t)
	projectID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .*"status".* FROM "projects" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(projectID, "active"))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "tasks" WHERE project_id = \$1 AND approval_status <> \$2`).
		WithArgs(sqlmock.AnyArg(), "approved").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectCommit()

	err := NewTaskRepository(db).Transaction(context.Background(), func(tx tasks.Repository) error {
		p, err := tx.LockProject(context.Background(), projectID)
		if err != nil {
			return err
		}
		assert.Equal(t, models.ProjectActive, p.Status)
		n, err := tx.CountUnapproved(context.Background(), projectID)
		assert.Zero(t, n)
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWallet_CreditFreelancerUnknownProfile(t *testing.T) {
	db, mock := setupTestDB(t)

	mock.ExpectExec(`UPDATE "freelancer_profiles" SET "total_earnings"=total_earnings \+ \$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := wallet.CreditFreelancer(db, uuid.New(), 100000, uuid.New(), "Approved task 'Hero'")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWallet_CreditFreelancerRejectsZero(t *testing.T) {
	db, mock := setupTestDB(t)

	err := wallet.CreditFreelancer(db, uuid.New(), 0, uuid.New(), "")
	assert.True(t, errors.Is(err, wallet.ErrNonPositiveAmount))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarketplaceRepository_ApplicationExists(t *testing.T) {
	db, mock := setupTestDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "applications" WHERE job_id = \$1 AND freelancer_profile_id = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ok, err := NewMarketplaceRepository(db).ApplicationExists(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
