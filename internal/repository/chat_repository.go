package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/models"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) RoomByID(ctx context.Context, id uuid.UUID) (*models.ChatRoom, error) {
	var room models.ChatRoom
	if err := r.db.WithContext(ctx).First(&room, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// GetOrCreateRoom relies on the unique pair index so concurrent callers end
// up with the same row.
func (r *ChatRepository) GetOrCreateRoom(ctx context.Context, recruiterID, freelancerID uuid.UUID) (*models.ChatRoom, error) {
	db := r.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "recruiter_id"}, {Name: "freelancer_id"}},
		DoNothing: true,
	}).Create(&models.ChatRoom{ID: uuid.New(), RecruiterID: recruiterID, FreelancerID: freelancerID}).Error
	if err != nil {
		return nil, err
	}

	var room models.ChatRoom
	if err := db.Where("recruiter_id = ? AND freelancer_id = ?", recruiterID, freelancerID).First(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *ChatRepository) RoomsForUser(ctx context.Context, userID uuid.UUID) ([]models.ChatRoom, error) {
	var rooms []models.ChatRoom
	err := r.db.WithContext(ctx).
		Preload("Recruiter").
		Preload("Freelancer").
		Where("recruiter_id = ? OR freelancer_id = ?", userID, userID).
		Order("updated_at DESC").
		Find(&rooms).Error
	return rooms, err
}

func (r *ChatRepository) RecentMessages(ctx context.Context, roomID uuid.UUID, limit int) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("chat_room_id = ?", roomID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (r *ChatRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(msg).Error
}

func (r *ChatRepository) TouchRoom(ctx context.Context, roomID uuid.UUID, preview string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.ChatRoom{}).
		Where("id = ?", roomID).
		Updates(map[string]interface{}{
			"last_message": preview,
			"updated_at":   at,
		}).Error
}

// IncrementUnread bumps the counter in one statement and returns the new value.
func (r *ChatRepository) IncrementUnread(ctx context.Context, roomID uuid.UUID, side models.Side) (int, error) {
	col := models.UnreadColumn(side)
	room := models.ChatRoom{ID: roomID}
	res := r.db.WithContext(ctx).
		Model(&room).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: col}}}).
		UpdateColumn(col, gorm.Expr(col+" + ?", 1))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return room.UnreadFor(side), nil
}

func (r *ChatRepository) ResetUnread(ctx context.Context, roomID uuid.UUID, side models.Side) error {
	return r.db.WithContext(ctx).
		Model(&models.ChatRoom{}).
		Where("id = ?", roomID).
		UpdateColumn(models.UnreadColumn(side), 0).Error
}

func (r *ChatRepository) UserName(ctx context.Context, userID uuid.UUID) (string, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Select("id", "name").First(&u, "id = ?", userID).Error; err != nil {
		return "", err
	}
	return u.Name, nil
}
