package chat

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/skillhub_be/internal/models"
)

type memRepo struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*models.User
	rooms     map[uuid.UUID]*models.ChatRoom
	messages  []models.Message
	failTouch bool
}

func newMemRepo() *memRepo {
	return &memRepo{users: map[uuid.UUID]*models.User{}, rooms: map[uuid.UUID]*models.ChatRoom{}}
}

func (r *memRepo) addUser(name string, role models.Role) uuid.UUID {
	u := &models.User{ID: uuid.New(), Name: name, Role: role}
	r.users[u.ID] = u
	return u.ID
}

func (r *memRepo) addRoom(recruiterID, freelancerID uuid.UUID) *models.ChatRoom {
	room := &models.ChatRoom{ID: uuid.New(), RecruiterID: recruiterID, FreelancerID: freelancerID}
	r.rooms[room.ID] = room
	return room
}

func (r *memRepo) room(id uuid.UUID) models.ChatRoom {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.rooms[id]
}

func (r *memRepo) RoomByID(ctx context.Context, id uuid.UUID) (*models.ChatRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *room
	return &cp, nil
}

func (r *memRepo) GetOrCreateRoom(ctx context.Context, recruiterID, freelancerID uuid.UUID) (*models.ChatRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, room := range r.rooms {
		if room.RecruiterID == recruiterID && room.FreelancerID == freelancerID {
			cp := *room
			return &cp, nil
		}
	}
	room := &models.ChatRoom{ID: uuid.New(), RecruiterID: recruiterID, FreelancerID: freelancerID}
	r.rooms[room.ID] = room
	cp := *room
	return &cp, nil
}

func (r *memRepo) RoomsForUser(ctx context.Context, userID uuid.UUID) ([]models.ChatRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ChatRoom
	for _, room := range r.rooms {
		if room.RecruiterID == userID || room.FreelancerID == userID {
			cp := *room
			cp.Recruiter = r.users[room.RecruiterID]
			cp.Freelancer = r.users[room.FreelancerID]
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *memRepo) RecentMessages(ctx context.Context, roomID uuid.UUID, limit int) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []models.Message
	for _, m := range r.messages {
		if m.ChatRoomID == roomID {
			m.Sender = r.users[m.SenderID]
			all = append(all, m)
		}
	}
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

func (r *memRepo) CreateMessage(ctx context.Context, msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.ID = uuid.New()
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *memRepo) TouchRoom(ctx context.Context, roomID uuid.UUID, preview string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failTouch {
		return gorm.ErrInvalidDB
	}
	r.rooms[roomID].LastMessage = preview
	r.rooms[roomID].UpdatedAt = at
	return nil
}

func (r *memRepo) IncrementUnread(ctx context.Context, roomID uuid.UUID, side models.Side) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room := r.rooms[roomID]
	if side == models.SideRecruiter {
		room.RecruiterUnreadCount++
		return room.RecruiterUnreadCount, nil
	}
	room.FreelancerUnreadCount++
	return room.FreelancerUnreadCount, nil
}

func (r *memRepo) ResetUnread(ctx context.Context, roomID uuid.UUID, side models.Side) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room := r.rooms[roomID]
	if side == models.SideRecruiter {
		room.RecruiterUnreadCount = 0
	} else {
		room.FreelancerUnreadCount = 0
	}
	return nil
}

func (r *memRepo) UserName(ctx context.Context, userID uuid.UUID) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return "", gorm.ErrRecordNotFound
	}
	return u.Name, nil
}

type roomCall struct {
	RoomID uuid.UUID
	Event  interface{}
}

type pushCall struct {
	UserID uuid.UUID
	Event  interface{}
}

type recorder struct {
	mu     sync.Mutex
	rooms  []roomCall
	pushes []pushCall
}

func (r *recorder) BroadcastRoom(roomID uuid.UUID, v interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms = append(r.rooms, roomCall{roomID, v})
}

func (r *recorder) Push(ctx context.Context, userID uuid.UUID, event interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pushes = append(r.pushes, pushCall{userID, event})
}
