package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Room is a bookable room. It lives inside exactly one Space.
type Room struct {
	ID   string `json:"id" example:"room_01J0Q6Z8Y4W5X9ABCDEF123456"`
	Name string `json:"name" example:"A101"`
}

type Space struct {
	ID    uuid.UUID                  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name  string                     `gorm:"type:varchar(255);not null" json:"name" example:"Bloco A - Principal"`
	Rooms datatypes.JSONType[[]Room] `gorm:"type:jsonb;not null;default:'[]'" swaggertype:"array,object" json:"rooms"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Space) TableName() string { return "spaces" }

// RoomList returns the ordered rooms of the space, never nil.
func (s Space) RoomList() []Room {
	rooms := s.Rooms.Data()
	if rooms == nil {
		return []Room{}
	}
	return rooms
}

// FindRoom looks up a room of the space by id.
func (s Space) FindRoom(roomID string) (Room, bool) {
	for _, r := range s.Rooms.Data() {
		if r.ID == roomID {
			return r, true
		}
	}
	return Room{}, false
}

// SetRooms replaces the room list.
func (s *Space) SetRooms(rooms []Room) {
	if rooms == nil {
		rooms = []Room{}
	}
	s.Rooms = datatypes.NewJSONType(rooms)
}
