package utils

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const RoomIDPrefix = "room_"

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewRoomID returns a unique, time-sortable room id like "room_01J0Q6...".
func NewRoomID() string {
	return NewRoomIDAt(time.Now())
}

// NewRoomIDAt is NewRoomID for a fixed timestamp.
func NewRoomIDAt(t time.Time) string {
	entropyMu.Lock()
	id := ulid.MustNew(ulid.Timestamp(t), entropy)
	entropyMu.Unlock()

	var sb strings.Builder
	sb.WriteString(RoomIDPrefix)
	sb.WriteString(id.String())
	return sb.String()
}

// IsRoomID reports whether s looks like an id from NewRoomID.
func IsRoomID(s string) bool {
	if !strings.HasPrefix(s, RoomIDPrefix) {
		return false
	}
	_, err := ulid.ParseStrict(strings.TrimPrefix(s, RoomIDPrefix))
	return err == nil
}
