package domain

import "time"

// QueueEntry - игрок, ожидающий соперника в конкретном режиме
type QueueEntry struct {
	GameMode         string    `json:"game_mode"`
	ConnectionHandle string    `json:"connection_handle"`
	DisplayName      string    `json:"display_name"`
	UserID           string    `json:"user_id,omitempty"`
	AvatarRef        string    `json:"avatar_ref,omitempty"`
	JoinedAt         time.Time `json:"joined_at"`
}

// Opponent is the public identity of a matched peer.
type Opponent struct {
	ConnectionHandle string `json:"connection_handle"`
	DisplayName      string `json:"display_name"`
	UserID           string `json:"user_id,omitempty"`
	AvatarRef        string `json:"avatar_ref,omitempty"`
}

func (e QueueEntry) AsOpponent() Opponent {
	return Opponent{
		ConnectionHandle: e.ConnectionHandle,
		DisplayName:      e.DisplayName,
		UserID:           e.UserID,
		AvatarRef:        e.AvatarRef,
	}
}
