package models

import "time"

// FriendRequest is a single directional request. Accepted rows form the
// friendship relation; rejected rows are deleted.
type FriendRequest struct {
	ID         string    `json:"id"`
	FromUserID string    `json:"from_user_id"`
	ToUserID   string    `json:"to_user_id"`
	Accepted   bool      `json:"accepted"`
	CreatedAt  time.Time `json:"created_at"`
}

type FriendRequestWithSender struct {
	FriendRequest
	FromUser UserResponse `json:"from_user"`
}

type FriendRequestResponse struct {
	ID        string       `json:"id"`
	FromUser  UserResponse `json:"from_user"`
	ToUserID  string       `json:"to_user_id"`
	Accepted  bool         `json:"accepted"`
	CreatedAt time.Time    `json:"created_at"`
}

func (f *FriendRequestWithSender) ToResponse() *FriendRequestResponse {
	return &FriendRequestResponse{
		ID:        f.ID,
		FromUser:  f.FromUser,
		ToUserID:  f.ToUserID,
		Accepted:  f.Accepted,
		CreatedAt: f.CreatedAt,
	}
}
