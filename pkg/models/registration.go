package models

import "time"

// PendingRegistration lives only until its code expires or the registration is promoted to a User.
type PendingRegistration struct {
	Code         string    `json:"code"`
	FullName     string    `json:"fullName"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"passwordHash"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
	ChatID       int64     `json:"chatId,omitempty"`
	UserID       int64     `json:"userId,omitempty"`
}

func (r *PendingRegistration) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

func (r *PendingRegistration) Claimed() bool {
	return r.ChatID != 0
}

func (r *PendingRegistration) Verified() bool {
	return r.UserID != 0
}

type RegistrationTicket struct {
	Code      string    `json:"telegramCode"`
	BotURL    string    `json:"botUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}
