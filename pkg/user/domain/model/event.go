package model

import "github.com/google/uuid"

type UserRegistered struct {
	UserID uuid.UUID
	Email  string
	Name   string
}

func (e UserRegistered) Type() string { return "UserRegistered" }

type UserPromotedToAdmin struct {
	UserID uuid.UUID
}

func (e UserPromotedToAdmin) Type() string { return "UserPromotedToAdmin" }

type UserStatusChanged struct {
	UserID    uuid.UUID
	OldStatus UserStatus
	NewStatus UserStatus
}

func (e UserStatusChanged) Type() string { return "UserStatusChanged" }
