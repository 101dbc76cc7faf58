package dto

import "github.com/heartletter/letter_api/model"

// ==================== AUTHENTICATION REQUEST DTOs ====================

type RegisterRequest struct {
	Nickname string `json:"nickname" validate:"required,notblank,max=30" example:"양양"`
	Password string `json:"password" validate:"required,digit_password" example:"1234"`
}

func (r RegisterRequest) Validate() error {
	return GetValidator().Struct(r)
}

type LoginRequest struct {
	Nickname string `json:"nickname" validate:"required" example:"양양"`
	Password string `json:"password" validate:"required" example:"1234"`
}

func (l LoginRequest) Validate() error {
	return GetValidator().Struct(l)
}

// ==================== AUTHENTICATION RESPONSE DTOs ====================

type AuthResponse struct {
	User        model.User `json:"user"`
	AccessToken string     `json:"accessToken"`
	ExpiresIn   int64      `json:"expiresIn" example:"86400"`
}
