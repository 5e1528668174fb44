package dto

import "time"

type LoginRequestDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponseDTO struct {
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}
