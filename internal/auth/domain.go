package auth

import "time"

// User represents an account able to call the API.
type User struct {
	ID           int64     `json:"id" db:"id"`
	DisplayName  string    `json:"display_name" db:"display_name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	Phone        *string   `json:"phone,omitempty" db:"phone"`
	Country      *string   `json:"country,omitempty" db:"country"`
	City         *string   `json:"city,omitempty" db:"city"`
	Address      *string   `json:"address,omitempty" db:"address"`
	Company      *string   `json:"company,omitempty" db:"company"`
	About        *string   `json:"about,omitempty" db:"about"`
	IsVerified   bool      `json:"is_verified" db:"is_verified"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateUserRequest struct {
	DisplayName string  `json:"display_name" validate:"required,max=200"`
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=8"`
	Role        string  `json:"role" validate:"required,oneof=admin user"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Country     *string `json:"country,omitempty" validate:"omitempty,max=100"`
	City        *string `json:"city,omitempty" validate:"omitempty,max=100"`
	Address     *string `json:"address,omitempty" validate:"omitempty,max=200"`
	Company     *string `json:"company,omitempty" validate:"omitempty,max=200"`
}

type UpdateUserRequest struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,max=200"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Role        *string `json:"role,omitempty" validate:"omitempty,oneof=admin user"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Country     *string `json:"country,omitempty" validate:"omitempty,max=100"`
	City        *string `json:"city,omitempty" validate:"omitempty,max=100"`
	Address     *string `json:"address,omitempty" validate:"omitempty,max=200"`
	Company     *string `json:"company,omitempty" validate:"omitempty,max=200"`
	About       *string `json:"about,omitempty"`
	IsVerified  *bool   `json:"is_verified,omitempty"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=active banned"`
}
