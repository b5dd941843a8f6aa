package models

import (
	"context"
	"os"

	"bitbucket.org/mmdatafocus/pharmacy_backend/utils"
)

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	Token    string   `json:"token"`
	UserId   string   `json:"user_id"`
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
}

// Login checks credentials and issues a signed token. Unknown users
// and bad passwords get the same answer.
func Login(ctx context.Context, input *LoginInput) (*LoginResult, error) {
	user, err := GetUserByUsername(ctx, input.Username)
	if err != nil {
		return nil, utils.ForbiddenOperation("invalid username or password")
	}
	if err := utils.ComparePassword(user.Password, input.Password); err != nil {
		return nil, utils.ForbiddenOperation("invalid username or password")
	}

	token, err := utils.JwtGenerate(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:    token,
		UserId:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

// EnsureDefaultAdmin seeds the bootstrap admin account when no admin
// exists yet. Credentials come from ADMIN_USERNAME/ADMIN_PASSWORD.
func EnsureDefaultAdmin(ctx context.Context) error {
	count, err := utils.ResourceCountWhere[User](ctx, "role = ?", UserRoleAdmin)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "Admin"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	_, err = CreateUser(ctx, &NewUser{
		Username: username,
		Password: password,
		Role:     UserRoleAdmin,
	})
	return err
}
