package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/pharmacy_backend/config"
	"bitbucket.org/mmdatafocus/pharmacy_backend/utils"
	"gorm.io/gorm"
)

type User struct {
	ID       string   `gorm:"primaryKey;size:36" json:"id"`
	Username string   `gorm:"size:50;not null;uniqueIndex" json:"username" binding:"required"`
	Email    string   `gorm:"size:100" json:"email"`
	Phone    string   `gorm:"size:20" json:"phone"`
	Password string   `gorm:"size:100;not null" json:"-"`
	Role     UserRole `gorm:"size:30;not null" json:"role"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.ID = newResourceId(u.ID)
	return nil
}

type NewUser struct {
	Username string   `json:"username" binding:"required"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Password string   `json:"password" binding:"required,min=6"`
	Role     UserRole `json:"role" binding:"required"`
}

type UpdateUserInput struct {
	Email    *string   `json:"email"`
	Phone    *string   `json:"phone"`
	Password *string   `json:"password"`
	Role     *UserRole `json:"role"`
}

func (input *NewUser) validate(ctx context.Context) error {
	if err := input.Role.IsValid(); err != nil {
		return utils.BadRequestError(err.Error())
	}
	if err := utils.ValidateUnique[User](ctx, "username", input.Username, ""); err != nil {
		return err
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return utils.BadRequestError("invalid email")
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return utils.BadRequestError("invalid phone number")
		}
	}
	return nil
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {
	db := config.GetDB()

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := User{
		Username: input.Username,
		Email:    input.Email,
		Phone:    input.Phone,
		Password: string(hashed),
		Role:     input.Role,
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUser(ctx context.Context, id string) (*User, error) {
	user, err := utils.FetchModel[User](ctx, id)
	if err != nil {
		return nil, utils.NotFoundError("user not found")
	}
	return user, nil
}

func GetUserByUsername(ctx context.Context, username string) (*User, error) {
	db := config.GetDB()

	var user User
	err := db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, utils.NotFoundError("user not found")
	}
	return &user, nil
}

func GetUsers(ctx context.Context) ([]*User, error) {
	return utils.FetchAllModels[User](ctx)
}

func UpdateUser(ctx context.Context, id string, input *UpdateUserInput) (*User, error) {
	db := config.GetDB()

	user, err := GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Email != nil {
		if *input.Email != "" && !utils.IsValidEmail(*input.Email) {
			return nil, utils.BadRequestError("invalid email")
		}
		updates["Email"] = *input.Email
	}
	if input.Phone != nil {
		if *input.Phone != "" {
			if err := utils.ValidatePhoneNumber(*input.Phone, utils.CountryCode); err != nil {
				return nil, utils.BadRequestError("invalid phone number")
			}
		}
		updates["Phone"] = *input.Phone
	}
	if input.Role != nil {
		if err := input.Role.IsValid(); err != nil {
			return nil, utils.BadRequestError(err.Error())
		}
		updates["Role"] = *input.Role
	}
	if input.Password != nil {
		if len(*input.Password) < 6 {
			return nil, utils.BadRequestError("password must be at least 6 characters")
		}
		hashed, err := utils.HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		updates["Password"] = string(hashed)
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser tombstones a user. The last admin cannot be removed.
func DeleteUser(ctx context.Context, id string) (*User, error) {
	db := config.GetDB()

	user, err := GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if user.Role == UserRoleAdmin {
		count, err := utils.ResourceCountWhere[User](ctx, "role = ? AND NOT id = ?", UserRoleAdmin, id)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, utils.ForbiddenOperation("cannot delete the last admin")
		}
	}

	if err := db.WithContext(ctx).Delete(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}
