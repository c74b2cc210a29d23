package utils

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/evask/materialforge-backend/internal/logger"
	"github.com/evask/materialforge-backend/internal/normalization"
	"github.com/evask/materialforge-backend/internal/repos"
	"github.com/evask/materialforge-backend/internal/types"
)

func InputValidation(ctx context.Context, ffor string, userRepo repos.UserRepo, log *logger.Logger, user *types.User, email, password string) error {
	validatedFor := normalization.ParseInputString(ffor)
	if validatedFor == "" {
		return fmt.Errorf("For string is nil, needs to be login or registration")
	}
	switch validatedFor {
	case "registration":
		if err := handleRegisterInputValidation(ctx, userRepo, log, user); err != nil {
			return err
		}
	case "login":
		if err := handleLoginInputValidation(ctx, log, email, password); err != nil {
			return err
		}
	}
	return nil
}

func handleRegisterInputValidation(ctx context.Context, userRepo repos.UserRepo, log *logger.Logger, user *types.User) error {
	if user == nil {
		return fmt.Errorf("%w: no user given", types.ErrInvalidInput)
	}
	if user.Email == "" || !strings.Contains(user.Email, "@") {
		return fmt.Errorf("%w: a valid email is required to register", types.ErrInvalidInput)
	}
	if user.Username == "" {
		return fmt.Errorf("%w: a username is required to register", types.ErrInvalidInput)
	}
	if len(user.Password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", types.ErrInvalidInput)
	}
	emailExists, err := userRepo.EmailExists(ctx, nil, user.Email)
	if err != nil {
		return fmt.Errorf("Failed to check user email: %w", err)
	}
	if emailExists {
		return types.ErrEmailAlreadyExists
	}
	usernameExists, err := userRepo.UsernameExists(ctx, nil, user.Username)
	if err != nil {
		return fmt.Errorf("Failed to check username: %w", err)
	}
	if usernameExists {
		return types.ErrUsernameTaken
	}
	return nil
}

func handleLoginInputValidation(ctx context.Context, log *logger.Logger, username, password string) error {
	if username == "" {
		return fmt.Errorf("%w: username is required to login", types.ErrInvalidInput)
	}
	if password == "" {
		return fmt.Errorf("%w: password is required to login", types.ErrInvalidInput)
	}
	return nil
}

func HashPassword(ctx context.Context, log *logger.Logger, user *types.User) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("Failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)
	return nil
}

// NormalizeUserFields lowercases and trims identity fields. The
// password is left as typed.
func NormalizeUserFields(ctx context.Context, user *types.User) {
	user.Email = normalization.ParseInputString(user.Email)
	user.Username = normalization.ParseInputString(user.Username)
	user.Password = strings.TrimSpace(user.Password)
}
