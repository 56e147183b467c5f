package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"

	"github.com/veridoc/veridoc/pkg/models"
	"github.com/veridoc/veridoc/pkg/persistence"
)

// UserRepository reads user profiles from a single <root>/users.json file.
// The directory of profiles is small and externally managed.
type UserRepository struct {
	root string
}

// NewUserRepository creates a new user repository.
func NewUserRepository(root string) *UserRepository {
	return &UserRepository{root: root}
}

func (ur *UserRepository) path() string {
	return path.Join(ur.root, "users.json")
}

// Users returns every user profile.
func (ur *UserRepository) Users(ctx context.Context) ([]*models.UserProfile, error) {
	data, err := os.ReadFile(ur.path())
	if err != nil {
		if os.IsNotExist(err) {
			return make([]*models.UserProfile, 0), nil
		}

		return nil, fmt.Errorf("failed to read users: %w", err)
	}

	var users []*models.UserProfile
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to unmarshal users: %w", err)
	}

	return users, nil
}

// UserByID returns the profile with the given ID or
// persistence.ErrUserNotFound.
func (ur *UserRepository) UserByID(ctx context.Context, id string) (*models.UserProfile, error) {
	users, err := ur.Users(ctx)
	if err != nil {
		return nil, err
	}

	for _, user := range users {
		if user.ID == id {
			return user, nil
		}
	}

	return nil, persistence.ErrUserNotFound
}

// SaveUsers replaces the user directory. Used by seeding and tests.
func (ur *UserRepository) SaveUsers(ctx context.Context, users []*models.UserProfile) error {
	if err := os.MkdirAll(ur.root, 0o755); err != nil {
		return fmt.Errorf("failed to create root directory: %w", err)
	}

	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal users: %w", err)
	}

	if err := os.WriteFile(ur.path(), data, 0o644); err != nil {
		return fmt.Errorf("failed to write users: %w", err)
	}

	return nil
}
