package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"openlab/internal/model"
	"openlab/internal/repository"
)

// UserService handles business logic for user accounts and profiles.
type UserService struct {
	repo             repository.UserRepository
	followRepo       repository.FollowRepository
	projectRepo      repository.ProjectRepository
	defaultAvatarURL string
}

func NewUserService(
	repo repository.UserRepository,
	followRepo repository.FollowRepository,
	projectRepo repository.ProjectRepository,
	defaultAvatarURL string,
) *UserService {
	return &UserService{
		repo:             repo,
		followRepo:       followRepo,
		projectRepo:      projectRepo,
		defaultAvatarURL: defaultAvatarURL,
	}
}

// Register creates a new account and its profile in one step.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	if strings.TrimSpace(req.Password) == "" {
		return nil, fmt.Errorf("password is required")
	}

	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, model.ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:          email,
		PasswordHashed: string(hashedPassword),
	}

	if req.DisplayName != "" {
		user.DisplayName = &req.DisplayName
	}
	if s.defaultAvatarURL != "" {
		avatar := s.defaultAvatarURL
		user.PhotoURL = &avatar
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login authenticates a user with email and password.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		// Don't reveal whether the email exists or not
		return nil, model.ErrInvalidCredentials
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password))
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetProfile retrieves a user's profile with follow relationship status.
// The user fetch and the follow check stay as two queries: a failed follow
// check degrades to is_following=false instead of failing the profile.
func (s *UserService) GetProfile(ctx context.Context, userID int64, viewerID *int64) (*model.ProfileResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &model.ProfileResponse{
		User:        user,
		IsFollowing: false,
	}

	if viewerID != nil && *viewerID != userID {
		isFollowing, err := s.followRepo.Exists(ctx, *viewerID, userID)
		if err == nil {
			profile.IsFollowing = isFollowing
		}
	}

	return profile, nil
}

// UpdateProfile applies partial profile edits. When the display name
// changes, the denormalized author name on the user's projects is
// re-synced in the same request.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req *model.UpdateProfileRequest) (*model.User, error) {
	var before *model.User
	if req.DisplayName != nil {
		var err error
		before, err = s.repo.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	user, err := s.repo.UpdateProfile(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	if before != nil && before.Name() != user.Name() {
		if err := s.projectRepo.UpdateAuthorName(ctx, userID, user.Name()); err != nil {
			// Projects keep the stale name until the next rename; the
			// profile update itself succeeded so don't fail it.
			log.Printf("[UserService] Failed to re-sync author name: user=%d err=%v", userID, err)
		}
	}

	return user, nil
}

// Search finds users by display name or email with optional follow status
// enrichment. Uses a batch CheckFollows to avoid N+1 queries.
func (s *UserService) Search(ctx context.Context, query string, limit int, viewerID *int64) ([]model.UserSummary, error) {
	users, err := s.repo.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	if viewerID != nil && len(users) > 0 {
		userIDs := make([]int64, len(users))
		for i, user := range users {
			userIDs[i] = user.ID
		}

		followMap, err := s.followRepo.CheckFollows(ctx, *viewerID, userIDs)
		if err == nil {
			for i := range users {
				users[i].IsFollowing = followMap[users[i].ID]
			}
		}
	}

	return users, nil
}
