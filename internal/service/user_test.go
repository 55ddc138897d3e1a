package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"openlab/internal/model"
)

func TestUserService_Register_Success(t *testing.T) {
	mockRepo := &mockUserRepository{
		createFn: func(ctx context.Context, user *model.User) error {
			user.ID = 1
			user.CreatedAt = time.Now()
			user.UpdatedAt = time.Now()
			return nil
		},
	}
	svc := NewUserService(mockRepo, &mockFollowRepository{}, &mockProjectRepository{}, "https://cdn.example.com/default.jpg")

	req := &model.RegisterRequest{
		Email:       "Test@Example.COM",
		Password:    "securepassword123",
		DisplayName: "Test User",
	}

	user, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if user.Email != "test@example.com" {
		t.Errorf("email = %q, want lowercased %q", user.Email, "test@example.com")
	}
	if user.DisplayName == nil || *user.DisplayName != "Test User" {
		t.Errorf("display_name = %v, want %q", user.DisplayName, "Test User")
	}
	if user.PhotoURL == nil || *user.PhotoURL != "https://cdn.example.com/default.jpg" {
		t.Errorf("photo_url = %v, want default avatar", user.PhotoURL)
	}

	if user.PasswordHashed == req.Password {
		t.Error("password should be hashed, not stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password)); err != nil {
		t.Errorf("stored hash does not verify against the password: %v", err)
	}
}

func TestUserService_Register_EmailTaken(t *testing.T) {
	mockRepo := &mockUserRepository{
		existsByEmailFn: func(ctx context.Context, email string) (bool, error) {
			return true, nil
		},
	}
	svc := NewUserService(mockRepo, &mockFollowRepository{}, &mockProjectRepository{}, "")

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "taken@example.com",
		Password: "pw",
	})
	if !errors.Is(err, model.ErrEmailExists) {
		t.Fatalf("err = %v, want ErrEmailExists", err)
	}
	if len(mockRepo.createCalls) != 0 {
		t.Error("duplicate email must not reach Create")
	}
}

func TestUserService_Login(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	mockRepo := &mockUserRepository{
		getByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			if email == "ana@example.com" {
				return &model.User{ID: 1, Email: email, PasswordHashed: string(hash)}, nil
			}
			return nil, model.ErrUserNotFound
		},
	}
	svc := NewUserService(mockRepo, &mockFollowRepository{}, &mockProjectRepository{}, "")
	ctx := context.Background()

	if _, err := svc.Login(ctx, &model.LoginRequest{Email: "ana@example.com", Password: "correct-horse"}); err != nil {
		t.Errorf("valid login failed: %v", err)
	}

	// Wrong password and unknown email both map to the same error so the
	// response doesn't leak which emails exist.
	if _, err := svc.Login(ctx, &model.LoginRequest{Email: "ana@example.com", Password: "wrong"}); !errors.Is(err, model.ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, &model.LoginRequest{Email: "ghost@example.com", Password: "x"}); !errors.Is(err, model.ErrInvalidCredentials) {
		t.Errorf("unknown email: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestUserService_GetProfile_FollowStatus(t *testing.T) {
	mockRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Email: "bea@example.com"}, nil
		},
	}
	followRepo := &mockFollowRepository{
		existsFn: func(ctx context.Context, followerID, followeeID int64) (bool, error) {
			return followerID == 1 && followeeID == 2, nil
		},
	}
	svc := NewUserService(mockRepo, followRepo, &mockProjectRepository{}, "")
	ctx := context.Background()

	viewer := int64(1)
	profile, err := svc.GetProfile(ctx, 2, &viewer)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !profile.IsFollowing {
		t.Error("expected is_following=true for viewer 1")
	}

	// Viewing own profile never checks the follow edge
	self := int64(2)
	profile, err = svc.GetProfile(ctx, 2, &self)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if profile.IsFollowing {
		t.Error("own profile must report is_following=false")
	}
}

// Renaming a user re-syncs the denormalized author name on their projects.
func TestUserService_UpdateProfile_ResyncsAuthorName(t *testing.T) {
	oldName := "Ana"
	newName := "Ana Torres"
	mockRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Email: "ana@example.com", DisplayName: &oldName}, nil
		},
		updateProfileFn: func(ctx context.Context, id int64, req *model.UpdateProfileRequest) (*model.User, error) {
			return &model.User{ID: id, Email: "ana@example.com", DisplayName: req.DisplayName}, nil
		},
	}
	projectRepo := &mockProjectRepository{}
	svc := NewUserService(mockRepo, &mockFollowRepository{}, projectRepo, "")

	_, err := svc.UpdateProfile(context.Background(), 1, &model.UpdateProfileRequest{DisplayName: &newName})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(projectRepo.updateAuthorNameCalls) != 1 {
		t.Fatalf("expected 1 author-name re-sync, got %d", len(projectRepo.updateAuthorNameCalls))
	}
	if projectRepo.updateAuthorNameCalls[0] != newName {
		t.Errorf("re-synced name = %q, want %q", projectRepo.updateAuthorNameCalls[0], newName)
	}
}

func TestUserService_UpdateProfile_NoRenameNoResync(t *testing.T) {
	bio := "IoT tinkerer"
	mockRepo := &mockUserRepository{
		updateProfileFn: func(ctx context.Context, id int64, req *model.UpdateProfileRequest) (*model.User, error) {
			return &model.User{ID: id, Email: "ana@example.com", Bio: req.Bio}, nil
		},
	}
	projectRepo := &mockProjectRepository{}
	svc := NewUserService(mockRepo, &mockFollowRepository{}, projectRepo, "")

	_, err := svc.UpdateProfile(context.Background(), 1, &model.UpdateProfileRequest{Bio: &bio})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(projectRepo.updateAuthorNameCalls) != 0 {
		t.Error("bio-only edit must not re-sync author names")
	}
}

func TestFeedService_EmptyFollowingEmptyFeed(t *testing.T) {
	followRepo := &mockFollowRepository{}
	projectRepo := &mockProjectRepository{
		listVisibleByAuthorsFn: func(ctx context.Context, authorIDs []int64) ([]model.Project, error) {
			t.Fatal("empty following must not query projects")
			return nil, nil
		},
	}
	svc := NewFeedService(projectRepo, followRepo)

	feed, err := svc.GetFeed(context.Background(), 1)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(feed) != 0 {
		t.Errorf("expected empty feed, got %d projects", len(feed))
	}
}

func TestFeedService_ReturnsFolloweeProjects(t *testing.T) {
	followRepo := &mockFollowRepository{
		getFolloweeIDsFn: func(ctx context.Context, userID int64) ([]int64, error) {
			return []int64{2, 3}, nil
		},
	}
	projectRepo := &mockProjectRepository{
		listVisibleByAuthorsFn: func(ctx context.Context, authorIDs []int64) ([]model.Project, error) {
			if len(authorIDs) != 2 {
				t.Errorf("author ids = %v, want two followees", authorIDs)
			}
			return []model.Project{{ID: 7, AuthorID: 2, Visible: true}}, nil
		},
		getLikersFn: func(ctx context.Context, projectIDs []int64) (map[int64][]int64, error) {
			return map[int64][]int64{7: {1}}, nil
		},
	}
	svc := NewFeedService(projectRepo, followRepo)

	feed, err := svc.GetFeed(context.Background(), 1)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(feed) != 1 || !feed[0].IsLiked {
		t.Errorf("unexpected feed: %+v", feed)
	}
}
