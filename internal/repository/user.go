package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"openlab/internal/model"
)

// userRepository implements UserRepository using sqlx
type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, password_hashed, display_name, photo_url, header_url, bio, headline,
       location, contact_info, tech_stack, languages, education, experience,
       linkedin, github, twitter, instagram,
       follower_count, following_count, created_at, updated_at`

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (email, password_hashed, display_name, photo_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, follower_count, following_count, created_at, updated_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		u.Email,
		u.PasswordHashed,
		u.DisplayName,
		u.PhotoURL,
	)

	err := row.Scan(
		&u.ID,
		&u.FollowerCount,
		&u.FollowingCount,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &u, nil
}

// GetByEmail retrieves a user by their email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &u, nil
}

// ExistsByEmail checks if an email is already registered
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, email)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return exists, nil
}

// UpdateProfile applies the non-nil fields of req and returns the updated
// row. COALESCE keeps untouched columns at their current value; array
// fields are replaced wholesale when provided.
func (r *userRepository) UpdateProfile(ctx context.Context, id int64, req *model.UpdateProfileRequest) (*model.User, error) {
	query := `
		UPDATE users SET
			display_name = COALESCE($2, display_name),
			photo_url    = COALESCE($3, photo_url),
			header_url   = COALESCE($4, header_url),
			bio          = COALESCE($5, bio),
			headline     = COALESCE($6, headline),
			location     = COALESCE($7, location),
			contact_info = COALESCE($8, contact_info),
			tech_stack   = COALESCE($9, tech_stack),
			languages    = COALESCE($10, languages),
			education    = COALESCE($11, education),
			experience   = COALESCE($12, experience),
			linkedin     = COALESCE($13, linkedin),
			github       = COALESCE($14, github),
			twitter      = COALESCE($15, twitter),
			instagram    = COALESCE($16, instagram),
			updated_at   = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	var u model.User
	err := r.db.GetContext(ctx, &u, query, id,
		req.DisplayName,
		req.PhotoURL,
		req.HeaderURL,
		req.Bio,
		req.Headline,
		req.Location,
		req.ContactInfo,
		stringArrayOrNil(req.TechStack),
		stringArrayOrNil(req.Languages),
		stringArrayOrNil(req.Education),
		stringArrayOrNil(req.Experience),
		req.Linkedin,
		req.Github,
		req.Twitter,
		req.Instagram,
	)
	if err == sql.ErrNoRows {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return &u, nil
}

func (r *userRepository) Search(ctx context.Context, query string, limit int) ([]model.UserSummary, error) {
	searchQuery := `
		SELECT id, email, display_name, photo_url
		FROM users
		WHERE display_name ILIKE $1 OR email ILIKE $1
		ORDER BY follower_count DESC
		LIMIT $2
	`

	var users []model.UserSummary
	err := r.db.SelectContext(ctx, &users, searchQuery, query+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	return users, nil
}

// ListEngagement aggregates each user's engagement sums over all of their
// projects, including invisible ones. Ordered by registration time so the
// ranking fold has a deterministic input order for tie-breaking.
func (r *userRepository) ListEngagement(ctx context.Context) ([]UserEngagement, error) {
	query := `
		SELECT u.id, u.email, u.display_name, u.photo_url,
		       u.follower_count AS followers,
		       COALESCE(SUM(p.like_count), 0)    AS likes,
		       COALESCE(SUM(p.save_count), 0)    AS saves,
		       COALESCE(SUM(p.comment_count), 0) AS comments
		FROM users u
		LEFT JOIN projects p ON p.author_id = u.id
		GROUP BY u.id
		ORDER BY u.created_at ASC, u.id ASC
	`

	type row struct {
		ID          int64   `db:"id"`
		Email       string  `db:"email"`
		DisplayName *string `db:"display_name"`
		PhotoURL    *string `db:"photo_url"`
		Followers   int     `db:"followers"`
		Likes       int     `db:"likes"`
		Saves       int     `db:"saves"`
		Comments    int     `db:"comments"`
	}

	var rows []row
	err := r.db.SelectContext(ctx, &rows, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list engagement: %w", err)
	}

	result := make([]UserEngagement, len(rows))
	for i, rw := range rows {
		result[i] = UserEngagement{
			UserSummary: model.UserSummary{
				ID:          rw.ID,
				Email:       rw.Email,
				DisplayName: rw.DisplayName,
				PhotoURL:    rw.PhotoURL,
			},
			Stats: model.EngagementStats{
				Likes:     rw.Likes,
				Saves:     rw.Saves,
				Comments:  rw.Comments,
				Followers: rw.Followers,
			},
		}
	}

	return result, nil
}

// stringArrayOrNil maps a nil slice to SQL NULL so COALESCE leaves the
// column unchanged.
func stringArrayOrNil(values []string) interface{} {
	if values == nil {
		return nil
	}
	return pq.StringArray(values)
}
