package model

import (
	"errors"
	"time"

	"github.com/lib/pq"
)

// User represents a member profile. Profiles are created at registration
// (the explicit form of the lazy "ensure profile on first sign-in" step).
type User struct {
	ID             int64   `db:"id" json:"id"`
	Email          string  `db:"email" json:"email"`
	PasswordHashed string  `db:"password_hashed" json:"-"`
	DisplayName    *string `db:"display_name" json:"display_name"`
	PhotoURL       *string `db:"photo_url" json:"photo_url"`
	HeaderURL      *string `db:"header_url" json:"header_url"`
	Bio            *string `db:"bio" json:"bio"`
	Headline       *string `db:"headline" json:"headline"`
	Location       *string `db:"location" json:"location"`
	ContactInfo    *string `db:"contact_info" json:"contact_info"`

	TechStack  pq.StringArray `db:"tech_stack" json:"tech_stack"`
	Languages  pq.StringArray `db:"languages" json:"languages"`
	Education  pq.StringArray `db:"education" json:"education"`
	Experience pq.StringArray `db:"experience" json:"experience"`

	Linkedin  *string `db:"linkedin" json:"linkedin"`
	Github    *string `db:"github" json:"github"`
	Twitter   *string `db:"twitter" json:"twitter"`
	Instagram *string `db:"instagram" json:"instagram"`

	FollowerCount  int `db:"follower_count" json:"follower_count"`
	FollowingCount int `db:"following_count" json:"following_count"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Name returns the denormalized author name stored on projects and
// comments: display name when set, otherwise the email.
func (u *User) Name() string {
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	return u.Email
}

// RegisterRequest represents the data needed to register a new user
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest carries the editable profile fields. Nil pointers
// and nil slices mean "leave unchanged".
type UpdateProfileRequest struct {
	DisplayName *string  `json:"display_name"`
	PhotoURL    *string  `json:"photo_url"`
	HeaderURL   *string  `json:"header_url"`
	Bio         *string  `json:"bio"`
	Headline    *string  `json:"headline"`
	Location    *string  `json:"location"`
	ContactInfo *string  `json:"contact_info"`
	TechStack   []string `json:"tech_stack"`
	Languages   []string `json:"languages"`
	Education   []string `json:"education"`
	Experience  []string `json:"experience"`
	Linkedin    *string  `json:"linkedin"`
	Github      *string  `json:"github"`
	Twitter     *string  `json:"twitter"`
	Instagram   *string  `json:"instagram"`
}

// ProfileResponse is a user profile enriched with the viewer's follow status.
type ProfileResponse struct {
	User        *User `json:"user"`
	IsFollowing bool  `json:"is_following"`
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailExists is returned when attempting to register a taken email
	ErrEmailExists = errors.New("email already registered")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")
)
