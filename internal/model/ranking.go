package model

// Reputation weights. Each unit of engagement contributes a fixed weight
// to a user's reputation score.
const (
	WeightLike     = 10
	WeightSave     = 3
	WeightComment  = 1
	WeightFollower = 20
)

// EngagementStats are the per-user inputs to the reputation score: sums
// over all the user's projects (visibility is not considered) plus the
// follower count.
type EngagementStats struct {
	Likes     int `db:"likes" json:"likes"`
	Saves     int `db:"saves" json:"saves"`
	Comments  int `db:"comments" json:"comments"`
	Followers int `db:"followers" json:"followers"`
}

// Reputation folds the engagement stats into a single score.
func (s EngagementStats) Reputation() int {
	return s.Followers*WeightFollower +
		s.Comments*WeightComment +
		s.Saves*WeightSave +
		s.Likes*WeightLike
}

// RankedUser is one row of the ranking surface.
type RankedUser struct {
	User       UserSummary     `json:"user"`
	Stats      EngagementStats `json:"stats"`
	Reputation int             `json:"reputation"`
}
