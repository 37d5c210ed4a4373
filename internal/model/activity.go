package model

import "time"

// Activity types and actions as they appear in the recent activity feed.
const (
	ActivityMovie  = "movie"
	ActivityUser   = "user"
	ActivityAdmin  = "admin"
	ActivityReview = "review"

	ActionCreated    = "created"
	ActionUpdated    = "updated"
	ActionRegistered = "registered"
	ActionSubmitted  = "submitted"
)

// Activity is one entry of the merged recent-activity feed.  Only the fields
// relevant to Type are populated; the rest are omitted from JSON.
type Activity struct {
	Type       string    `json:"type"`
	Action     string    `json:"action"`
	ID         uint64    `json:"id"`
	Title      string    `json:"title,omitempty"`
	FirstName  string    `json:"first_name,omitempty"`
	LastName   string    `json:"last_name,omitempty"`
	Email      string    `json:"email,omitempty"`
	MovieTitle string    `json:"movie_title,omitempty"`
	Rating     int       `json:"rating,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Timestamp  time.Time `json:"timestamp"`
}

// EffectiveTime is the instant the feed sorts by: the update time for
// "updated" entries, the creation time otherwise.
func (a *Activity) EffectiveTime() time.Time {
	if a.Action == ActionUpdated {
		return a.UpdatedAt
	}
	return a.CreatedAt
}
