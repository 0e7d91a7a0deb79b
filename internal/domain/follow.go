package domain

import "time"

// Follow is a directed edge: Follower follows Followee.
type Follow struct {
	FollowerID string    `json:"follower_id"`
	FolloweeID string    `json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// FollowSummary is the projection of a user shown in follower listings.
type FollowSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Profile  string `json:"profile"`
}

// FollowAction is the outcome of a follow toggle.
type FollowAction string

const (
	Followed   FollowAction = "followed"
	Unfollowed FollowAction = "unfollowed"
)
