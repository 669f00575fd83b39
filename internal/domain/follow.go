package domain

import "time"

// FollowEdge is a directed relation meaning "follower observes followed".
// At most one edge exists per ordered pair, and the endpoints are always
// distinct; the backing store enforces both.
type FollowEdge struct {
	FollowerID UserID
	FollowedID UserID
	CreatedAt  time.Time
}
