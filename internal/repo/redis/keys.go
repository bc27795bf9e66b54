package redis

// Typed cache-key builders. Every cached entity gets its own constructor so
// features cannot collide on ad-hoc string concatenation.

const (
	candidatesPrefix = "candidates:"
	likedSetPrefix   = "liked:"
	dislikedPrefix   = "disliked:"
	dislikersPrefix  = "dislikers:"
)

// CandidatesKey holds the requester's ranked candidate ID list.
func CandidatesKey(requesterID string) string {
	return candidatesPrefix + requesterID
}

// LikedSetKey holds the IDs a user has ever liked.
func LikedSetKey(actorID string) string {
	return likedSetPrefix + actorID
}

// DislikedSetKey holds the IDs a user disliked within the recency window.
func DislikedSetKey(actorID string) string {
	return dislikedPrefix + actorID
}

// DislikersSetKey holds the IDs of users who disliked the given user.
func DislikersSetKey(targetID string) string {
	return dislikersPrefix + targetID
}
