package model

import "time"

// Match is the symmetric pairing created on a mutual like. User1ID is always
// the lexicographically smaller ID so a pair has exactly one identity.
type Match struct {
	ID        string    `json:"id"`
	User1ID   string    `json:"user1_id"`
	User2ID   string    `json:"user2_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NormalizePair orders two user IDs so the smaller one comes first.
func NormalizePair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}
