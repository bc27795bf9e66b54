package dto

type ActionRequest struct {
	TargetID string `json:"target_id"`
	Action   string `json:"action"`
}

type ActionResponse struct {
	OK           bool `json:"ok"`
	MatchCreated bool `json:"match_created"`
}
