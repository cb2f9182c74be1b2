package dto

type SwipeRequest struct {
	TargetID  int64  `json:"target_id"`
	Direction string `json:"direction"`
}

type SwipeResponse struct {
	OK       bool   `json:"ok"`
	Matched  bool   `json:"matched"`
	MatchID  *int64 `json:"match_id,omitempty"`
	ThreadID string `json:"thread_id,omitempty"`
}
