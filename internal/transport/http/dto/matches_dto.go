package dto

import "time"

type MatchItemResponse struct {
	ID           int64     `json:"id"`
	TargetUserID int64     `json:"target_user_id"`
	ThreadID     string    `json:"thread_id"`
	DisplayName  string    `json:"display_name"`
	Headline     string    `json:"headline"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type MatchesResponse struct {
	Items []MatchItemResponse `json:"items"`
}

type MatchDetailResponse struct {
	ID           int64     `json:"id"`
	TargetUserID int64     `json:"target_user_id"`
	ThreadID     string    `json:"thread_id"`
	Status       string    `json:"status"`
	Summary      *string   `json:"summary,omitempty"`
	Icebreakers  []string  `json:"icebreakers"`
	DisplayName  string    `json:"display_name"`
	Headline     string    `json:"headline"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	Bio          string    `json:"bio"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}
