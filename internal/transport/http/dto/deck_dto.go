package dto

type DeckCardResponse struct {
	UserID          int64    `json:"user_id"`
	DisplayName     string   `json:"display_name"`
	Headline        string   `json:"headline"`
	City            string   `json:"city"`
	State           string   `json:"state"`
	AvatarURL       *string  `json:"avatar_url,omitempty"`
	AvgRating       float64  `json:"avg_rating"`
	ReviewCount     int      `json:"review_count"`
	EventCount      int      `json:"event_count"`
	Specializations []string `json:"specializations"`
	Score           float64  `json:"score"`
}

type DeckResponse struct {
	Items []DeckCardResponse `json:"items"`
}
