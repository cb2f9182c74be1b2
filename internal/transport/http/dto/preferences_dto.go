package dto

type PreferencesResponse struct {
	Discoverable bool     `json:"discoverable"`
	SeekingTypes []string `json:"seeking_types"`
	BudgetMin    *int     `json:"budget_min,omitempty"`
	BudgetMax    *int     `json:"budget_max,omitempty"`
}

type PreferencesUpdateRequest struct {
	Discoverable *bool    `json:"discoverable,omitempty"`
	SeekingTypes []string `json:"seeking_types,omitempty"`
	BudgetMin    *int     `json:"budget_min,omitempty"`
	BudgetMax    *int     `json:"budget_max,omitempty"`
}
