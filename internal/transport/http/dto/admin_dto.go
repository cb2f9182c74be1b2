package dto

type SweepResponse struct {
	OK      bool  `json:"ok"`
	Expired int64 `json:"expired"`
}
