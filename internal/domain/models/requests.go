package models

// ListSignalsRequest filters the signals query surface. Since accepts
// RFC3339 or unix seconds.
type ListSignalsRequest struct {
	Symbol string `query:"symbol" validate:"omitempty,max=32"`
	Source string `query:"source" validate:"omitempty,oneof=STOCK OPTIONS POLY SENATE HOUSE INSIDER CONGRESS"`
	Since  string `query:"since" validate:"omitempty,max=64"`
	Limit  int    `query:"limit" default:"100" validate:"gte=1,lte=500"`
	Offset int    `query:"offset" validate:"gte=0"`
}

// ListAlertsRequest filters the alerts query surface.
type ListAlertsRequest struct {
	Symbol string `query:"symbol" validate:"omitempty,max=32"`
	Limit  int    `query:"limit" default:"100" validate:"gte=1,lte=200"`
	Offset int    `query:"offset" validate:"gte=0"`
}
