package dto

type PreferencesRequest struct {
	MinAge           int    `json:"min_age"`
	MaxAge           int    `json:"max_age"`
	GenderPreference string `json:"gender_preference"`
	MaxDistanceKM    int    `json:"max_distance_km"`
}

type LocationRequest struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	City    string  `json:"city"`
	Country string  `json:"country"`
}

type SleepRequest struct {
	Sleeping bool `json:"sleeping"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}
