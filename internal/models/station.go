package models

// Station is an entry in the station directory (id -> name). Alert records
// snapshot the name at creation time so later renames do not rewrite
// history.
type Station struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
