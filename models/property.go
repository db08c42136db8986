package models

// Property is one row of the read-only property catalog.
type Property struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Area      string            `json:"area"`
	Rent      string            `json:"rent"`
	FloorPlan string            `json:"floorPlan"`
	Occupancy string            `json:"occupancy"`
	Fields    map[string]string `json:"fields"` // every column keyed by its header
}
