package location

import "github.com/neekaru/washgate/internal/access"

// SelectRequest binds the scanner to a location. An empty id clears it.
type SelectRequest struct {
	LocationID string `json:"location_id"`
}

// LocationsResponse lists the known locations and the current selection.
type LocationsResponse struct {
	Locations []access.Location `json:"locations"`
	Selected  string            `json:"selected,omitempty"`
	Total     int               `json:"total"`
}
