package domain

type Location struct {
	ID       string
	Name     string
	IsActive bool
	Address  string
}

// ActiveLocations filters to active locations, preserving the order the
// listing API returned them in. Search processes locations in this order.
func ActiveLocations(locations []Location) []Location {
	active := make([]Location, 0, len(locations))
	for _, loc := range locations {
		if loc.IsActive {
			active = append(active, loc)
		}
	}
	return active
}
