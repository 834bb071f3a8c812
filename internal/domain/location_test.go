package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActiveLocations(t *testing.T) {
	locations := []Location{
		{ID: "loc-1", Name: "Downtown", IsActive: true},
		{ID: "loc-2", Name: "Warehouse", IsActive: false},
		{ID: "loc-3", Name: "Airport", IsActive: true},
	}

	active := ActiveLocations(locations)

	assert.Len(t, active, 2)
	assert.Equal(t, "loc-1", active[0].ID)
	assert.Equal(t, "loc-3", active[1].ID)
}

func TestActiveLocationsEmpty(t *testing.T) {
	assert.Empty(t, ActiveLocations(nil))
	assert.Empty(t, ActiveLocations([]Location{{ID: "loc-1", IsActive: false}}))
}
