package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestCreateIncident(t *testing.T) {
	InitializeTestDb()
	user, _ := createTestUsers(t)

	incident := Incident{
		Type:        "FIRE",
		Description: "smoke coming from the lab",
		UserID:      user.ID,
	}
	assert.Nil(t, CreateIncident(&incident))
	assert.Equal(t, PENDING_INCIDENT, incident.Status)

	// coordinates are optional & survive a round-trip when set
	lat, long := 43.6532, -79.3832
	located := Incident{
		Type:        "FLOOD",
		Description: "water in the basement",
		UserID:      user.ID,
		Latitude:    &lat,
		Longitude:   &long,
	}
	assert.Nil(t, CreateIncident(&located))

	found, err := FindIncident(located.ID)
	assert.Nil(t, err)
	assert.Equal(t, lat, *found.Latitude)
	assert.Equal(t, long, *found.Longitude)

	unlocated, err := FindIncident(incident.ID)
	assert.Nil(t, err)
	assert.Nil(t, unlocated.Latitude)
	assert.Nil(t, unlocated.Longitude)
}

func TestFindIncidentPreloadsReporter(t *testing.T) {
	InitializeTestDb()
	user, _ := createTestUsers(t)

	incident := Incident{Type: "FIRE", Description: "smoke coming from the lab", UserID: user.ID}
	assert.Nil(t, CreateIncident(&incident))

	found, err := FindIncident(incident.ID)
	assert.Nil(t, err)
	assert.NotNil(t, found.User)
	assert.Equal(t, "tony stark", found.User.Name)
	assert.Empty(t, found.User.Password)

	_, err = FindIncident(9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUpdateIncident(t *testing.T) {
	InitializeTestDb()
	user, _ := createTestUsers(t)

	incident := Incident{Type: "FIRE", Description: "smoke coming from the lab", UserID: user.ID}
	assert.Nil(t, CreateIncident(&incident))

	err := incident.Update(map[string]interface{}{"status": RESOLVED_INCIDENT, "description": "false alarm"})
	assert.Nil(t, err)
	assert.Equal(t, RESOLVED_INCIDENT, incident.Status)
	assert.Equal(t, "false alarm", incident.Description)

	// any status can follow any other, incl. moving back to PENDING
	err = incident.Update(map[string]interface{}{"status": PENDING_INCIDENT})
	assert.Nil(t, err)
	assert.Equal(t, PENDING_INCIDENT, incident.Status)
}

func TestDeleteIncident(t *testing.T) {
	InitializeTestDb()
	user, _ := createTestUsers(t)

	incident := Incident{Type: "FIRE", Description: "smoke coming from the lab", UserID: user.ID}
	assert.Nil(t, CreateIncident(&incident))

	assert.Nil(t, DeleteIncident(incident.ID))
	assert.ErrorIs(t, DeleteIncident(incident.ID), gorm.ErrRecordNotFound)
}
