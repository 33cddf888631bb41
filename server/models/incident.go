package models

import "gorm.io/gorm"

const (
	PENDING_INCIDENT     = "PENDING"
	IN_PROGRESS_INCIDENT = "IN_PROGRESS"
	RESOLVED_INCIDENT    = "RESOLVED"
	REJECTED_INCIDENT    = "REJECTED"
)

var IncidentStatusNameMap = map[string]bool{
	PENDING_INCIDENT:     true,
	IN_PROGRESS_INCIDENT: true,
	RESOLVED_INCIDENT:    true,
	REJECTED_INCIDENT:    true,
}

var updatableIncidentFields = []string{"type", "description", "status"}

type Incident struct {
	BaseModel
	Type        string   `json:"type" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Status      string   `json:"status" gorm:"not null;default:PENDING"`
	UserID      uint     `json:"user_id" validate:"required" gorm:"not null"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	User        *User    `json:"user,omitempty"`
}

func (incident *Incident) Update(data map[string]interface{}) error {
	res := db.Model(&Incident{}).Where("id = ?", incident.ID).
		Select(updatableIncidentFields).Updates(data)
	if res.Error != nil {
		return res.Error
	}

	return db.First(incident, incident.ID).Error
}

func CreateIncident(incident *Incident) error {
	if incident.Status == "" {
		incident.Status = PENDING_INCIDENT
	}

	return db.Create(incident).Error
}

// FindIncident fetches an incident by id along with the reporting
// user's {id, name, email}.
func FindIncident(id interface{}) (*Incident, error) {
	incident := Incident{}
	err := db.Preload("User", func(tx *gorm.DB) *gorm.DB {
		return tx.Select("id", "name", "email")
	}).First(&incident, "incidents.id = ?", id).Error
	if err != nil {
		return nil, err
	}

	return &incident, nil
}

func FetchIncidents() ([]Incident, error) {
	incidents := []Incident{}

	err := db.Preload("User", func(tx *gorm.DB) *gorm.DB {
		return tx.Select("id", "name", "email")
	}).Order("incidents.id desc").Find(&incidents).Error
	if err != nil {
		return nil, err
	}

	return incidents, nil
}

func DeleteIncident(id interface{}) error {
	res := db.Delete(&Incident{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
