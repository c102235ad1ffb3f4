package models

const (
	ContactFire    = "fire"
	ContactMedical = "medical"
	ContactPolice  = "police"
	ContactGeneral = "general"
)

type EmergencyContact struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"size:255;not null" json:"name"`
	PhoneNumber string  `gorm:"size:32;not null" json:"phoneNumber"`
	Type        string  `gorm:"size:16;index;not null" json:"type"`
	Country     string  `gorm:"size:8;index;not null" json:"country"`
	Region      *string `gorm:"size:64" json:"region"`
	IsActive    bool    `gorm:"not null" json:"isActive"`
}

type ContactInsert struct {
	Name        string  `json:"name" binding:"required"`
	PhoneNumber string  `json:"phoneNumber" binding:"required,max=32"`
	Type        string  `json:"type" binding:"required,oneof=fire medical police general"`
	Country     string  `json:"country" binding:"required,max=8"`
	Region      *string `json:"region"`
	IsActive    *bool   `json:"isActive"`
}

// NewContact isActive 缺省为 true
func (in ContactInsert) NewContact() EmergencyContact {
	c := EmergencyContact{
		Name:        in.Name,
		PhoneNumber: in.PhoneNumber,
		Type:        in.Type,
		Country:     in.Country,
		IsActive:    true,
	}
	if in.Region != nil {
		region := *in.Region
		c.Region = &region
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	return c
}

func (c EmergencyContact) Clone() EmergencyContact {
	if c.Region != nil {
		region := *c.Region
		c.Region = &region
	}
	return c
}
