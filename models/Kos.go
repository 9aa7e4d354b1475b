package models

import "gorm.io/gorm"

type Kos struct {
	gorm.Model
	OwnerID       uint         `json:"ownerID" gorm:"index"`
	Name          string       `json:"name"`
	Address       string       `json:"address"`
	PricePerMonth float64      `json:"pricePerMonth"`
	Description   string       `json:"description" gorm:"type:text"`
	Gender        string       `json:"gender" gorm:"type:varchar(10);default:all"` // male, female, all
	RoomTotal     int          `json:"roomTotal"`
	RoomAvailable int          `json:"roomAvailable"` // 0 <= RoomAvailable <= RoomTotal

	Facilities []Facility   `json:"facilities,omitempty"`
	Pictures   []KosPicture `json:"pictures,omitempty"`
	Reviews    []Review     `json:"reviews,omitempty"`
	Books      []Book       `json:"books,omitempty"`
	Owner      *User        `json:"owner,omitempty" gorm:"foreignKey:OwnerID;references:ID"`
}

// TableName keeps the table singular; the default pluralizer turns "kos"
// into "koses".
func (Kos) TableName() string { return "kos" }
