package models

import "gorm.io/gorm"

type Facility struct {
	gorm.Model
	KosID uint   `json:"kosID" gorm:"not null;index"`
	Name  string `json:"name"`

	Kos *Kos `json:"kos,omitempty" gorm:"foreignKey:KosID"`
}
