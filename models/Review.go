package models

import "gorm.io/gorm"

type Review struct {
	gorm.Model
	KosID   uint   `json:"kosID" gorm:"not null;index"`
	UserID  uint   `json:"userID" gorm:"not null;index"`
	Comment string `json:"comment" gorm:"type:text"`
	Reply   string `json:"reply" gorm:"type:text"` // set once by the kos owner

	Kos  *Kos  `json:"kos,omitempty" gorm:"foreignKey:KosID"`
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
