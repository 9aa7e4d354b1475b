package models

import "gorm.io/gorm"

type KosPicture struct {
	gorm.Model
	KosID       uint   `json:"kosID" gorm:"not null;index"`
	ImageURL    string `json:"imageURL"`
	IsThumbnail bool   `json:"isThumbnail" gorm:"default:false"`
}
