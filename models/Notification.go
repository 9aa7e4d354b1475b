package models

import "gorm.io/gorm"

type Notification struct {
	gorm.Model
	UserID  uint   `json:"userID" gorm:"index"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"` // book_request, book_status, review_reply
	RefID   uint   `json:"refID"`
	RefType string `json:"refType"`
	IsRead  bool   `json:"isRead" gorm:"default:false"`
}
