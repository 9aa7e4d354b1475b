package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	BookStatusPending = "pending"
	BookStatusAccept  = "accept"
	BookStatusReject  = "reject"
)

// Book is a booking request by a society user against a kos. It starts out
// pending and is resolved exactly once by the kos owner; accept and reject
// are terminal. A renter may hold at most one pending book per kos.
type Book struct {
	gorm.Model
	KosID     uint      `json:"kosID" gorm:"index"`
	UserID    uint      `json:"userID" gorm:"index"` // renter
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Status    string    `json:"status" gorm:"type:varchar(10);default:pending;index"` // pending, accept, reject

	Kos  *Kos  `json:"kos,omitempty" gorm:"foreignKey:KosID"`
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
