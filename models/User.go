package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleOwner   = "owner"
	RoleSociety = "society"
)

type User struct {
	gorm.Model
	Name     string         `json:"name"`
	Email    string         `json:"email" gorm:"uniqueIndex"`
	Password string         `json:"-"`
	Phone    string         `json:"phone"`
	Role     string         `json:"role" gorm:"type:varchar(20);default:society;index"` // owner, society
	SavedKos datatypes.JSON `json:"savedKos"`
	Kos      []Kos          `json:"kos,omitempty" gorm:"foreignKey:OwnerID;references:ID"`
}

// MarshalJSON flattens SavedKos into a plain ID slice and drops the Kos
// back-reference to avoid circular payloads.
func (u *User) MarshalJSON() ([]byte, error) {
	type Alias User
	aux := &struct {
		SavedKos []uint `json:"savedKos"`
		Kos      []Kos  `json:"kos,omitempty"`
		*Alias
	}{
		SavedKos: []uint{},
		Alias:    (*Alias)(u),
	}

	if u.SavedKos != nil {
		var saved []uint
		if err := json.Unmarshal(u.SavedKos, &saved); err == nil {
			aux.SavedKos = saved
		}
	}

	return json.Marshal(aux)
}
