package model

import "time"

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	FirstName    string     `gorm:"size:255;not null" json:"first_name"`
	LastName     string     `gorm:"size:255;not null" json:"last_name"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	Address      string     `gorm:"size:512" json:"address,omitempty"`
	Roles        []Role     `gorm:"many2many:user_roles;" json:"roles"`
	CreatedAt    time.Time  `json:"-"`
	UpdatedAt    time.Time  `json:"-"`
}

type Role struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:255;not null" json:"name"`
	Users []User `gorm:"many2many:user_roles;" json:"-"`
}
