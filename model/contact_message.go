package model

import "time"

// ContactMessage is a message left on the contact page. It is not linked to
// any user.
type ContactMessage struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	Fullname  string
	Email     string
	Body      string
}
