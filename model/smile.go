package model

import "time"

/*

Smile is a one-way "I'm interested" notification

SenderID / Sender: who smiled, "belongs-to" relation
ReceiverID / Receiver: who was smiled at, "belongs-to" relation
SenderSent: always true once stored
ReceiverReceived: flipped when the receiver opens the smile
*/
type Smile struct {
	Id               string `gorm:"primaryKey"`
	CreatedAt        time.Time
	SenderID         string
	Sender           *User  `gorm:"foreignKey:SenderID;"`
	ReceiverID       string `gorm:"index"`
	Receiver         *User  `gorm:"foreignKey:ReceiverID;"`
	SenderSent       bool
	ReceiverReceived bool
}
