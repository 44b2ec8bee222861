package model

import (
	"time"

	"gorm.io/datatypes"
)

/*

TopUp is a wallet credit granted after a confirmed card charge

UserID: credited user
Tier: the purchased tier, e.g. "20"
Credit: wallet units added
ChargeID: gateway charge id
Confirmation: raw confirmation returned by the gateway
*/
type TopUp struct {
	Id           string `gorm:"primaryKey"`
	CreatedAt    time.Time
	UserID       string `gorm:"index"`
	Tier         string
	Credit       int
	ChargeID     string `gorm:"index"`
	Confirmation datatypes.JSON
}
