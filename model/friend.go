package model

import "time"

/*

Friend is one entry of a user's friend list.

The entry lives on the list of the user who RECEIVED the request. It starts as
a pending request (IsFriend false) and is flipped to true when the owner of
the list accepts it. There is no rejected state.

UserID: owner of the list, i.e. the request target
FriendID: the requester
Friend: requester, "belongs-to" relation
IsFriend: true once accepted
*/
type Friend struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	UserID    string `gorm:"uniqueIndex:idx_friend_pair"`
	FriendID  string `gorm:"uniqueIndex:idx_friend_pair"`
	Friend    *User  `gorm:"foreignKey:FriendID;"`
	IsFriend  bool
}
