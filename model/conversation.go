package model

import (
	"sort"
	"strings"
	"time"
)

type AuthorRole string

const (
	AuthorRoleSender   AuthorRole = "sender"
	AuthorRoleReceiver AuthorRole = "receiver"
)

/*

Conversation is a pairwise chat thread

Id: primary key, use to identify a conversation
CreatedAt: time when entity is created
SenderID / Sender: the user who started the thread, "belongs-to" relation
ReceiverID / Receiver: the other participant, "belongs-to" relation
PairKey: both participant ids sorted and joined, unique. Used to make sure
	two users never end up with two threads even if they both open one at
	the same time.
SenderRead / ReceiverRead: whether the occupant of each slot has seen the
	latest activity
LastActivityAt: time of the last open or message
Messages: the message log, ordered by SentAt
*/
type Conversation struct {
	Id             string `gorm:"primaryKey"`
	CreatedAt      time.Time
	SenderID       string `gorm:"index"`
	Sender         *User  `gorm:"foreignKey:SenderID;"`
	ReceiverID     string `gorm:"index"`
	Receiver       *User  `gorm:"foreignKey:ReceiverID;"`
	PairKey        string `gorm:"uniqueIndex"`
	SenderRead     bool
	ReceiverRead   bool
	LastActivityAt time.Time
	Messages       []Message
}

// ConversationPairKey builds the order independent key of two participants.
func ConversationPairKey(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, ":")
}

// RoleOf returns the slot the user occupies in the conversation.
func (c *Conversation) RoleOf(userId string) (AuthorRole, bool) {
	switch userId {
	case c.SenderID:
		return AuthorRoleSender, true
	case c.ReceiverID:
		return AuthorRoleReceiver, true
	}
	return "", false
}

// OtherParticipant returns the id of the participant that is not userId.
func (c *Conversation) OtherParticipant(userId string) string {
	if userId == c.SenderID {
		return c.ReceiverID
	}
	return c.SenderID
}

/*

Message is one entry of a conversation's log

ConversationID: thread this message belongs to
AuthorRole: which slot of the conversation wrote it
AuthorID / Author: the writer, "belongs-to" relation
Body: text of the message
SentAt: time the message was appended
SenderRead / ReceiverRead: read flags copied from the conversation at append time
*/
type Message struct {
	Id             string `gorm:"primaryKey"`
	ConversationID string `gorm:"index"`
	AuthorRole     AuthorRole
	AuthorID       string
	Author         *User `gorm:"foreignKey:AuthorID;"`
	Body           string
	SentAt         time.Time `gorm:"index"`
	SenderRead     bool
	ReceiverRead   bool
}
