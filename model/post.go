package model

import (
	"fmt"
	"time"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
	VisibilityFriends Visibility = "friends"
)

var AllVisibility = []Visibility{
	VisibilityPublic,
	VisibilityPrivate,
	VisibilityFriends,
}

func (e Visibility) IsValid() bool {
	switch e {
	case VisibilityPublic, VisibilityPrivate, VisibilityFriends:
		return true
	}
	return false
}

func (e Visibility) String() string {
	return string(e)
}

// ParseVisibility accepts the form value of the visibility select.
func ParseVisibility(s string) (Visibility, error) {
	v := Visibility(s)
	if !v.IsValid() {
		return "", fmt.Errorf("%s is not a valid Visibility", s)
	}
	return v, nil
}

/*

Post is a piece of text (and optional image) a user shares

Id: primary key, use to identify a post
CreatedAt: time when entity is created
LastUpdatedAt: time of the last edit, nil if never edited
AuthorID / Author: writer, "belongs-to" relation
Title, Body: content in plain text
Visibility: who can see the post
ImageUrl: optional image hosted on the object store
AllowComments: comments are rejected when false
Likes: "has-many", duplicates from the same user are allowed
Comments: "has-many"
*/
type Post struct {
	Id            string `gorm:"primaryKey"`
	CreatedAt     time.Time `gorm:"index"`
	LastUpdatedAt *time.Time
	AuthorID      string `gorm:"index"`
	Author        *User  `gorm:"foreignKey:AuthorID;"`
	Title         string
	Body          string
	Visibility    Visibility `gorm:"index"`
	ImageUrl      string
	AllowComments bool
	Likes         []Like
	Comments      []Comment
}

type Like struct {
	Id        string `gorm:"primaryKey"`
	PostID    string `gorm:"index"`
	UserID    string
	User      *User `gorm:"foreignKey:UserID;"`
	CreatedAt time.Time
}

type Comment struct {
	Id        string `gorm:"primaryKey"`
	PostID    string `gorm:"index"`
	UserID    string
	User      *User `gorm:"foreignKey:UserID;"`
	Body      string
	CreatedAt time.Time
}
