package social

import (
	"github.com/Luismorlan/rambagiza/account"
	"github.com/Luismorlan/rambagiza/model"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const DefaultPostsPerPage = 10

var (
	ErrSelfFriendRequest     = errors.New("cannot send a friend request to yourself")
	ErrFriendRequestNotFound = errors.New("friend request not found")
	ErrSelfSmile             = errors.New("cannot smile at yourself")
	ErrSmileNotFound         = errors.New("smile not found")
	ErrPostNotFound          = errors.New("post not found")
	ErrNotPostAuthor         = errors.New("only the author can change this post")
	ErrEmptyPost             = errors.New("post needs a title and a body")
	ErrCommentsDisabled      = errors.New("comments are disabled for this post")
	ErrEmptyComment          = errors.New("comment is empty")
	ErrIncompleteContact     = errors.New("email and message are required")
)

// Service owns friends, smiles, posts and contact messages.
type Service struct {
	DB           *gorm.DB
	Bus          message.Publisher
	PostsPerPage int
}

func NewService(db *gorm.DB, bus message.Publisher, postsPerPage int) *Service {
	if postsPerPage <= 0 {
		postsPerPage = DefaultPostsPerPage
	}
	return &Service{DB: db, Bus: bus, PostsPerPage: postsPerPage}
}

func userExists(db *gorm.DB, id string) error {
	var count int64
	if err := db.Model(&model.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return errors.Wrap(err, "fail to look up user")
	}
	if count == 0 {
		return account.ErrUserNotFound
	}
	return nil
}
