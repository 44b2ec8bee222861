package social

import (
	"context"
	"strings"
	"time"

	"github.com/Luismorlan/rambagiza/model"
	"github.com/Luismorlan/rambagiza/utils"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type PostInput struct {
	Title         string
	Body          string
	Visibility    model.Visibility
	ImageUrl      string
	AllowComments bool
}

// Page is one page of the public post list. Page is 1-based.
type Page struct {
	Posts []model.Post
	Page  int
	Pages int
	Total int64
}

func (p *Page) HasPrev() bool { return p.Page > 1 }
func (p *Page) HasNext() bool { return p.Page < p.Pages }
func (p *Page) Prev() int { return p.Page - 1 }
func (p *Page) Next() int { return p.Page + 1 }

func (in *PostInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)
	if in.Title == "" || in.Body == "" {
		return ErrEmptyPost
	}
	if in.Visibility == "" {
		in.Visibility = model.VisibilityPublic
	}
	if !in.Visibility.IsValid() {
		return errors.Errorf("%s is not a valid Visibility", in.Visibility)
	}
	return nil
}

func withPostDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Likes").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Comments.User")
}

func (s *Service) CreatePost(ctx context.Context, authorID string, in PostInput) (*model.Post, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	post := &model.Post{
		Id:            uuid.New().String(),
		AuthorID:      authorID,
		Title:         in.Title,
		Body:          in.Body,
		Visibility:    in.Visibility,
		ImageUrl:      in.ImageUrl,
		AllowComments: in.AllowComments,
	}
	if err := s.DB.WithContext(ctx).Create(post).Error; err != nil {
		return nil, errors.Wrap(err, "fail to create post")
	}
	return post, nil
}

// ownPost loads a post and checks authorID wrote it.
func ownPost(db *gorm.DB, postID string, authorID string) (*model.Post, error) {
	var post model.Post
	result := db.Where("id = ?", postID).Limit(1).Find(&post)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "fail to get post")
	}
	if result.RowsAffected == 0 {
		return nil, ErrPostNotFound
	}
	if post.AuthorID != authorID {
		return nil, ErrNotPostAuthor
	}
	return &post, nil
}

// EditPost replaces the content of a post. An empty ImageUrl keeps the
// current image.
func (s *Service) EditPost(ctx context.Context, postID string, authorID string, in PostInput) (*model.Post, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)
	post, err := ownPost(db, postID, authorID)
	if err != nil {
		return nil, err
	}
	updatedAt := time.Now().UTC()
	post.Title = in.Title
	post.Body = in.Body
	post.Visibility = in.Visibility
	post.AllowComments = in.AllowComments
	post.LastUpdatedAt = &updatedAt
	if in.ImageUrl != "" {
		post.ImageUrl = in.ImageUrl
	}
	if err := db.Save(post).Error; err != nil {
		return nil, errors.Wrap(err, "fail to edit post")
	}
	return post, nil
}

// DeletePost removes the post with its likes and comments.
func (s *Service) DeletePost(ctx context.Context, postID string, authorID string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownPost(tx, postID, authorID); err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&model.Like{}).Error; err != nil {
			return errors.Wrap(err, "fail to delete likes")
		}
		if err := tx.Where("post_id = ?", postID).Delete(&model.Comment{}).Error; err != nil {
			return errors.Wrap(err, "fail to delete comments")
		}
		return errors.Wrap(tx.Where("id = ?", postID).Delete(&model.Post{}).Error, "fail to delete post")
	})
}

// visibleTo lists the visibilities of authorID's posts viewerID may see.
func (s *Service) visibleTo(ctx context.Context, authorID string, viewerID string) ([]model.Visibility, error) {
	if authorID == viewerID {
		return model.AllVisibility, nil
	}
	friends, err := s.AreFriends(ctx, authorID, viewerID)
	if err != nil {
		return nil, err
	}
	if friends {
		return []model.Visibility{model.VisibilityPublic, model.VisibilityFriends}, nil
	}
	return []model.Visibility{model.VisibilityPublic}, nil
}

func containsVisibility(all []model.Visibility, v model.Visibility) bool {
	for _, candidate := range all {
		if candidate == v {
			return true
		}
	}
	return false
}

// GetPost loads a post with its author, likes and comments. Posts the viewer
// may not see are reported as not found.
func (s *Service) GetPost(ctx context.Context, postID string, viewerID string) (*model.Post, error) {
	var post model.Post
	result := withPostDetails(s.DB.WithContext(ctx)).Where("id = ?", postID).Limit(1).Find(&post)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "fail to get post")
	}
	if result.RowsAffected == 0 {
		return nil, ErrPostNotFound
	}
	visible, err := s.visibleTo(ctx, post.AuthorID, viewerID)
	if err != nil {
		return nil, err
	}
	if !containsVisibility(visible, post.Visibility) {
		return nil, ErrPostNotFound
	}
	return &post, nil
}

// ListPublicPosts returns one page of public posts, newest first. Pages out of
// range are clamped.
func (s *Service) ListPublicPosts(ctx context.Context, page int) (*Page, error) {
	db := s.DB.WithContext(ctx)
	var total int64
	if err := db.Model(&model.Post{}).Where("visibility = ?", model.VisibilityPublic).Count(&total).Error; err != nil {
		return nil, errors.Wrap(err, "fail to count posts")
	}
	pages := utils.Max(1, int((total+int64(s.PostsPerPage)-1)/int64(s.PostsPerPage)))
	page = utils.Max(1, utils.Min(page, pages))

	result := &Page{Page: page, Pages: pages, Total: total}
	err := withPostDetails(db).
		Where("visibility = ?", model.VisibilityPublic).
		Order("created_at DESC").
		Offset((page - 1) * s.PostsPerPage).
		Limit(s.PostsPerPage).
		Find(&result.Posts).Error
	if err != nil {
		return nil, errors.Wrap(err, "fail to list posts")
	}
	return result, nil
}

// ListUserPosts lists authorID's posts that viewerID may see, newest first.
func (s *Service) ListUserPosts(ctx context.Context, authorID string, viewerID string) ([]model.Post, error) {
	visible, err := s.visibleTo(ctx, authorID, viewerID)
	if err != nil {
		return nil, err
	}
	var posts []model.Post
	err = withPostDetails(s.DB.WithContext(ctx)).
		Where("author_id = ? AND visibility IN ?", authorID, visible).
		Order("created_at DESC").
		Find(&posts).Error
	return posts, errors.Wrap(err, "fail to list user posts")
}

// LikePost adds a like. The same user may like a post more than once.
func (s *Service) LikePost(ctx context.Context, postID string, userID string) error {
	if _, err := s.GetPost(ctx, postID, userID); err != nil {
		return err
	}
	like := model.Like{Id: uuid.New().String(), PostID: postID, UserID: userID}
	return errors.Wrap(s.DB.WithContext(ctx).Create(&like).Error, "fail to like post")
}

func (s *Service) CommentPost(ctx context.Context, postID string, userID string, body string) (*model.Comment, error) {
	post, err := s.GetPost(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if !post.AllowComments {
		return nil, ErrCommentsDisabled
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyComment
	}
	comment := &model.Comment{Id: uuid.New().String(), PostID: postID, UserID: userID, Body: body}
	if err := s.DB.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, errors.Wrap(err, "fail to comment post")
	}
	return comment, nil
}
