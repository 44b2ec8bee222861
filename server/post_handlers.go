package server

import (
	"net/http"
	"strconv"

	"github.com/Luismorlan/rambagiza/model"
	"github.com/Luismorlan/rambagiza/social"
	"github.com/gin-gonic/gin"
)

type postForm struct {
	Title         string `form:"title"`
	Body          string `form:"body"`
	Visibility    string `form:"visibility"`
	AllowComments bool   `form:"allow_comments"`
}

type commentForm struct {
	Body string `form:"body"`
}

func postLink(id string) string {
	return "/fullPost/" + id
}

// postInput validates the form and uploads the optional "image" file. A
// non-empty message means the form must be shown again.
func (s *Server) postInput(c *gin.Context) (social.PostInput, string, error) {
	var form postForm
	if err := c.ShouldBind(&form); err != nil {
		return social.PostInput{}, "Invalid post form", nil
	}
	in := social.PostInput{
		Title:         form.Title,
		Body:          form.Body,
		AllowComments: form.AllowComments,
	}
	if form.Visibility != "" {
		v, err := model.ParseVisibility(form.Visibility)
		if err != nil {
			return in, err.Error(), nil
		}
		in.Visibility = v
	}
	if fh, err := c.FormFile("image"); err == nil {
		url, err := s.uploadImage(c, fh)
		if isUploadRejection(err) {
			return in, err.Error(), nil
		}
		if err != nil {
			return in, "", err
		}
		in.ImageUrl = url
	}
	return in, "", nil
}

func (s *Server) Posts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	result, err := s.Social.ListPublicPosts(c.Request.Context(), page)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	s.render(c, http.StatusOK, "posts.html", gin.H{"Page": result})
}

func (s *Server) AddPostForm(c *gin.Context) {
	s.render(c, http.StatusOK, "post_form.html", gin.H{
		"Action":     "/addPost",
		"Visibility": model.AllVisibility,
		"Post":       &model.Post{Visibility: model.VisibilityPublic, AllowComments: true},
	})
}

func (s *Server) AddPost(c *gin.Context) {
	in, notice, err := s.postInput(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	if notice == "" {
		post, err := s.Social.CreatePost(c.Request.Context(), currentUser(c).Id, in)
		if err == nil {
			c.Redirect(http.StatusFound, postLink(post.Id))
			return
		}
		if err != social.ErrEmptyPost {
			s.abortWithError(c, err)
			return
		}
		notice = err.Error()
	}
	s.renderWithNotices(c, http.StatusBadRequest, "post_form.html", gin.H{
		"Action":     "/addPost",
		"Visibility": model.AllVisibility,
		"Post":       &model.Post{Title: in.Title, Body: in.Body, Visibility: in.Visibility, AllowComments: in.AllowComments},
	}, notice)
}

func (s *Server) EditPostForm(c *gin.Context) {
	me := currentUser(c)
	post, err := s.Social.GetPost(c.Request.Context(), c.Param("id"), me.Id)
	if err == social.ErrPostNotFound {
		s.notFound(c)
		return
	}
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	if post.AuthorID != me.Id {
		s.forbidden(c)
		return
	}
	s.render(c, http.StatusOK, "post_form.html", gin.H{
		"Action":     "/editPost/" + post.Id,
		"Visibility": model.AllVisibility,
		"Post":       post,
	})
}

func (s *Server) EditPost(c *gin.Context) {
	id := c.Param("id")
	in, notice, err := s.postInput(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	if notice == "" {
		_, err = s.Social.EditPost(c.Request.Context(), id, currentUser(c).Id, in)
		switch err {
		case nil:
			s.redirectWithNotice(c, postLink(id), "Post updated")
			return
		case social.ErrPostNotFound:
			s.notFound(c)
			return
		case social.ErrNotPostAuthor:
			s.forbidden(c)
			return
		case social.ErrEmptyPost:
			notice = err.Error()
		default:
			s.abortWithError(c, err)
			return
		}
	}
	s.renderWithNotices(c, http.StatusBadRequest, "post_form.html", gin.H{
		"Action":     "/editPost/" + id,
		"Visibility": model.AllVisibility,
		"Post":       &model.Post{Id: id, Title: in.Title, Body: in.Body, Visibility: in.Visibility, AllowComments: in.AllowComments},
	}, notice)
}

func (s *Server) DeletePost(c *gin.Context) {
	err := s.Social.DeletePost(c.Request.Context(), c.Param("id"), currentUser(c).Id)
	switch err {
	case nil:
		s.redirectWithNotice(c, "/profile", "Post deleted")
	case social.ErrPostNotFound:
		s.notFound(c)
	case social.ErrNotPostAuthor:
		s.forbidden(c)
	default:
		s.abortWithError(c, err)
	}
}

func (s *Server) LikePost(c *gin.Context) {
	id := c.Param("id")
	err := s.Social.LikePost(c.Request.Context(), id, currentUser(c).Id)
	if err == social.ErrPostNotFound {
		s.notFound(c)
		return
	}
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.Redirect(http.StatusFound, postLink(id))
}

// FullPost is public, anonymous visitors only see public posts.
func (s *Server) FullPost(c *gin.Context) {
	post, err := s.Social.GetPost(c.Request.Context(), c.Param("id"), viewerID(c))
	if err == social.ErrPostNotFound {
		s.notFound(c)
		return
	}
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	s.render(c, http.StatusOK, "full_post.html", gin.H{"Post": post})
}

func (s *Server) Comment(c *gin.Context) {
	id := c.Param("id")
	var form commentForm
	if err := c.ShouldBind(&form); err != nil {
		s.redirectWithNotice(c, postLink(id), "Invalid comment")
		return
	}
	_, err := s.Social.CommentPost(c.Request.Context(), id, currentUser(c).Id, form.Body)
	switch err {
	case nil:
		c.Redirect(http.StatusFound, postLink(id))
	case social.ErrPostNotFound:
		s.notFound(c)
	case social.ErrCommentsDisabled, social.ErrEmptyComment:
		s.redirectWithNotice(c, postLink(id), err.Error())
	default:
		s.abortWithError(c, err)
	}
}
