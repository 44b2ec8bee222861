package server

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/Luismorlan/rambagiza/account"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

var (
	errUploadTooLarge = errors.New("file is too large")
	errNotAnImage     = errors.New("only images can be uploaded")
)

type profileForm struct {
	Firstname string `form:"firstname"`
	Lastname  string `form:"lastname"`
	Country   string `form:"country"`
	City      string `form:"city"`
	Area      string `form:"area"`
	Age       int    `form:"age"`
	Gender    string `form:"gender"`
	About     string `form:"about"`
}

// uploadImage stores one uploaded image and returns its public url.
func (s *Server) uploadImage(c *gin.Context, fh *multipart.FileHeader) (string, error) {
	if fh.Size > s.Setting.MAX_UPLOAD_MB<<20 {
		return "", errUploadTooLarge
	}
	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", errNotAnImage
	}
	f, err := fh.Open()
	if err != nil {
		return "", errors.Wrap(err, "fail to open upload")
	}
	defer f.Close()
	return s.Store.Upload(c.Request.Context(), fh.Filename, contentType, f)
}

func isUploadRejection(err error) bool {
	return err == errUploadTooLarge || err == errNotAnImage
}

func (s *Server) Profile(c *gin.Context) {
	me := currentUser(c)
	ctx := c.Request.Context()
	user, err := s.Accounts.GetUser(ctx, me.Id)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	posts, err := s.Social.ListUserPosts(ctx, me.Id, me.Id)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	unread, err := s.Chat.UnreadCount(ctx, me.Id)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	s.render(c, http.StatusOK, "profile.html", gin.H{
		"User":   user,
		"Posts":  posts,
		"Unread": unread,
	})
}

func (s *Server) UpdateProfile(c *gin.Context) {
	var form profileForm
	if err := c.ShouldBind(&form); err != nil {
		s.redirectWithNotice(c, "/profile", "Invalid profile form")
		return
	}
	_, err := s.Accounts.UpdateProfile(c.Request.Context(), currentUser(c).Id, account.ProfileInput{
		Firstname: form.Firstname,
		Lastname:  form.Lastname,
		Country:   form.Country,
		City:      form.City,
		Area:      form.Area,
		Age:       form.Age,
		Gender:    form.Gender,
		About:     form.About,
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	s.redirectWithNotice(c, "/profile", "Profile updated")
}

func (s *Server) UploadAvatar(c *gin.Context) {
	fh, err := c.FormFile("avatar")
	if err != nil {
		s.redirectWithNotice(c, "/profile", "Please choose a picture")
		return
	}
	url, err := s.uploadImage(c, fh)
	if isUploadRejection(err) {
		s.redirectWithNotice(c, "/profile", err.Error())
		return
	}
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	if err := s.Accounts.SetAvatar(c.Request.Context(), currentUser(c).Id, url); err != nil {
		s.abortWithError(c, err)
		return
	}
	s.redirectWithNotice(c, "/profile", "Avatar updated")
}

// UploadPictures adds every file of the "pictures" field to the gallery.
// Rejected files are skipped and reported, the others are kept.
func (s *Server) UploadPictures(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil || len(form.File["pictures"]) == 0 {
		s.redirectWithNotice(c, "/profile", "Please choose at least one picture")
		return
	}
	me := currentUser(c)
	added := 0
	for _, fh := range form.File["pictures"] {
		url, err := s.uploadImage(c, fh)
		if isUploadRejection(err) {
			s.Sessions.AddNotice(c, fmt.Sprintf("%s: %s", fh.Filename, err.Error()))
			continue
		}
		if err != nil {
			s.abortWithError(c, err)
			return
		}
		if _, err := s.Accounts.AddPicture(c.Request.Context(), me.Id, url); err != nil {
			s.abortWithError(c, err)
			return
		}
		added++
	}
	s.redirectWithNotice(c, "/profile", fmt.Sprintf("%d picture(s) added", added))
}

func (s *Server) DeletePicture(c *gin.Context) {
	err := s.Accounts.DeletePicture(c.Request.Context(), currentUser(c).Id, c.Param("id"))
	if err == account.ErrPictureNotFound {
		s.notFound(c)
		return
	}
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	s.redirectWithNotice(c, "/profile", "Picture deleted")
}

func (s *Server) DeleteAccount(c *gin.Context) {
	if err := s.Accounts.DeleteAccount(c.Request.Context(), currentUser(c).Id); err != nil {
		s.abortWithError(c, err)
		return
	}
	if err := s.Sessions.Logout(c); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}
