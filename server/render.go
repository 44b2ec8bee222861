package server

import (
	"net/http"

	"github.com/Luismorlan/rambagiza/model"
	"github.com/Luismorlan/rambagiza/server/middlewares"
	Logger "github.com/Luismorlan/rambagiza/utils/log"
	"github.com/gin-gonic/gin"
)

// RequestContext is the per request state every page renders with.
type RequestContext struct {
	CurrentUser *model.User
	Notices     []string
}

func (rc *RequestContext) LoggedIn() bool {
	return rc.CurrentUser != nil
}

// requestContext collects the current user and drains the queued notices.
func (s *Server) requestContext(c *gin.Context) *RequestContext {
	return &RequestContext{
		CurrentUser: middlewares.CurrentUser(c),
		Notices:     s.Sessions.PopNotices(c),
	}
}

func (s *Server) render(c *gin.Context, status int, name string, data gin.H) {
	s.renderWithNotices(c, status, name, data)
}

// renderWithNotices renders a page, appending extra notices to the queued ones.
// Forms use it to show validation errors without a redirect.
func (s *Server) renderWithNotices(c *gin.Context, status int, name string, data gin.H, notices ...string) {
	rc := s.requestContext(c)
	rc.Notices = append(rc.Notices, notices...)
	if data == nil {
		data = gin.H{}
	}
	data["Ctx"] = rc
	c.HTML(status, name, data)
}

// abortWithError logs a failure the user can do nothing about and renders the
// error page.
func (s *Server) abortWithError(c *gin.Context, err error) {
	Logger.Log.Errorf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	s.render(c, http.StatusInternalServerError, "error.html", gin.H{
		"Title":   "Something went wrong",
		"Message": "We could not complete your request, please try again later.",
	})
	c.Abort()
}

func (s *Server) notFound(c *gin.Context) {
	s.render(c, http.StatusNotFound, "error.html", gin.H{
		"Title":   "Not found",
		"Message": "The page you are looking for does not exist.",
	})
	c.Abort()
}

func (s *Server) forbidden(c *gin.Context) {
	s.render(c, http.StatusForbidden, "error.html", gin.H{
		"Title":   "Not allowed",
		"Message": "You are not allowed to do that.",
	})
	c.Abort()
}

// redirectWithNotice queues notice for the next page and redirects there.
func (s *Server) redirectWithNotice(c *gin.Context, location string, notice string) {
	s.Sessions.AddNotice(c, notice)
	c.Redirect(http.StatusFound, location)
}

func currentUser(c *gin.Context) *model.User {
	return middlewares.CurrentUser(c)
}

// viewerID is the current user's id, empty for anonymous visitors.
func viewerID(c *gin.Context) string {
	if user := currentUser(c); user != nil {
		return user.Id
	}
	return ""
}
