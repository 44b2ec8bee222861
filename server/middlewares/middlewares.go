package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/Luismorlan/rambagiza/model"
	"github.com/Luismorlan/rambagiza/utils"
	Logger "github.com/Luismorlan/rambagiza/utils/log"
	"github.com/Luismorlan/rambagiza/wallet"
	"github.com/gin-gonic/gin"
)

const (
	SessionCookieName = "rambagiza_session"

	currentUserKey = "current_user"
	sessionIDKey   = "session_id"
	sessionDataKey = "session_data"
)

// UserLoader resolves the user behind a session.
type UserLoader interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
}

// Sessions binds a browser cookie to a server side SessionData.
type Sessions struct {
	Store utils.SessionStore
	Users UserLoader
	TTL   time.Duration
	// Secure marks the cookie https only.
	Secure bool
}

// Middleware loads the session named by the cookie, and the user it belongs
// to, into the gin context. Unknown or expired sessions are treated as
// anonymous and the cookie is cleared.
func (s *Sessions) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(SessionCookieName)
		if err != nil || sessionID == "" {
			c.Next()
			return
		}

		data, err := s.Store.Get(c.Request.Context(), sessionID)
		if err == utils.ErrSessionNotFound {
			s.clearCookie(c)
			c.Next()
			return
		}
		if err != nil {
			Logger.Log.Error("fail to load session: ", err)
			c.Next()
			return
		}
		c.Set(sessionIDKey, sessionID)
		c.Set(sessionDataKey, data)

		if data.UserId != "" {
			user, err := s.Users.GetUser(c.Request.Context(), data.UserId)
			if err != nil {
				Logger.Log.Warnf("session %s points to unknown user %s: %v", sessionID, data.UserId, err)
			} else {
				c.Set(currentUserKey, user)
			}
		}
		c.Next()
	}
}

func (s *Sessions) setCookie(c *gin.Context, sessionID string) {
	c.SetCookie(SessionCookieName, sessionID, int(s.TTL.Seconds()), "/", "", s.Secure, true)
}

func (s *Sessions) clearCookie(c *gin.Context) {
	c.SetCookie(SessionCookieName, "", -1, "/", "", s.Secure, true)
}

// session returns the request's session, creating an anonymous one when the
// browser has none yet.
func (s *Sessions) session(c *gin.Context) (string, *utils.SessionData, error) {
	if id, data := sessionFromContext(c); data != nil {
		return id, data, nil
	}
	data := &utils.SessionData{}
	id, err := s.Store.Create(c.Request.Context(), data)
	if err != nil {
		return "", nil, err
	}
	s.setCookie(c, id)
	c.Set(sessionIDKey, id)
	c.Set(sessionDataKey, data)
	return id, data, nil
}

// Login starts a fresh session for the user. Any previous session of the
// browser is destroyed, pending notices are carried over.
func (s *Sessions) Login(c *gin.Context, user *model.User) error {
	data := &utils.SessionData{UserId: user.Id}
	if oldID, old := sessionFromContext(c); old != nil {
		data.Notices = old.Notices
		if err := s.Store.Destroy(c.Request.Context(), oldID); err != nil {
			Logger.Log.Warn("fail to destroy previous session: ", err)
		}
	}
	id, err := s.Store.Create(c.Request.Context(), data)
	if err != nil {
		return err
	}
	s.setCookie(c, id)
	c.Set(sessionIDKey, id)
	c.Set(sessionDataKey, data)
	c.Set(currentUserKey, user)
	return nil
}

func (s *Sessions) Logout(c *gin.Context) error {
	id, data := sessionFromContext(c)
	s.clearCookie(c)
	c.Set(currentUserKey, (*model.User)(nil))
	if data == nil {
		return nil
	}
	return s.Store.Destroy(c.Request.Context(), id)
}

// AddNotice queues a message for the next rendered page.
func (s *Sessions) AddNotice(c *gin.Context, notice string) {
	id, data, err := s.session(c)
	if err != nil {
		Logger.Log.Error("fail to create session for notice: ", err)
		return
	}
	data.Notices = append(data.Notices, notice)
	if err := s.Store.Save(c.Request.Context(), id, data); err != nil {
		Logger.Log.Error("fail to save notice: ", err)
	}
}

// PopNotices returns and clears the queued notices.
func (s *Sessions) PopNotices(c *gin.Context) []string {
	id, data := sessionFromContext(c)
	if data == nil || len(data.Notices) == 0 {
		return nil
	}
	notices := data.Notices
	data.Notices = nil
	if err := s.Store.Save(c.Request.Context(), id, data); err != nil {
		Logger.Log.Error("fail to clear notices: ", err)
	}
	return notices
}

func (s *Sessions) SetOAuthState(c *gin.Context, state string) error {
	id, data, err := s.session(c)
	if err != nil {
		return err
	}
	data.OAuthState = state
	return s.Store.Save(c.Request.Context(), id, data)
}

// TakeOAuthState returns the pending OAuth state and clears it, a state is
// only good for one callback.
func (s *Sessions) TakeOAuthState(c *gin.Context) string {
	id, data := sessionFromContext(c)
	if data == nil || data.OAuthState == "" {
		return ""
	}
	state := data.OAuthState
	data.OAuthState = ""
	if err := s.Store.Save(c.Request.Context(), id, data); err != nil {
		Logger.Log.Error("fail to clear oauth state: ", err)
	}
	return state
}

func sessionFromContext(c *gin.Context) (string, *utils.SessionData) {
	raw, ok := c.Get(sessionDataKey)
	if !ok {
		return "", nil
	}
	data, _ := raw.(*utils.SessionData)
	return c.GetString(sessionIDKey), data
}

// CurrentUser is the logged in user, nil for anonymous requests.
func CurrentUser(c *gin.Context) *model.User {
	raw, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := raw.(*model.User)
	return user
}

// RequireUser redirects anonymous requests to the login page.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// WalletGuard stops users without chat credit before their message is
// stored. onEmpty renders the response, usually the payment prompt.
func WalletGuard(onEmpty func(c *gin.Context, user *model.User)) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if !wallet.CheckWalletBeforeChat(user) {
			onEmpty(c, user)
			c.Abort()
			return
		}
		c.Next()
	}
}
