package server

import (
	"net/http"

	"github.com/Luismorlan/rambagiza/account"
	"github.com/Luismorlan/rambagiza/bot"
	"github.com/Luismorlan/rambagiza/oauth"
	"github.com/Luismorlan/rambagiza/social"
	Logger "github.com/Luismorlan/rambagiza/utils/log"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

type signupForm struct {
	Email           string `form:"email"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirm_password"`
	Firstname       string `form:"firstname"`
	Lastname        string `form:"lastname"`
}

type loginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

type contactForm struct {
	Fullname string `form:"fullname"`
	Email    string `form:"email"`
	Body     string `form:"body"`
}

func (s *Server) Index(c *gin.Context) {
	s.render(c, http.StatusOK, "index.html", nil)
}

func (s *Server) About(c *gin.Context) {
	s.render(c, http.StatusOK, "about.html", nil)
}

func (s *Server) ContactForm(c *gin.Context) {
	s.render(c, http.StatusOK, "contact.html", nil)
}

// Contact stores the message and forwards it to the team's slack channel.
// A slack failure does not fail the request, the message is already stored.
func (s *Server) Contact(c *gin.Context) {
	var form contactForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderWithNotices(c, http.StatusBadRequest, "contact.html", gin.H{"Form": form}, "Invalid form")
		return
	}
	msg, err := s.Social.SaveContactMessage(c.Request.Context(), form.Fullname, form.Email, form.Body)
	if err == social.ErrIncompleteContact {
		s.renderWithNotices(c, http.StatusBadRequest, "contact.html", gin.H{"Form": form}, err.Error())
		return
	}
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	if err := bot.PushContactMessageViaWebhook(*msg, s.ContactWebhookUrl); err != nil {
		Logger.Log.Error("fail to forward contact message: ", err)
	}
	s.renderWithNotices(c, http.StatusOK, "contact.html", nil, "Thanks, we will get back to you soon")
}

func (s *Server) SignupForm(c *gin.Context) {
	if currentUser(c) != nil {
		c.Redirect(http.StatusFound, "/profile")
		return
	}
	s.render(c, http.StatusOK, "signup.html", nil)
}

func (s *Server) Signup(c *gin.Context) {
	var form signupForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderWithNotices(c, http.StatusBadRequest, "signup.html", gin.H{"Form": form}, "Invalid form")
		return
	}
	user, err := s.Accounts.Register(c.Request.Context(), account.RegisterInput{
		Email:           form.Email,
		Password:        form.Password,
		ConfirmPassword: form.ConfirmPassword,
		Firstname:       form.Firstname,
		Lastname:        form.Lastname,
	})
	switch err {
	case nil:
	case account.ErrMissingEmail, account.ErrPasswordMismatch, account.ErrPasswordTooShort, account.ErrEmailTaken:
		s.renderWithNotices(c, http.StatusBadRequest, "signup.html", gin.H{"Form": form}, err.Error())
		return
	default:
		s.abortWithError(c, err)
		return
	}
	if err := s.Sessions.Login(c, user); err != nil {
		s.abortWithError(c, err)
		return
	}
	s.redirectWithNotice(c, "/profile", "Welcome to Rambagiza!")
}

func (s *Server) LoginForm(c *gin.Context) {
	if currentUser(c) != nil {
		c.Redirect(http.StatusFound, "/profile")
		return
	}
	s.render(c, http.StatusOK, "login.html", gin.H{"Providers": s.OAuth})
}

func (s *Server) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderWithNotices(c, http.StatusBadRequest, "login.html", gin.H{"Providers": s.OAuth}, "Invalid form")
		return
	}
	user, err := s.Accounts.Authenticate(c.Request.Context(), form.Email, form.Password)
	if err == account.ErrInvalidCredentials {
		s.renderWithNotices(c, http.StatusUnauthorized, "login.html", gin.H{"Providers": s.OAuth, "Email": form.Email}, err.Error())
		return
	}
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	if err := s.Sessions.Login(c, user); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/profile")
}

func (s *Server) Logout(c *gin.Context) {
	if user := currentUser(c); user != nil {
		if err := s.Accounts.SetOnline(c.Request.Context(), user.Id, false); err != nil {
			Logger.Log.Error("fail to mark user offline: ", err)
		}
	}
	if err := s.Sessions.Logout(c); err != nil {
		Logger.Log.Error("fail to destroy session: ", err)
	}
	c.Redirect(http.StatusFound, "/")
}

func (s *Server) OAuthStart(c *gin.Context) {
	provider, err := s.OAuth.Get(c.Param("provider"))
	if err != nil {
		s.notFound(c)
		return
	}
	state := oauth.NewState()
	if err := s.Sessions.SetOAuthState(c, state); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.Redirect(http.StatusFound, provider.AuthCodeURL(state))
}

// OAuthCallback finishes the provider dance: the state must match the one
// issued by OAuthStart for this browser.
func (s *Server) OAuthCallback(c *gin.Context) {
	provider, err := s.OAuth.Get(c.Param("provider"))
	if err != nil {
		s.notFound(c)
		return
	}
	expected := s.Sessions.TakeOAuthState(c)
	if expected == "" || c.Query("state") != expected {
		s.redirectWithNotice(c, "/login", "Login expired, please try again")
		return
	}
	if c.Query("error") != "" || c.Query("code") == "" {
		s.redirectWithNotice(c, "/login", "Login was cancelled")
		return
	}
	profile, err := provider.Profile(c.Request.Context(), c.Query("code"))
	if err != nil {
		Logger.Log.Warn("oauth profile fetch failed: ", err)
		s.redirectWithNotice(c, "/login", "Could not log you in with "+provider.Name)
		return
	}
	user, err := s.Accounts.FindOrCreateOAuthUser(c.Request.Context(), *profile)
	if err != nil {
		s.abortWithError(c, errors.Wrap(err, "fail to find or create oauth user"))
		return
	}
	if err := s.Sessions.Login(c, user); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/profile")
}
