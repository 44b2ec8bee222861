package server

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/Luismorlan/rambagiza/account"
	"github.com/Luismorlan/rambagiza/app_setting"
	"github.com/Luismorlan/rambagiza/chat"
	"github.com/Luismorlan/rambagiza/file_store"
	"github.com/Luismorlan/rambagiza/oauth"
	"github.com/Luismorlan/rambagiza/payment"
	"github.com/Luismorlan/rambagiza/presence"
	"github.com/Luismorlan/rambagiza/server/middlewares"
	"github.com/Luismorlan/rambagiza/social"
	"github.com/Luismorlan/rambagiza/wallet"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Server holds every dependency the handlers need. It is built once in main.
type Server struct {
	Accounts *account.Service
	Social   *social.Service
	Chat     *chat.Service
	Wallet   *wallet.Service
	Gateway  payment.Gateway
	Store    file_store.ObjectStore
	OAuth    oauth.Providers
	Hub      *presence.Hub
	Sessions *middlewares.Sessions
	Setting  app_setting.ServerAppSetting

	// Built from Setting by SetupRouter when nil.
	ChatLimiter  *middlewares.RateLimiter
	LoginLimiter *middlewares.RateLimiter

	StripePublishableKey string
	ContactWebhookUrl    string
	// LocalUploadDir is served under /uploads when uploads are kept on disk.
	LocalUploadDir string
}

func parseTemplates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}

// SetupRouter registers templates, middlewares and every route on router.
func (s *Server) SetupRouter(router *gin.Engine) {
	router.SetHTMLTemplate(parseTemplates())
	router.MaxMultipartMemory = s.Setting.MAX_UPLOAD_MB << 20

	static, _ := fs.Sub(staticFS, "static")
	router.StaticFS("/static", http.FS(static))
	if s.LocalUploadDir != "" {
		router.Static("/uploads", s.LocalUploadDir)
	}

	router.Use(s.Sessions.Middleware())
	router.NoRoute(func(c *gin.Context) {
		s.notFound(c)
	})

	if s.ChatLimiter == nil {
		s.ChatLimiter = middlewares.NewRateLimiter(s.Setting.CHAT_POSTS_PER_SECOND, s.Setting.CHAT_POSTS_BURST)
	}
	if s.LoginLimiter == nil {
		s.LoginLimiter = middlewares.NewRateLimiter(s.Setting.LOGIN_ATTEMPTS_PER_SECOND, s.Setting.LOGIN_BURST)
	}

	// Public pages
	router.GET("/", s.Index)
	router.GET("/about", s.About)
	router.GET("/contact", s.ContactForm)
	router.POST("/contact", s.Contact)
	router.GET("/signup", s.SignupForm)
	router.POST("/signup", s.Signup)
	router.GET("/login", s.LoginForm)
	router.POST("/login", s.LoginLimiter.Middleware(), s.Login)
	router.GET("/logout", s.Logout)
	router.GET("/auth/:provider", s.OAuthStart)
	router.GET("/auth/:provider/callback", s.OAuthCallback)
	router.GET("/posts", s.Posts)
	router.GET("/fullPost/:id", s.FullPost)

	authed := router.Group("/", middlewares.RequireUser())

	authed.GET("/profile", s.Profile)
	authed.POST("/updateProfile", s.UpdateProfile)
	authed.POST("/uploadAvatar", s.UploadAvatar)
	authed.POST("/uploadPictures", s.UploadPictures)
	authed.GET("/deletePicture/:id", s.DeletePicture)
	authed.GET("/deleteAccount", s.DeleteAccount)

	authed.GET("/singles", s.Singles)
	authed.GET("/userProfile/:id", s.UserProfile)
	authed.GET("/sendFriendRequest/:id", s.SendFriendRequest)
	authed.GET("/acceptFriend/:id", s.AcceptFriend)
	authed.GET("/friendRequests", s.FriendRequests)
	authed.GET("/friends", s.Friends)
	authed.GET("/sendSmile/:id", s.SendSmile)
	authed.GET("/showSmile/:id", s.ShowSmile)
	authed.GET("/deleteSmile/:id", s.DeleteSmile)
	authed.GET("/smiles", s.Smiles)

	authed.GET("/addPost", s.AddPostForm)
	authed.POST("/addPost", s.AddPost)
	authed.GET("/editPost/:id", s.EditPostForm)
	authed.POST("/editPost/:id", s.EditPost)
	authed.GET("/deletePost/:id", s.DeletePost)
	authed.GET("/likePost/:id", s.LikePost)
	authed.POST("/comment/:id", s.Comment)

	authed.GET("/startChat/:id", s.StartChat)
	authed.GET("/chat/:id", s.ChatRoom)
	authed.POST("/chat/:id", s.ChatLimiter.Middleware(), middlewares.WalletGuard(s.renderPaymentPrompt), s.PostChatMessage)
	authed.GET("/chats", s.Chats)
	authed.GET("/deleteChat/:id", s.DeleteChat)

	authed.GET("/payment", s.Payment)
	for _, tier := range wallet.AllTiers {
		authed.POST("/charge"+tier.String()+"dollars", s.Charge(tier))
	}

	authed.GET("/ws", s.Presence)
}

// NewRouter builds a bare router with only the application routes, used in
// tests. main adds logging, recovery, cors and tracing on top.
func (s *Server) NewRouter() *gin.Engine {
	router := gin.New()
	s.SetupRouter(router)
	return router
}
