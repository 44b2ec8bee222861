package server

import (
	"net/http"

	"github.com/Luismorlan/rambagiza/account"
	"github.com/Luismorlan/rambagiza/social"
	"github.com/gin-gonic/gin"
)

func (s *Server) Singles(c *gin.Context) {
	users, err := s.Accounts.ListSingles(c.Request.Context(), currentUser(c).Id)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	s.render(c, http.StatusOK, "singles.html", gin.H{"Users": users})
}

func (s *Server) UserProfile(c *gin.Context) {
	me := currentUser(c)
	ctx := c.Request.Context()
	id := c.Param("id")
	if id == me.Id {
		c.Redirect(http.StatusFound, "/profile")
		return
	}
	user, err := s.Accounts.GetUser(ctx, id)
	if err == account.ErrUserNotFound {
		s.notFound(c)
		return
	}
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	state, err := s.Social.GetFriendState(ctx, me.Id, id)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	posts, err := s.Social.ListUserPosts(ctx, id, me.Id)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	s.render(c, http.StatusOK, "user_profile.html", gin.H{
		"User":        user,
		"FriendState": string(state),
		"Posts":       posts,
	})
}

func (s *Server) SendFriendRequest(c *gin.Context) {
	id := c.Param("id")
	err := s.Social.SendFriendRequest(c.Request.Context(), currentUser(c).Id, id)
	switch err {
	case nil:
		s.redirectWithNotice(c, "/userProfile/"+id, "Friend request sent")
	case account.ErrUserNotFound:
		s.notFound(c)
	case social.ErrSelfFriendRequest:
		s.redirectWithNotice(c, "/profile", err.Error())
	default:
		s.abortWithError(c, err)
	}
}

// AcceptFriend accepts the request the user behind :id sent to the current
// user.
func (s *Server) AcceptFriend(c *gin.Context) {
	err := s.Social.AcceptFriend(c.Request.Context(), currentUser(c).Id, c.Param("id"))
	switch err {
	case nil:
		s.redirectWithNotice(c, "/friends", "Friend request accepted")
	case social.ErrFriendRequestNotFound:
		s.notFound(c)
	default:
		s.abortWithError(c, err)
	}
}

func (s *Server) FriendRequests(c *gin.Context) {
	requests, err := s.Social.FriendRequests(c.Request.Context(), currentUser(c).Id)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	s.render(c, http.StatusOK, "friend_requests.html", gin.H{"Requests": requests})
}

func (s *Server) Friends(c *gin.Context) {
	friends, err := s.Social.Friends(c.Request.Context(), currentUser(c).Id)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	s.render(c, http.StatusOK, "friends.html", gin.H{"Friends": friends})
}

func (s *Server) SendSmile(c *gin.Context) {
	id := c.Param("id")
	_, err := s.Social.SendSmile(c.Request.Context(), currentUser(c).Id, id)
	switch err {
	case nil:
		s.redirectWithNotice(c, "/userProfile/"+id, "Smile sent")
	case account.ErrUserNotFound:
		s.notFound(c)
	case social.ErrSelfSmile:
		s.redirectWithNotice(c, "/profile", err.Error())
	default:
		s.abortWithError(c, err)
	}
}

func (s *Server) ShowSmile(c *gin.Context) {
	smile, err := s.Social.ShowSmile(c.Request.Context(), c.Param("id"), currentUser(c).Id)
	if err == social.ErrSmileNotFound {
		s.notFound(c)
		return
	}
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	s.render(c, http.StatusOK, "smile.html", gin.H{"Smile": smile})
}

func (s *Server) DeleteSmile(c *gin.Context) {
	err := s.Social.DeleteSmile(c.Request.Context(), c.Param("id"))
	if err == social.ErrSmileNotFound {
		s.notFound(c)
		return
	}
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	s.redirectWithNotice(c, "/smiles", "Smile deleted")
}

func (s *Server) Smiles(c *gin.Context) {
	smiles, err := s.Social.ReceivedSmiles(c.Request.Context(), currentUser(c).Id)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	s.render(c, http.StatusOK, "smiles.html", gin.H{"Smiles": smiles})
}
