package server

import (
	"net/http"

	"github.com/Luismorlan/rambagiza/account"
	"github.com/Luismorlan/rambagiza/chat"
	"github.com/gin-gonic/gin"
)

type chatForm struct {
	Body string `form:"body"`
}

func chatLink(id string) string {
	return "/chat/" + id
}

// StartChat resolves the thread between the current user and :id, creating
// it on first contact, and sends the browser to it.
func (s *Server) StartChat(c *gin.Context) {
	id, err := s.Chat.StartOrResumeConversation(c.Request.Context(), currentUser(c).Id, c.Param("id"))
	switch err {
	case nil:
		c.Redirect(http.StatusFound, chatLink(id))
	case account.ErrUserNotFound:
		s.notFound(c)
	case chat.ErrSelfConversation:
		s.redirectWithNotice(c, "/singles", err.Error())
	default:
		s.abortWithError(c, err)
	}
}

// ChatRoom renders a thread. Threads the user is not part of are reported as
// not found.
func (s *Server) ChatRoom(c *gin.Context) {
	me := currentUser(c)
	conversation, err := s.Chat.GetConversation(c.Request.Context(), c.Param("id"), me.Id)
	if err == chat.ErrConversationNotFound || err == chat.ErrNotParticipant {
		s.notFound(c)
		return
	}
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	other := conversation.Sender
	if conversation.SenderID == me.Id {
		other = conversation.Receiver
	}
	s.render(c, http.StatusOK, "chat.html", gin.H{
		"Conversation": conversation,
		"Other":        other,
		"Wallet":       me.Wallet,
	})
}

// PostChatMessage appends a message and charges its author. The wallet guard
// runs before this handler.
func (s *Server) PostChatMessage(c *gin.Context) {
	id := c.Param("id")
	var form chatForm
	if err := c.ShouldBind(&form); err != nil {
		s.redirectWithNotice(c, chatLink(id), "Invalid message")
		return
	}
	_, _, err := s.Chat.PostMessage(c.Request.Context(), id, currentUser(c).Id, form.Body)
	switch err {
	case nil:
		c.Redirect(http.StatusSeeOther, chatLink(id))
	case chat.ErrConversationNotFound, chat.ErrNotParticipant:
		s.notFound(c)
	case chat.ErrEmptyMessage:
		s.redirectWithNotice(c, chatLink(id), err.Error())
	default:
		s.abortWithError(c, err)
	}
}

func (s *Server) Chats(c *gin.Context) {
	inbox, err := s.Chat.ListConversations(c.Request.Context(), currentUser(c).Id)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	s.render(c, http.StatusOK, "chats.html", gin.H{"Inbox": inbox})
}

// DeleteChat removes the thread for both participants.
func (s *Server) DeleteChat(c *gin.Context) {
	err := s.Chat.DeleteConversation(c.Request.Context(), c.Param("id"))
	if err == chat.ErrConversationNotFound {
		s.notFound(c)
		return
	}
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	s.redirectWithNotice(c, "/chats", "Conversation deleted")
}

// Presence keeps the user online for as long as the socket stays open.
func (s *Server) Presence(c *gin.Context) {
	s.Hub.ServeWs(c.Writer, c.Request, currentUser(c).Id)
}
