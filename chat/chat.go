package chat

import (
	"context"
	"strings"
	"time"

	"github.com/Luismorlan/rambagiza/account"
	"github.com/Luismorlan/rambagiza/events"
	"github.com/Luismorlan/rambagiza/model"
	Logger "github.com/Luismorlan/rambagiza/utils/log"
	"github.com/Luismorlan/rambagiza/wallet"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Every message costs its author this many wallet units.
const MessageCost = 1

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("user is not part of this conversation")
	ErrEmptyMessage         = errors.New("message is empty")
	ErrSelfConversation     = errors.New("cannot start a conversation with yourself")
)

// Inbox splits a user's threads by the slot they occupy.
type Inbox struct {
	// Threads the user started.
	Sent []model.Conversation
	// Threads started by someone else.
	Received []model.Conversation
}

type Service struct {
	DB     *gorm.DB
	Wallet *wallet.Service
	Bus    message.Publisher
}

func NewService(db *gorm.DB, w *wallet.Service, bus message.Publisher) *Service {
	return &Service{DB: db, Wallet: w, Bus: bus}
}

func now() time.Time {
	// postgres keeps microseconds
	return time.Now().UTC().Truncate(time.Microsecond)
}

// readFlags marks the slot of userId as read and the other one as unread.
func readFlags(c *model.Conversation, userId string) map[string]interface{} {
	role, _ := c.RoleOf(userId)
	return map[string]interface{}{
		"sender_read":   role == model.AuthorRoleSender,
		"receiver_read": role == model.AuthorRoleReceiver,
	}
}

func (s *Service) openConversation(db *gorm.DB, c *model.Conversation, userId string) error {
	updates := readFlags(c, userId)
	updates["last_activity_at"] = now()
	return errors.Wrap(db.Model(c).Updates(updates).Error, "fail to open conversation")
}

// StartOrResumeConversation returns the id of the single thread between the
// two users, creating it with currentUserID as sender when none exists.
// Opening it marks the current user's slot read and the other slot unread.
func (s *Service) StartOrResumeConversation(ctx context.Context, currentUserID string, otherUserID string) (string, error) {
	if currentUserID == otherUserID {
		return "", ErrSelfConversation
	}
	db := s.DB.WithContext(ctx)
	pairKey := model.ConversationPairKey(currentUserID, otherUserID)

	var existing model.Conversation
	result := db.Where("pair_key = ?", pairKey).Limit(1).Find(&existing)
	if result.Error != nil {
		return "", errors.Wrap(result.Error, "fail to look up conversation")
	}
	if result.RowsAffected != 0 {
		return existing.Id, s.openConversation(db, &existing, currentUserID)
	}

	var count int64
	if err := db.Model(&model.User{}).Where("id = ?", otherUserID).Count(&count).Error; err != nil {
		return "", errors.Wrap(err, "fail to look up user")
	}
	if count == 0 {
		return "", account.ErrUserNotFound
	}

	c := model.Conversation{
		Id:             uuid.New().String(),
		SenderID:       currentUserID,
		ReceiverID:     otherUserID,
		PairKey:        pairKey,
		SenderRead:     true,
		ReceiverRead:   false,
		LastActivityAt: now(),
	}
	result = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "pair_key"}},
		DoNothing: true,
	}).Create(&c)
	if result.Error != nil {
		return "", errors.Wrap(result.Error, "fail to create conversation")
	}
	if result.RowsAffected == 1 {
		Logger.Log.Infof("conversation %s started by %s with %s", c.Id, currentUserID, otherUserID)
		return c.Id, nil
	}

	// Someone else created the thread between our lookup and our insert.
	if err := db.Where("pair_key = ?", pairKey).First(&existing).Error; err != nil {
		return "", errors.Wrap(err, "fail to read conversation after conflict")
	}
	return existing.Id, s.openConversation(db, &existing, currentUserID)
}

func (s *Service) loadConversation(db *gorm.DB, id string) (*model.Conversation, error) {
	var c model.Conversation
	result := db.
		Preload("Sender").
		Preload("Receiver").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("sent_at ASC")
		}).
		Preload("Messages.Author").
		Where("id = ?", id).Limit(1).Find(&c)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "fail to load conversation")
	}
	if result.RowsAffected == 0 {
		return nil, ErrConversationNotFound
	}
	return &c, nil
}

// PostMessage appends body to the conversation log on behalf of the author and
// debits the author's wallet by MessageCost in the same transaction. The
// wallet is not checked here, callers gate with wallet.CheckWalletBeforeChat.
func (s *Service) PostMessage(ctx context.Context, conversationID string, authorUserID string, body string) (*model.Conversation, *model.User, error) {
	db := s.DB.WithContext(ctx)
	c, err := s.loadConversation(db, conversationID)
	if err != nil {
		return nil, nil, err
	}
	role, ok := c.RoleOf(authorUserID)
	if !ok {
		return nil, nil, ErrNotParticipant
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, nil, ErrEmptyMessage
	}

	sentAt := now()
	if n := len(c.Messages); n > 0 && !sentAt.After(c.Messages[n-1].SentAt) {
		// keep the log strictly ordered even when clocks collide
		sentAt = c.Messages[n-1].SentAt.Add(time.Microsecond)
	}
	flags := readFlags(c, authorUserID)
	msg := model.Message{
		Id:             uuid.New().String(),
		ConversationID: c.Id,
		AuthorRole:     role,
		AuthorID:       authorUserID,
		Body:           body,
		SentAt:         sentAt,
		SenderRead:     role == model.AuthorRoleSender,
		ReceiverRead:   role == model.AuthorRoleReceiver,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&msg).Error; err != nil {
			return errors.Wrap(err, "fail to append message")
		}
		flags["last_activity_at"] = sentAt
		if err := tx.Model(&model.Conversation{Id: c.Id}).Updates(flags).Error; err != nil {
			return errors.Wrap(err, "fail to update conversation")
		}
		return s.Wallet.Debit(tx, authorUserID, MessageCost)
	})
	if err != nil {
		return nil, nil, err
	}

	events.Publish(s.Bus, events.Event{
		Type:      events.TopicChatMessage,
		ActorID:   authorUserID,
		TargetID:  c.OtherParticipant(authorUserID),
		SubjectID: c.Id,
	})

	c, err = s.loadConversation(db, conversationID)
	if err != nil {
		return nil, nil, err
	}
	var author model.User
	if err := db.Where("id = ?", authorUserID).First(&author).Error; err != nil {
		return nil, nil, errors.Wrap(err, "fail to reload author")
	}
	return c, &author, nil
}

// GetConversation loads a thread for one of its participants and marks it
// read for them.
func (s *Service) GetConversation(ctx context.Context, id string, viewerID string) (*model.Conversation, error) {
	db := s.DB.WithContext(ctx)
	c, err := s.loadConversation(db, id)
	if err != nil {
		return nil, err
	}
	role, ok := c.RoleOf(viewerID)
	if !ok {
		return nil, ErrNotParticipant
	}
	column := "sender_read"
	if role == model.AuthorRoleReceiver {
		column = "receiver_read"
	}
	if err := db.Model(&model.Conversation{Id: c.Id}).UpdateColumn(column, true).Error; err != nil {
		return nil, errors.Wrap(err, "fail to mark conversation read")
	}
	if role == model.AuthorRoleSender {
		c.SenderRead = true
	} else {
		c.ReceiverRead = true
	}
	return c, nil
}

func (s *Service) ListConversations(ctx context.Context, userID string) (*Inbox, error) {
	db := s.DB.WithContext(ctx)
	inbox := &Inbox{}
	err := db.Preload("Sender").Preload("Receiver").
		Where("sender_id = ?", userID).
		Order("last_activity_at DESC").
		Find(&inbox.Sent).Error
	if err != nil {
		return nil, errors.Wrap(err, "fail to list sent conversations")
	}
	err = db.Preload("Sender").Preload("Receiver").
		Where("receiver_id = ?", userID).
		Order("last_activity_at DESC").
		Find(&inbox.Received).Error
	if err != nil {
		return nil, errors.Wrap(err, "fail to list received conversations")
	}
	return inbox, nil
}

// DeleteConversation removes exactly one thread and its log, whoever asks.
func (s *Service) DeleteConversation(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", id).Delete(&model.Message{}).Error; err != nil {
			return errors.Wrap(err, "fail to delete messages")
		}
		result := tx.Where("id = ?", id).Delete(&model.Conversation{})
		if result.Error != nil {
			return errors.Wrap(result.Error, "fail to delete conversation")
		}
		if result.RowsAffected == 0 {
			return ErrConversationNotFound
		}
		return nil
	})
}

// UnreadCount is the number of threads with activity the user has not seen.
func (s *Service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&model.Conversation{}).
		Where("(sender_id = ? AND sender_read = ?) OR (receiver_id = ? AND receiver_read = ?)", userID, false, userID, false).
		Count(&count).Error
	return count, errors.Wrap(err, "fail to count unread conversations")
}
