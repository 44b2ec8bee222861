package social

import (
	"context"

	"github.com/Luismorlan/rambagiza/events"
	"github.com/Luismorlan/rambagiza/model"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FriendState describes the relation between two users from one side.
type FriendState string

const (
	FriendStateNone      FriendState = "none"
	FriendStateRequested FriendState = "requested"
	FriendStateAccepted  FriendState = "accepted"
)

// SendFriendRequest puts requesterID on targetID's friend list as a pending
// entry. Asking again is a no-op.
func (s *Service) SendFriendRequest(ctx context.Context, requesterID string, targetID string) error {
	if requesterID == targetID {
		return ErrSelfFriendRequest
	}
	db := s.DB.WithContext(ctx)
	if err := userExists(db, targetID); err != nil {
		return err
	}
	entry := model.Friend{
		Id:       uuid.New().String(),
		UserID:   targetID,
		FriendID: requesterID,
		IsFriend: false,
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "friend_id"}},
		DoNothing: true,
	}).Create(&entry)
	if result.Error != nil {
		return errors.Wrap(result.Error, "fail to send friend request")
	}
	if result.RowsAffected == 1 {
		events.Publish(s.Bus, events.Event{
			Type:      events.TopicFriendRequest,
			ActorID:   requesterID,
			TargetID:  targetID,
			SubjectID: entry.Id,
		})
	}
	return nil
}

// AcceptFriend flips the pending entry requesterID left on targetID's list.
// The requester is not notified.
func (s *Service) AcceptFriend(ctx context.Context, targetID string, requesterID string) error {
	result := s.DB.WithContext(ctx).Model(&model.Friend{}).
		Where("user_id = ? AND friend_id = ?", targetID, requesterID).
		UpdateColumn("is_friend", true)
	if result.Error != nil {
		return errors.Wrap(result.Error, "fail to accept friend")
	}
	if result.RowsAffected == 0 {
		return ErrFriendRequestNotFound
	}
	return nil
}

func (s *Service) listFriends(ctx context.Context, userID string, accepted bool) ([]model.Friend, error) {
	var entries []model.Friend
	err := s.DB.WithContext(ctx).
		Preload("Friend").
		Where("user_id = ? AND is_friend = ?", userID, accepted).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, errors.Wrap(err, "fail to list friends")
}

// FriendRequests lists pending requests sent to the user.
func (s *Service) FriendRequests(ctx context.Context, userID string) ([]model.Friend, error) {
	return s.listFriends(ctx, userID, false)
}

// Friends lists accepted entries on the user's list.
func (s *Service) Friends(ctx context.Context, userID string) ([]model.Friend, error) {
	return s.listFriends(ctx, userID, true)
}

func friendPair(db *gorm.DB, a string, b string) *gorm.DB {
	return db.Model(&model.Friend{}).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)", a, b, b, a)
}

func (s *Service) AreFriends(ctx context.Context, a string, b string) (bool, error) {
	var count int64
	err := friendPair(s.DB.WithContext(ctx), a, b).Where("is_friend = ?", true).Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "fail to check friendship")
	}
	return count > 0, nil
}

// GetFriendState tells how a and b are related, in either direction.
func (s *Service) GetFriendState(ctx context.Context, a string, b string) (FriendState, error) {
	var entries []model.Friend
	if err := friendPair(s.DB.WithContext(ctx), a, b).Find(&entries).Error; err != nil {
		return FriendStateNone, errors.Wrap(err, "fail to get friend state")
	}
	state := FriendStateNone
	for _, e := range entries {
		if e.IsFriend {
			return FriendStateAccepted, nil
		}
		state = FriendStateRequested
	}
	return state, nil
}
