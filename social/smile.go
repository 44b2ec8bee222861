package social

import (
	"context"

	"github.com/Luismorlan/rambagiza/events"
	"github.com/Luismorlan/rambagiza/model"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

func (s *Service) SendSmile(ctx context.Context, senderID string, receiverID string) (*model.Smile, error) {
	if senderID == receiverID {
		return nil, ErrSelfSmile
	}
	db := s.DB.WithContext(ctx)
	if err := userExists(db, receiverID); err != nil {
		return nil, err
	}
	smile := &model.Smile{
		Id:               uuid.New().String(),
		SenderID:         senderID,
		ReceiverID:       receiverID,
		SenderSent:       true,
		ReceiverReceived: false,
	}
	if err := db.Create(smile).Error; err != nil {
		return nil, errors.Wrap(err, "fail to send smile")
	}
	events.Publish(s.Bus, events.Event{
		Type:      events.TopicSmile,
		ActorID:   senderID,
		TargetID:  receiverID,
		SubjectID: smile.Id,
	})
	return smile, nil
}

func (s *Service) ReceivedSmiles(ctx context.Context, userID string) ([]model.Smile, error) {
	var smiles []model.Smile
	err := s.DB.WithContext(ctx).
		Preload("Sender").
		Where("receiver_id = ?", userID).
		Order("created_at DESC").
		Find(&smiles).Error
	return smiles, errors.Wrap(err, "fail to list smiles")
}

// ShowSmile loads a smile for one of its two users. The receiver opening it
// marks it received.
func (s *Service) ShowSmile(ctx context.Context, smileID string, viewerID string) (*model.Smile, error) {
	db := s.DB.WithContext(ctx)
	var smile model.Smile
	result := db.Preload("Sender").Preload("Receiver").Where("id = ?", smileID).Limit(1).Find(&smile)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "fail to get smile")
	}
	if result.RowsAffected == 0 || (viewerID != smile.SenderID && viewerID != smile.ReceiverID) {
		return nil, ErrSmileNotFound
	}
	if viewerID == smile.ReceiverID && !smile.ReceiverReceived {
		if err := db.Model(&smile).UpdateColumn("receiver_received", true).Error; err != nil {
			return nil, errors.Wrap(err, "fail to mark smile received")
		}
		smile.ReceiverReceived = true
	}
	return &smile, nil
}

func (s *Service) DeleteSmile(ctx context.Context, smileID string) error {
	result := s.DB.WithContext(ctx).Where("id = ?", smileID).Delete(&model.Smile{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "fail to delete smile")
	}
	if result.RowsAffected == 0 {
		return ErrSmileNotFound
	}
	return nil
}
