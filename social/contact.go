package social

import (
	"context"
	"strings"

	"github.com/Luismorlan/rambagiza/model"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

func (s *Service) SaveContactMessage(ctx context.Context, fullname string, email string, body string) (*model.ContactMessage, error) {
	msg := &model.ContactMessage{
		Id:       uuid.New().String(),
		Fullname: strings.TrimSpace(fullname),
		Email:    strings.TrimSpace(email),
		Body:     strings.TrimSpace(body),
	}
	if msg.Email == "" || msg.Body == "" {
		return nil, ErrIncompleteContact
	}
	if err := s.DB.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, errors.Wrap(err, "fail to save contact message")
	}
	return msg, nil
}

func (s *Service) ListContactMessages(ctx context.Context) ([]model.ContactMessage, error) {
	var msgs []model.ContactMessage
	err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&msgs).Error
	return msgs, errors.Wrap(err, "fail to list contact messages")
}
