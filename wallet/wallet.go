package wallet

import (
	"context"
	"encoding/json"

	"github.com/Luismorlan/rambagiza/account"
	"github.com/Luismorlan/rambagiza/events"
	"github.com/Luismorlan/rambagiza/model"
	Logger "github.com/Luismorlan/rambagiza/utils/log"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CheckWalletBeforeChat reports whether the user may send a chat message. It
// is a plain precondition, nothing is reserved.
func CheckWalletBeforeChat(user *model.User) bool {
	return user != nil && user.Wallet > 0
}

// Receipt is the confirmed charge a credit is granted for.
type Receipt struct {
	ChargeID string
	// Raw is stored as is on the ledger row.
	Raw interface{}
}

type Service struct {
	DB  *gorm.DB
	Bus message.Publisher
}

func NewService(db *gorm.DB, bus message.Publisher) *Service {
	return &Service{DB: db, Bus: bus}
}

// Debit takes units off the user's wallet as part of tx. The update is a
// single statement so concurrent debits are never lost. There is no floor.
func (s *Service) Debit(tx *gorm.DB, userID string, units int) error {
	result := tx.Model(&model.User{}).
		Where("id = ?", userID).
		Update("wallet", gorm.Expr("wallet - ?", units))
	if result.Error != nil {
		return errors.Wrap(result.Error, "fail to debit wallet")
	}
	if result.RowsAffected == 0 {
		return account.ErrUserNotFound
	}
	return nil
}

// CreditWalletAfterCharge adds the tier's credit to the user's wallet and
// records the charge on the ledger. Replaying the same receipt credits again.
func (s *Service) CreditWalletAfterCharge(ctx context.Context, userID string, tier Tier, receipt Receipt) (*model.User, error) {
	if _, ok := tiers[tier]; !ok {
		return nil, ErrUnknownTier
	}
	raw, err := json.Marshal(receipt.Raw)
	if err != nil {
		return nil, errors.Wrap(err, "fail to encode charge confirmation")
	}

	var user model.User
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.User{}).
			Where("id = ?", userID).
			Update("wallet", gorm.Expr("wallet + ?", tier.Credit()))
		if result.Error != nil {
			return errors.Wrap(result.Error, "fail to credit wallet")
		}
		if result.RowsAffected == 0 {
			return account.ErrUserNotFound
		}
		topUp := model.TopUp{
			Id:           uuid.New().String(),
			UserID:       userID,
			Tier:         tier.String(),
			Credit:       tier.Credit(),
			ChargeID:     receipt.ChargeID,
			Confirmation: datatypes.JSON(raw),
		}
		if err := tx.Create(&topUp).Error; err != nil {
			return errors.Wrap(err, "fail to record top up")
		}
		return errors.Wrap(tx.Where("id = ?", userID).First(&user).Error, "fail to reload user")
	})
	if err != nil {
		return nil, err
	}

	Logger.Log.Infof("credited %d to user %s for tier %s, charge %s", tier.Credit(), userID, tier, receipt.ChargeID)
	events.Publish(s.Bus, events.Event{
		Type:      events.TopicWalletCredit,
		ActorID:   userID,
		SubjectID: receipt.ChargeID,
	})
	return &user, nil
}

// TopUps lists the user's ledger rows, newest first.
func (s *Service) TopUps(ctx context.Context, userID string) ([]model.TopUp, error) {
	var topUps []model.TopUp
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&topUps).Error
	return topUps, errors.Wrap(err, "fail to list top ups")
}
