package payment

import (
	"context"
	"fmt"

	"github.com/Luismorlan/rambagiza/model"
	Logger "github.com/Luismorlan/rambagiza/utils/log"
	"github.com/Luismorlan/rambagiza/wallet"
	"github.com/pkg/errors"
)

var (
	ErrChargeDeclined = errors.New("the card was not charged")
	ErrMissingToken   = errors.New("missing card token")
)

// IsDeclined is true when the card itself was refused, as opposed to the
// gateway failing.
func IsDeclined(err error) bool {
	return errors.Cause(err) == ErrChargeDeclined
}

type ChargeRequest struct {
	// Token is the single use card token created by the browser.
	Token       string
	Email       string
	AmountCents int64
	Description string
}

// Confirmation is what the gateway tells us about a charge.
type Confirmation struct {
	CustomerID string `json:"customer_id"`
	ChargeID   string `json:"charge_id"`
	PayerEmail string `json:"payer_email"`
	Paid       bool   `json:"paid"`
}

type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*Confirmation, error)
}

// ChargeAndCredit charges the tier's price to the card behind token and,
// once the gateway confirms payment, credits the user's wallet.
func ChargeAndCredit(ctx context.Context, gateway Gateway, w *wallet.Service, user *model.User, tier wallet.Tier, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	email := ""
	if user.Email != nil {
		email = *user.Email
	}
	confirmation, err := gateway.Charge(ctx, ChargeRequest{
		Token:       token,
		Email:       email,
		AmountCents: tier.AmountCents(),
		Description: fmt.Sprintf("Wallet top-up of %d messages ($%s)", tier.Credit(), tier),
	})
	if err != nil {
		return nil, errors.Wrap(err, "fail to charge card")
	}
	if !confirmation.Paid {
		Logger.Log.Warnf("charge %s for user %s was not paid", confirmation.ChargeID, user.Id)
		return nil, ErrChargeDeclined
	}
	return w.CreditWalletAfterCharge(ctx, user.Id, tier, wallet.Receipt{
		ChargeID: confirmation.ChargeID,
		Raw:      confirmation,
	})
}
