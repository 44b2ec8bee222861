package payment

import (
	"context"
	"testing"

	"github.com/Luismorlan/rambagiza/model"
	"github.com/Luismorlan/rambagiza/utils"
	"github.com/Luismorlan/rambagiza/wallet"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChargeAndCredit(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	w := wallet.NewService(db, nil)
	gateway := NewFakeGateway()
	user := utils.TestCreateUserWithWallet(t, db, "buyer", 0)

	updated, err := ChargeAndCredit(context.Background(), gateway, w, user, wallet.Tier20, "tok_visa")
	require.Nil(t, err)
	assert.Equal(t, 500, updated.Wallet)

	require.Len(t, gateway.Requests, 1)
	assert.Equal(t, int64(2000), gateway.Requests[0].AmountCents)
	assert.Equal(t, "tok_visa", gateway.Requests[0].Token)
	assert.Equal(t, *user.Email, gateway.Requests[0].Email)

	var topUp model.TopUp
	require.Nil(t, db.Where("user_id = ?", user.Id).First(&topUp).Error)
	assert.Equal(t, "ch_fake_1", topUp.ChargeID)
}

func TestChargeAndCreditFailures(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	w := wallet.NewService(db, nil)
	user := utils.TestCreateUserWithWallet(t, db, "buyer", 1)
	ctx := context.Background()

	_, err := ChargeAndCredit(ctx, NewFakeGateway(), w, user, wallet.Tier10, "")
	assert.Equal(t, ErrMissingToken, err)

	declined := NewFakeGateway()
	declined.Paid = false
	_, err = ChargeAndCredit(ctx, declined, w, user, wallet.Tier10, "tok_chargeDeclined")
	assert.Equal(t, ErrChargeDeclined, err)

	boom := errors.New("card_error")
	broken := NewFakeGateway()
	broken.Err = boom
	_, err = ChargeAndCredit(ctx, broken, w, user, wallet.Tier10, "tok_visa")
	assert.True(t, errors.Is(err, boom))

	// nothing was credited
	assert.Equal(t, 1, utils.TestGetWallet(t, db, user.Id))
}
