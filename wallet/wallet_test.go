package wallet

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/Luismorlan/rambagiza/account"
	"github.com/Luismorlan/rambagiza/model"
	"github.com/Luismorlan/rambagiza/utils"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTier(t *testing.T) {
	for _, s := range []string{"10", "20", "30", "40"} {
		tier, err := ParseTier(s)
		require.Nil(t, err)
		assert.Equal(t, s, tier.String())
	}
	for _, s := range []string{"", "0", "15", "50", "twenty"} {
		_, err := ParseTier(s)
		assert.True(t, errors.Is(err, ErrUnknownTier), s)
	}
}

func TestTierAmounts(t *testing.T) {
	assert.Equal(t, 200, Tier10.Credit())
	assert.Equal(t, 500, Tier20.Credit())
	assert.Equal(t, 1000, Tier30.Credit())
	assert.Equal(t, 2000, Tier40.Credit())
	assert.Equal(t, int64(1000), Tier10.AmountCents())
	assert.Equal(t, int64(4000), Tier40.AmountCents())
}

func TestCheckWalletBeforeChat(t *testing.T) {
	assert.False(t, CheckWalletBeforeChat(nil))
	assert.False(t, CheckWalletBeforeChat(&model.User{Wallet: -2}))
	assert.False(t, CheckWalletBeforeChat(&model.User{Wallet: 0}))
	assert.True(t, CheckWalletBeforeChat(&model.User{Wallet: 1}))
	assert.True(t, CheckWalletBeforeChat(&model.User{Wallet: 2000}))
}

func TestCreditWalletAfterCharge(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	s := NewService(db, nil)
	ctx := context.Background()

	expected := map[Tier]int{Tier10: 200, Tier20: 500, Tier30: 1000, Tier40: 2000}
	for tier, credit := range expected {
		user := utils.TestCreateUser(t, db, "buyer"+tier.String())
		updated, err := s.CreditWalletAfterCharge(ctx, user.Id, tier, Receipt{ChargeID: "ch_" + tier.String()})
		require.Nil(t, err)
		assert.Equal(t, user.Wallet+credit, updated.Wallet, "tier %s", tier)
		assert.Equal(t, user.Wallet+credit, utils.TestGetWallet(t, db, user.Id))
	}
}

func TestCreditWalletWritesLedgerAndReplays(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	s := NewService(db, nil)
	ctx := context.Background()
	user := utils.TestCreateUserWithWallet(t, db, "payer", 0)

	receipt := Receipt{ChargeID: "ch_1", Raw: map[string]interface{}{"paid": true, "charge_id": "ch_1"}}
	_, err := s.CreditWalletAfterCharge(ctx, user.Id, Tier20, receipt)
	require.Nil(t, err)
	// No idempotency key: the same confirmation credits twice.
	updated, err := s.CreditWalletAfterCharge(ctx, user.Id, Tier20, receipt)
	require.Nil(t, err)
	assert.Equal(t, 1000, updated.Wallet)

	topUps, err := s.TopUps(ctx, user.Id)
	require.Nil(t, err)
	require.Len(t, topUps, 2)
	assert.Equal(t, "20", topUps[0].Tier)
	assert.Equal(t, 500, topUps[0].Credit)
	assert.Equal(t, "ch_1", topUps[0].ChargeID)

	var raw map[string]interface{}
	require.Nil(t, json.Unmarshal(topUps[0].Confirmation, &raw))
	assert.Equal(t, true, raw["paid"])
}

func TestCreditWalletUnknownUser(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	s := NewService(db, nil)

	_, err := s.CreditWalletAfterCharge(context.Background(), "missing", Tier10, Receipt{})
	assert.Equal(t, account.ErrUserNotFound, err)

	var count int64
	db.Model(&model.TopUp{}).Count(&count)
	assert.Equal(t, int64(0), count)

	_, err = s.CreditWalletAfterCharge(context.Background(), "missing", Tier("15"), Receipt{})
	assert.Equal(t, ErrUnknownTier, err)
}

func TestConcurrentDebitsAreNotLost(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	s := NewService(db, nil)
	user := utils.TestCreateUserWithWallet(t, db, "spender", 3)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Nil(t, s.Debit(db, user.Id, 1))
		}()
	}
	wg.Wait()

	// Balance may go below zero, every debit is applied.
	assert.Equal(t, -2, utils.TestGetWallet(t, db, user.Id))
	assert.Equal(t, account.ErrUserNotFound, s.Debit(db, "missing", 1))
}
