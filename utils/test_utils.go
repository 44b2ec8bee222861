package utils

import (
	"fmt"
	"testing"

	"github.com/Luismorlan/rambagiza/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// TestCreateUser inserts a user with the default wallet and returns it.
func TestCreateUser(t *testing.T, db *gorm.DB, name string) *model.User {
	return TestCreateUserWithWallet(t, db, name, model.DefaultWallet)
}

// TestCreateUserWithWallet inserts a user with a given wallet balance, does
// sanity checks and returns it.
func TestCreateUserWithWallet(t *testing.T, db *gorm.DB, name string, wallet int) *model.User {
	t.Helper()
	email := fmt.Sprintf("%s-%s@example.com", name, RandomAlphabetString(6))
	user := &model.User{
		Id:        uuid.New().String(),
		Email:     &email,
		Firstname: name,
		Fullname:  name,
		Image:     model.DefaultUserImage,
		About:     model.DefaultUserAbout,
		Wallet:    wallet,
	}
	require.Nil(t, db.Create(user).Error)

	var fetched model.User
	require.Nil(t, db.Where("id = ?", user.Id).First(&fetched).Error)
	require.Equal(t, wallet, fetched.Wallet)
	require.Equal(t, name, fetched.Fullname)
	return user
}

// TestGetWallet reads the current wallet balance of a user.
func TestGetWallet(t *testing.T, db *gorm.DB, userId string) int {
	t.Helper()
	var user model.User
	require.Nil(t, db.Where("id = ?", userId).First(&user).Error)
	return user.Wallet
}
