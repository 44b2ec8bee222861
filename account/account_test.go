package account

import (
	"context"
	"testing"

	"github.com/Luismorlan/rambagiza/model"
	"github.com/Luismorlan/rambagiza/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	db, _ := utils.CreateTempDB(t)
	s := NewService(db)
	s.BcryptCost = bcrypt.MinCost
	return s, db
}

func TestRegister(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	user, err := s.Register(ctx, RegisterInput{
		Email:           "  Alice@Example.com ",
		Password:        "secret",
		ConfirmPassword: "secret",
		Firstname:       "Alice",
		Lastname:        "Smith",
	})
	require.Nil(t, err)
	assert.Equal(t, "alice@example.com", *user.Email)
	assert.Equal(t, "Alice Smith", user.Fullname)
	assert.Equal(t, model.DefaultWallet, user.Wallet)
	assert.Equal(t, model.DefaultUserImage, user.Image)
	assert.Equal(t, model.DefaultUserAbout, user.About)
	assert.NotEqual(t, "secret", *user.PasswordHash)

	_, err = s.Register(ctx, RegisterInput{Email: "ALICE@example.com", Password: "secret", ConfirmPassword: "secret"})
	assert.Equal(t, ErrEmailTaken, err)
}

func TestRegisterValidation(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, RegisterInput{Email: "a@b.c", Password: "secret", ConfirmPassword: "other"})
	assert.Equal(t, ErrPasswordMismatch, err)

	_, err = s.Register(ctx, RegisterInput{Email: "a@b.c", Password: "abcd", ConfirmPassword: "abcd"})
	assert.Equal(t, ErrPasswordTooShort, err)

	_, err = s.Register(ctx, RegisterInput{Email: " ", Password: "abcde", ConfirmPassword: "abcde"})
	assert.Equal(t, ErrMissingEmail, err)

	var count int64
	db.Model(&model.User{}).Count(&count)
	assert.Equal(t, int64(0), count)

	_, err = s.Register(ctx, RegisterInput{Email: "a@b.c", Password: "abcde", ConfirmPassword: "abcde"})
	assert.Nil(t, err)
}

func TestAuthenticate(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	registered, err := s.Register(ctx, RegisterInput{Email: "bob@example.com", Password: "hunter2", ConfirmPassword: "hunter2"})
	require.Nil(t, err)

	user, err := s.Authenticate(ctx, "BOB@example.com", "hunter2")
	require.Nil(t, err)
	assert.Equal(t, registered.Id, user.Id)

	_, err = s.Authenticate(ctx, "bob@example.com", "wrong")
	assert.Equal(t, ErrInvalidCredentials, err)

	_, err = s.Authenticate(ctx, "nobody@example.com", "hunter2")
	assert.Equal(t, ErrInvalidCredentials, err)

	oauthUser, err := s.FindOrCreateOAuthUser(ctx, OAuthProfile{Provider: ProviderGoogle, Subject: "g-1", Email: "carol@example.com"})
	require.Nil(t, err)
	require.True(t, oauthUser.IsOAuthOnly())
	_, err = s.Authenticate(ctx, "carol@example.com", "")
	assert.Equal(t, ErrInvalidCredentials, err)
}

func TestFindOrCreateOAuthUser(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()

	created, err := s.FindOrCreateOAuthUser(ctx, OAuthProfile{
		Provider:  ProviderFacebook,
		Subject:   "fb-42",
		Firstname: "Dan",
		Lastname:  "Brown",
	})
	require.Nil(t, err)
	assert.Equal(t, "fb-42", *created.Facebook)
	assert.Nil(t, created.Email)
	assert.Equal(t, "Dan Brown", created.Fullname)
	assert.Equal(t, model.DefaultUserImage, created.Image)
	assert.Equal(t, model.DefaultWallet, created.Wallet)

	again, err := s.FindOrCreateOAuthUser(ctx, OAuthProfile{Provider: ProviderFacebook, Subject: "fb-42"})
	require.Nil(t, err)
	assert.Equal(t, created.Id, again.Id)

	// A local account with the same email gets the google identity linked.
	local, err := s.Register(ctx, RegisterInput{Email: "erin@example.com", Password: "abcdef", ConfirmPassword: "abcdef"})
	require.Nil(t, err)
	linked, err := s.FindOrCreateOAuthUser(ctx, OAuthProfile{Provider: ProviderGoogle, Subject: "g-7", Email: "Erin@example.com"})
	require.Nil(t, err)
	assert.Equal(t, local.Id, linked.Id)
	var reloaded model.User
	require.Nil(t, db.Where("id = ?", local.Id).First(&reloaded).Error)
	require.NotNil(t, reloaded.Google)
	assert.Equal(t, "g-7", *reloaded.Google)

	var count int64
	db.Model(&model.User{}).Count(&count)
	assert.Equal(t, int64(2), count)

	_, err = s.FindOrCreateOAuthUser(ctx, OAuthProfile{Provider: "myspace", Subject: "x"})
	assert.Equal(t, ErrUnknownProvider, err)
}

func TestUpdateProfileIgnoresEmptyFields(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()
	user := utils.TestCreateUser(t, db, "frank")

	updated, err := s.UpdateProfile(ctx, user.Id, ProfileInput{City: "Kigali", Age: 30})
	require.Nil(t, err)
	assert.Equal(t, "Kigali", updated.City)
	assert.Equal(t, 30, updated.Age)
	assert.Equal(t, "frank", updated.Fullname)
	assert.Equal(t, model.DefaultUserAbout, updated.About)

	updated, err = s.UpdateProfile(ctx, user.Id, ProfileInput{Firstname: "Frank", Lastname: "Ocean"})
	require.Nil(t, err)
	assert.Equal(t, "Frank Ocean", updated.Fullname)
	assert.Equal(t, "Kigali", updated.City)
	assert.Equal(t, user.Wallet, updated.Wallet)

	_, err = s.UpdateProfile(ctx, "missing", ProfileInput{City: "x"})
	assert.Equal(t, ErrUserNotFound, err)
}

func TestPictures(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()
	owner := utils.TestCreateUser(t, db, "gina")
	other := utils.TestCreateUser(t, db, "hank")

	require.Nil(t, s.SetAvatar(ctx, owner.Id, "https://cdn/avatar.png"))
	assert.Equal(t, ErrUserNotFound, s.SetAvatar(ctx, "missing", "x"))

	picture, err := s.AddPicture(ctx, owner.Id, "https://cdn/1.png")
	require.Nil(t, err)
	_, err = s.AddPicture(ctx, owner.Id, "https://cdn/2.png")
	require.Nil(t, err)

	user, err := s.GetUser(ctx, owner.Id)
	require.Nil(t, err)
	assert.Equal(t, "https://cdn/avatar.png", user.Image)
	assert.Len(t, user.Pictures, 2)

	assert.Equal(t, ErrPictureNotFound, s.DeletePicture(ctx, other.Id, picture.Id))
	require.Nil(t, s.DeletePicture(ctx, owner.Id, picture.Id))

	user, err = s.GetUser(ctx, owner.Id)
	require.Nil(t, err)
	assert.Len(t, user.Pictures, 1)

	_, err = s.GetUser(ctx, "missing")
	assert.Equal(t, ErrUserNotFound, err)
}

func TestListSinglesAndOnline(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()
	me := utils.TestCreateUser(t, db, "ivy")
	utils.TestCreateUser(t, db, "jack")
	utils.TestCreateUser(t, db, "kate")

	singles, err := s.ListSingles(ctx, me.Id)
	require.Nil(t, err)
	assert.Len(t, singles, 2)
	for _, u := range singles {
		assert.NotEqual(t, me.Id, u.Id)
	}

	require.Nil(t, s.SetOnline(ctx, me.Id, true))
	user, err := s.GetUser(ctx, me.Id)
	require.Nil(t, err)
	assert.True(t, user.Online)
}

func TestDeleteAccountDoesNotCascade(t *testing.T) {
	s, db := newTestService(t)
	ctx := context.Background()
	leaving := utils.TestCreateUser(t, db, "leo")
	staying := utils.TestCreateUser(t, db, "mia")

	conversation := model.Conversation{
		Id:         "conversation",
		SenderID:   leaving.Id,
		ReceiverID: staying.Id,
		PairKey:    model.ConversationPairKey(leaving.Id, staying.Id),
	}
	require.Nil(t, db.Create(&conversation).Error)
	require.Nil(t, db.Create(&model.Friend{Id: "f1", UserID: staying.Id, FriendID: leaving.Id}).Error)
	require.Nil(t, db.Create(&model.Friend{Id: "f2", UserID: leaving.Id, FriendID: staying.Id}).Error)
	require.Nil(t, db.Create(&model.Smile{Id: "s1", SenderID: leaving.Id, ReceiverID: staying.Id, SenderSent: true}).Error)
	_, err := s.AddPicture(ctx, leaving.Id, "https://cdn/x.png")
	require.Nil(t, err)

	require.Nil(t, s.DeleteAccount(ctx, leaving.Id))
	assert.Equal(t, ErrUserNotFound, s.DeleteAccount(ctx, leaving.Id))

	_, err = s.GetUser(ctx, leaving.Id)
	assert.Equal(t, ErrUserNotFound, err)

	var count int64
	db.Model(&model.Conversation{}).Where("id = ?", conversation.Id).Count(&count)
	assert.Equal(t, int64(1), count)
	db.Model(&model.Picture{}).Count(&count)
	assert.Equal(t, int64(0), count)

	// Only the leaving user's own friend list is removed.
	var friends []model.Friend
	require.Nil(t, db.Find(&friends).Error)
	require.Len(t, friends, 1)
	assert.Equal(t, "f1", friends[0].Id)
	db.Model(&model.Smile{}).Where("id = ?", "s1").Count(&count)
	assert.Equal(t, int64(1), count)
}
