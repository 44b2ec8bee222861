package account

import (
	"context"
	"strings"
	"time"

	"github.com/Luismorlan/rambagiza/model"
	Logger "github.com/Luismorlan/rambagiza/utils/log"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	MinPasswordLength = 5

	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrPictureNotFound    = errors.New("picture not found")
	ErrMissingEmail       = errors.New("email is required")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrPasswordTooShort   = errors.New("password must be at least 5 characters")
	ErrEmailTaken         = errors.New("this email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnknownProvider    = errors.New("unknown oauth provider")
)

type RegisterInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	Firstname       string
	Lastname        string
}

// OAuthProfile is what a provider tells us about the person logging in.
type OAuthProfile struct {
	Provider  string
	Subject   string
	Email     string
	Firstname string
	Lastname  string
	Fullname  string
	Image     string
}

// ProfileInput holds editable profile fields. Zero values are left untouched.
type ProfileInput struct {
	Firstname string
	Lastname  string
	Fullname  string
	Country   string
	City      string
	Area      string
	Age       int
	Gender    string
	About     string
}

type Service struct {
	DB         *gorm.DB
	BcryptCost int
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db, BcryptCost: bcrypt.DefaultCost}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func fullname(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, ErrMissingEmail
	}
	if in.Password != in.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	if len(in.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	db := s.DB.WithContext(ctx)
	var existing model.User
	result := db.Where("email = ?", email).Limit(1).Find(&existing)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "fail to look up email")
	}
	if result.RowsAffected != 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.BcryptCost)
	if err != nil {
		return nil, errors.Wrap(err, "fail to hash password")
	}
	passwordHash := string(hash)
	user := &model.User{
		Id:           uuid.New().String(),
		Email:        &email,
		PasswordHash: &passwordHash,
		Firstname:    in.Firstname,
		Lastname:     in.Lastname,
		Fullname:     fullname(in.Firstname, in.Lastname),
		Image:        model.DefaultUserImage,
		About:        model.DefaultUserAbout,
		Wallet:       model.DefaultWallet,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, errors.Wrap(err, "fail to create user")
	}
	Logger.Log.Infof("user %s registered", user.Id)
	return user, nil
}

func (s *Service) Authenticate(ctx context.Context, email string, password string) (*model.User, error) {
	var user model.User
	result := s.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).Limit(1).Find(&user)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "fail to look up user")
	}
	if result.RowsAffected == 0 || user.IsOAuthOnly() {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func providerColumn(provider string) (string, error) {
	switch provider {
	case ProviderGoogle:
		return "google", nil
	case ProviderFacebook:
		return "facebook", nil
	}
	return "", ErrUnknownProvider
}

// FindOrCreateOAuthUser matches on the provider subject first, then links an
// existing account with the same email, otherwise signs the person up.
func (s *Service) FindOrCreateOAuthUser(ctx context.Context, p OAuthProfile) (*model.User, error) {
	column, err := providerColumn(p.Provider)
	if err != nil {
		return nil, err
	}
	if p.Subject == "" {
		return nil, errors.New("oauth profile without subject")
	}
	db := s.DB.WithContext(ctx)

	var user model.User
	result := db.Where(column+" = ?", p.Subject).Limit(1).Find(&user)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "fail to look up oauth user")
	}
	if result.RowsAffected != 0 {
		return &user, nil
	}

	email := normalizeEmail(p.Email)
	if email != "" {
		result = db.Where("email = ?", email).Limit(1).Find(&user)
		if result.Error != nil {
			return nil, errors.Wrap(result.Error, "fail to look up user by email")
		}
		if result.RowsAffected != 0 {
			if err := db.Model(&user).Update(column, p.Subject).Error; err != nil {
				return nil, errors.Wrap(err, "fail to link oauth identity")
			}
			return &user, nil
		}
	}

	subject := p.Subject
	user = model.User{
		Id:        uuid.New().String(),
		Firstname: p.Firstname,
		Lastname:  p.Lastname,
		Fullname:  p.Fullname,
		Image:     p.Image,
		About:     model.DefaultUserAbout,
		Wallet:    model.DefaultWallet,
	}
	if email != "" {
		user.Email = &email
	}
	if user.Fullname == "" {
		user.Fullname = fullname(p.Firstname, p.Lastname)
	}
	if user.Image == "" {
		user.Image = model.DefaultUserImage
	}
	switch p.Provider {
	case ProviderGoogle:
		user.Google = &subject
	case ProviderFacebook:
		user.Facebook = &subject
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, errors.Wrap(err, "fail to create oauth user")
	}
	Logger.Log.Infof("user %s signed up with %s", user.Id, p.Provider)
	return &user, nil
}

// GetUser loads a user with their pictures.
func (s *Service) GetUser(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	result := s.DB.WithContext(ctx).
		Preload("Pictures", func(db *gorm.DB) *gorm.DB {
			return db.Order("uploaded_at DESC")
		}).
		Where("id = ?", id).Limit(1).Find(&user)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "fail to get user")
	}
	if result.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// ListSingles lists every member but exceptID, newest first.
func (s *Service) ListSingles(ctx context.Context, exceptID string) ([]model.User, error) {
	var users []model.User
	err := s.DB.WithContext(ctx).
		Where("id <> ?", exceptID).
		Order("created_at DESC").
		Find(&users).Error
	return users, errors.Wrap(err, "fail to list users")
}

func (s *Service) UpdateProfile(ctx context.Context, id string, in ProfileInput) (*model.User, error) {
	db := s.DB.WithContext(ctx)
	var user model.User
	result := db.Where("id = ?", id).Limit(1).Find(&user)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "fail to get user")
	}
	if result.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}
	if err := copier.CopyWithOption(&user, &in, copier.Option{IgnoreEmpty: true}); err != nil {
		return nil, errors.Wrap(err, "fail to copy profile")
	}
	if in.Fullname == "" && (in.Firstname != "" || in.Lastname != "") {
		user.Fullname = fullname(user.Firstname, user.Lastname)
	}
	if err := db.Save(&user).Error; err != nil {
		return nil, errors.Wrap(err, "fail to save profile")
	}
	return &user, nil
}

func (s *Service) SetAvatar(ctx context.Context, id string, url string) error {
	result := s.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("image", url)
	if result.Error != nil {
		return errors.Wrap(result.Error, "fail to set avatar")
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *Service) AddPicture(ctx context.Context, userID string, url string) (*model.Picture, error) {
	picture := &model.Picture{
		Id:         uuid.New().String(),
		UserID:     userID,
		Url:        url,
		UploadedAt: time.Now().UTC(),
	}
	if err := s.DB.WithContext(ctx).Create(picture).Error; err != nil {
		return nil, errors.Wrap(err, "fail to add picture")
	}
	return picture, nil
}

// DeletePicture removes a picture owned by userID.
func (s *Service) DeletePicture(ctx context.Context, userID string, pictureID string) error {
	result := s.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", pictureID, userID).
		Delete(&model.Picture{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "fail to delete picture")
	}
	if result.RowsAffected == 0 {
		return ErrPictureNotFound
	}
	return nil
}

func (s *Service) SetOnline(ctx context.Context, id string, online bool) error {
	err := s.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).UpdateColumn("online", online).Error
	return errors.Wrap(err, "fail to set online flag")
}

// DeleteAccount removes the user together with their own picture and friend
// lists. Nothing owned by other users is touched: entries on other friend
// lists, smiles, conversations and posts stay and point at a missing user.
func (s *Service) DeleteAccount(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&model.Picture{}).Error; err != nil {
			return errors.Wrap(err, "fail to delete pictures")
		}
		if err := tx.Where("user_id = ?", id).Delete(&model.Friend{}).Error; err != nil {
			return errors.Wrap(err, "fail to delete friend list")
		}
		result := tx.Where("id = ?", id).Delete(&model.User{})
		if result.Error != nil {
			return errors.Wrap(result.Error, "fail to delete user")
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		Logger.Log.Infof("user %s deleted their account", id)
		return nil
	})
}
