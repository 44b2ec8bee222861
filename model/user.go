package model

import "time"

const (
	DefaultUserImage = "/static/images/user.svg"
	DefaultUserAbout = "Actively seeking for relationship"
	// Every new account starts with a few free chat messages.
	DefaultWallet = 3
)

/*

User is a member of the site, either registered locally or through OAuth

Id: primary key, use to identify a user
CreatedAt: time when entity is created
UpdatedAt: time when entity is updated

Email: login email, nil when the OAuth provider did not share one
Facebook / Google: OAuth subject id for the provider, nil if never linked
PasswordHash: bcrypt hash, nil for OAuth-only accounts

Firstname, Lastname, Fullname, Image, Country, City, Area, Age, Gender, About:
	profile fields rendered on the profile pages

Online: true while the user has at least one live socket
Wallet: chat credit balance, one unit per message sent. It is not floored at 0.
Friends: the user's friend list, "has-many" relation. An entry is added when
	someone else sends this user a request.
Pictures: uploaded pictures, "has-many" relation
*/
type User struct {
	Id           string `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Email        *string `gorm:"uniqueIndex"`
	Facebook     *string `gorm:"uniqueIndex"`
	Google       *string `gorm:"uniqueIndex"`
	PasswordHash *string `json:"-"`
	Firstname    string
	Lastname     string
	Fullname     string
	Image        string
	Country      string
	City         string
	Area         string
	Age          int
	Gender       string
	About        string
	Online       bool
	Wallet       int
	Friends      []Friend  `gorm:"foreignKey:UserID;"`
	Pictures     []Picture `gorm:"foreignKey:UserID;"`
}

// DisplayName returns the best available name to show for the user.
func (u *User) DisplayName() string {
	if u.Fullname != "" {
		return u.Fullname
	}
	if u.Firstname != "" || u.Lastname != "" {
		return u.Firstname + " " + u.Lastname
	}
	if u.Email != nil {
		return *u.Email
	}
	return u.Id
}

// IsOAuthOnly is true when the account cannot log in with a password.
func (u *User) IsOAuthOnly() bool {
	return u.PasswordHash == nil
}

/*

Picture is an image uploaded by a user to their gallery

UserID: owner, "belongs-to" relation
Url: public url returned by the object store
UploadedAt: time of the upload
*/
type Picture struct {
	Id         string `gorm:"primaryKey"`
	UserID     string `gorm:"index"`
	Url        string
	UploadedAt time.Time
}
