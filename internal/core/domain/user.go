package domain

import (
	"time"

	"github.com/google/uuid"
)

// User statuses, per the documented Cognito status machine.
const (
	UserStatusUnconfirmed         = "UNCONFIRMED"
	UserStatusConfirmed           = "CONFIRMED"
	UserStatusForceChangePassword = "FORCE_CHANGE_PASSWORD"
	UserStatusResetRequired       = "RESET_REQUIRED"
	UserStatusArchived            = "ARCHIVED"
	UserStatusUnknown             = "UNKNOWN"
)

// Attribute is one {Name, Value} pair on a User. Order is preserved as
// callers supplied it, except for "sub" which is always prepended.
type Attribute struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

// MFAOption describes one enrolled MFA delivery channel. Only SMS over
// phone_number is supported, per spec.
type MFAOption struct {
	DeliveryMedium string `json:"DeliveryMedium"`
	AttributeName  string `json:"AttributeName"`
}

// User is a user scoped to one UserPool, identified by Username.
type User struct {
	Username                  string      `json:"Username"`
	Attributes                []Attribute `json:"Attributes"`
	Password                  string      `json:"Password"`
	UserStatus                string      `json:"UserStatus"`
	Enabled                   bool        `json:"Enabled"`
	MFAOptions                []MFAOption `json:"MFAOptions,omitempty"`
	ConfirmationCode          string      `json:"ConfirmationCode,omitempty"`
	MFACode                   string      `json:"MFACode,omitempty"`
	AttributeVerificationCode string      `json:"AttributeVerificationCode,omitempty"`
	RefreshTokens             []string    `json:"RefreshTokens"`
	UserCreateDate            time.Time   `json:"UserCreateDate"`
	UserLastModifiedDate      time.Time   `json:"UserLastModifiedDate"`
}

// NewUser builds a freshly onboarded user. The sub attribute is generated
// here and prepended so it is always the first attribute, and is the one
// place a User's identity is minted — mirroring how the teacher's
// domain.NewUser mints User.ID at construction, not at the persistence
// boundary.
func NewUser(username string, password string, attributes []Attribute, now time.Time) *User {
	if username == "" {
		username = uuid.NewString()
	}
	all := make([]Attribute, 0, len(attributes)+1)
	all = append(all, Attribute{Name: "sub", Value: uuid.NewString()})
	all = append(all, attributes...)

	return &User{
		Username:             username,
		Attributes:           all,
		Password:             password,
		UserStatus:           UserStatusUnconfirmed,
		Enabled:              true,
		RefreshTokens:        []string{},
		UserCreateDate:       now,
		UserLastModifiedDate: now,
	}
}

// Sub returns the user's immutable sub attribute.
func (u *User) Sub() string {
	v, _ := u.Attribute("sub")
	return v
}

// Attribute returns the value of the named attribute, if present.
func (u *User) Attribute(name string) (string, bool) {
	for _, a := range u.Attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttribute upserts an attribute value, preserving its position if it
// already exists, else appending it.
func (u *User) SetAttribute(name, value string) {
	for i, a := range u.Attributes {
		if a.Name == name {
			u.Attributes[i].Value = value
			return
		}
	}
	u.Attributes = append(u.Attributes, Attribute{Name: name, Value: value})
}

// DeleteAttribute removes the named attribute, if present.
func (u *User) DeleteAttribute(name string) {
	for i, a := range u.Attributes {
		if a.Name == name {
			u.Attributes = append(u.Attributes[:i], u.Attributes[i+1:]...)
			return
		}
	}
}

// AttributesAsMap flattens the attribute list, last write wins, used when
// a target needs to hand attributes to a trigger event or to the
// NEW_PASSWORD_REQUIRED challenge's userAttributes field.
func (u *User) AttributesAsMap() map[string]string {
	m := make(map[string]string, len(u.Attributes))
	for _, a := range u.Attributes {
		m[a.Name] = a.Value
	}
	return m
}

// Touch bumps UserLastModifiedDate. Callers are responsible for calling
// this before Save, per spec §4.2 (saveUser does not do it implicitly).
func (u *User) Touch(now time.Time) {
	u.UserLastModifiedDate = now
}

// HasSMSMFAOption reports whether the user has an SMS MFA option bound
// to phone_number, the only supported combination.
func (u *User) HasSMSMFAOption() bool {
	for _, m := range u.MFAOptions {
		if m.DeliveryMedium == "SMS" && m.AttributeName == "phone_number" {
			return true
		}
	}
	return false
}
