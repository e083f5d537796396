package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MFA configuration values for a UserPool.
const (
	MfaOff      = "OFF"
	MfaOptional = "OPTIONAL"
	MfaOn       = "ON"
)

// SchemaAttribute describes one permitted user attribute.
type SchemaAttribute struct {
	Name    string `json:"Name"`
	Mutable bool   `json:"Mutable"`
}

// UserPool is the top-level tenant.
type UserPool struct {
	Id                     string            `json:"Id"`
	Name                   string            `json:"Name"`
	UsernameAttributes     []string          `json:"UsernameAttributes,omitempty"`
	AutoVerifiedAttributes []string          `json:"AutoVerifiedAttributes,omitempty"`
	MfaConfiguration       string            `json:"MfaConfiguration"`
	SchemaAttributes       []SchemaAttribute `json:"SchemaAttributes"`
	SmsVerificationMessage string            `json:"SmsVerificationMessage,omitempty"`
	SmsConfiguration       json.RawMessage   `json:"SmsConfiguration,omitempty"`
	CreationDate           time.Time         `json:"CreationDate"`
	LastModifiedDate       time.Time         `json:"LastModifiedDate"`
}

// NewUserPool applies documented defaults for any field the caller left
// zero, then mints an Id if the caller didn't supply one.
func NewUserPool(id, name string, now time.Time) *UserPool {
	if id == "" {
		id = "local_" + uuid.NewString()[:8]
	}
	return &UserPool{
		Id:               id,
		Name:             name,
		MfaConfiguration: MfaOff,
		SchemaAttributes: defaultSchemaAttributes(),
		CreationDate:     now,
		LastModifiedDate: now,
	}
}

func defaultSchemaAttributes() []SchemaAttribute {
	return []SchemaAttribute{
		{Name: "sub", Mutable: false},
		{Name: "email", Mutable: true},
		{Name: "email_verified", Mutable: true},
		{Name: "phone_number", Mutable: true},
		{Name: "phone_number_verified", Mutable: true},
		{Name: "name", Mutable: true},
	}
}

// HasUsernameAttribute reports whether the given alias attribute may
// stand in for Username at sign-in.
func (p *UserPool) HasUsernameAttribute(attr string) bool {
	for _, a := range p.UsernameAttributes {
		if a == attr {
			return true
		}
	}
	return false
}

// HasAutoVerifiedAttribute reports whether the pool auto-sends a
// confirmation code to the given channel on sign-up.
func (p *UserPool) HasAutoVerifiedAttribute(attr string) bool {
	for _, a := range p.AutoVerifiedAttributes {
		if a == attr {
			return true
		}
	}
	return false
}

// SchemaFor looks up the schema entry for an attribute name.
func (p *UserPool) SchemaFor(name string) (SchemaAttribute, bool) {
	for _, s := range p.SchemaAttributes {
		if s.Name == name {
			return s, true
		}
	}
	return SchemaAttribute{}, false
}

// AppClient is a credential holder scoped to exactly one UserPool.
type AppClient struct {
	ClientId             string    `json:"ClientId"`
	ClientName           string    `json:"ClientName"`
	UserPoolId           string    `json:"UserPoolId"`
	RefreshTokenValidity int       `json:"RefreshTokenValidity"`
	CreationDate         time.Time `json:"CreationDate"`
	LastModifiedDate     time.Time `json:"LastModifiedDate"`
}

// NewAppClient mints a ClientId and applies the documented 30-day default
// refresh token validity.
func NewAppClient(name, userPoolId string, now time.Time) *AppClient {
	return &AppClient{
		ClientId:             uuid.NewString(),
		ClientName:           name,
		UserPoolId:           userPoolId,
		RefreshTokenValidity: 30,
		CreationDate:         now,
		LastModifiedDate:     now,
	}
}

// Group is scoped to one UserPool, identified by GroupName.
type Group struct {
	GroupName        string    `json:"GroupName"`
	UserPoolId       string    `json:"UserPoolId"`
	Description      string    `json:"Description,omitempty"`
	Precedence       int       `json:"Precedence,omitempty"`
	RoleArn          string    `json:"RoleArn,omitempty"`
	CreationDate     time.Time `json:"CreationDate"`
	LastModifiedDate time.Time `json:"LastModifiedDate"`
}
