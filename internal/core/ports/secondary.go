// Package ports declares the collaborator interfaces the router's Targets
// are built against (§9: "explicit interface types; constructor-inject the
// dependency graph"), plus the request/response shapes those Targets speak.
package ports

import (
	"context"
	"time"

	"github.com/antimatter-studios/cognito-local/internal/core/domain"
)

// --- DATA STORE (§4.1) ---

// DataStore represents a single JSON document persisted to one file.
// Keys are an ordered path of strings identifying a nested object path;
// a single top-level string is just a one-element path.
type DataStore interface {
	Get(ctx context.Context, key []string, def any) (any, error)
	Set(ctx context.Context, key []string, value any) error
	Delete(ctx context.Context, key []string) error
	GetRoot(ctx context.Context) (map[string]any, error)
}

// DataStoreFactory maintains a process-wide cache of DataStore instances,
// at most one per id, because each DataStore serializes its own writes.
type DataStoreFactory interface {
	Create(ctx context.Context, id string, defaults map[string]any) (DataStore, error)
	Get(ctx context.Context, id string) (DataStore, error)
	Delete(ctx context.Context, id string) error
}

// --- CLOCK & OTP ---

// Clock abstracts process time so tests can control it.
type Clock interface {
	Now() time.Time
}

// OTPGenerator produces one-time confirmation/MFA codes.
type OTPGenerator interface {
	Generate() string
}

// --- LAMBDA / TRIGGERS (§4.4) ---

// TriggerName identifies one of the supported lambda hooks.
type TriggerName string

const (
	TriggerPreSignUp          TriggerName = "PreSignUp"
	TriggerPostConfirmation   TriggerName = "PostConfirmation"
	TriggerPostAuthentication TriggerName = "PostAuthentication"
	TriggerUserMigration      TriggerName = "UserMigration"
	TriggerCustomMessage      TriggerName = "CustomMessage"
	TriggerPreTokenGeneration TriggerName = "PreTokenGeneration"
)

// Lambda invokes external trigger code synchronously (RequestResponse).
type Lambda interface {
	Invoke(ctx context.Context, trigger TriggerName, event LambdaEvent) (map[string]any, error)
}

// LambdaEvent is the structured envelope handed to Lambda.Invoke. Source
// is one of the ~20 published trigger-source strings (e.g.
// "PreSignUp_SignUp"); the CallerContext and envelope fields are
// synthesized by Lambda.Invoke itself, not by the caller.
type LambdaEvent struct {
	Source          string
	ClientId        string
	UserPoolId      string
	Username        string
	UserAttributes  map[string]string
	ValidationData  map[string]string
	ClientMetadata  map[string]string
	Password        string
	CodeParameter   string
	UsernameParam   string
	Extra           map[string]any
}

// Triggers adapts ergonomic caller arguments into LambdaEvent envelopes
// and probes whether a given hook is configured at all.
type Triggers interface {
	Enabled(name TriggerName) bool

	PreSignUp(ctx context.Context, in PreSignUpInput) (PreSignUpOutput, error)
	PostConfirmation(ctx context.Context, in PostConfirmationInput) error
	PostAuthentication(ctx context.Context, in PostAuthenticationInput) error
	UserMigration(ctx context.Context, in UserMigrationInput) (*domain.User, error)
	CustomMessage(ctx context.Context, in CustomMessageInput) (CustomMessageOutput, error)
	PreTokenGeneration(ctx context.Context, in PreTokenGenerationInput) (PreTokenGenerationOutput, error)
}

type PreSignUpInput struct {
	ClientId       string
	Source         string // "PreSignUp_SignUp" | "PreSignUp_AdminCreateUser"
	Username       string
	UserPoolId     string
	UserAttributes map[string]string
	ClientMetadata map[string]string
	ValidationData map[string]string
}

type PreSignUpOutput struct {
	AutoConfirmUser bool
	AutoVerifyEmail bool
	AutoVerifyPhone bool
}

type PostConfirmationInput struct {
	ClientId       string
	Source         string
	Username       string
	UserPoolId     string
	UserAttributes map[string]string
	ClientMetadata map[string]string
}

type PostAuthenticationInput struct {
	ClientId       string
	Username       string
	UserPoolId     string
	UserAttributes map[string]string
	ClientMetadata map[string]string
}

type UserMigrationInput struct {
	ClientId       string
	Username       string
	Password       string
	UserPoolId     string
	ClientMetadata map[string]string
	ValidationData map[string]string // documented swap: receives the caller's ClientMetadata
}

type CustomMessageInput struct {
	ClientId       string
	Source         string // "CustomMessage_<Source>"
	Username       string
	UserPoolId     string
	UserAttributes map[string]string
	ClientMetadata map[string]string
	CodeParameter  string
}

type CustomMessageOutput struct {
	SMSMessage   string
	EmailMessage string
	EmailSubject string
}

type PreTokenGenerationInput struct {
	ClientId       string
	Username       string
	UserPoolId     string
	UserAttributes map[string]string
	ClientMetadata map[string]string
}

type PreTokenGenerationOutput struct {
	ClaimsToAddOrOverride map[string]any
	ClaimsToSuppress      []string
}

// --- MESSAGES (§4.6) ---

// DeliveryDetails describes where a code/message was sent, echoed back to
// callers as CodeDeliveryDetails.
type DeliveryDetails struct {
	AttributeName  string
	DeliveryMedium string
	Destination    string
}

// MessageDelivery is the pluggable sink a rendered message is handed to.
type MessageDelivery interface {
	Deliver(ctx context.Context, details DeliveryDetails, message string) error
}

// Messages renders and dispatches confirmation/MFA codes.
type Messages interface {
	Deliver(
		ctx context.Context,
		source string,
		clientId string,
		userPoolId string,
		user *domain.User,
		code string,
		clientMetadata map[string]string,
		details DeliveryDetails,
	) error
}

// --- TOKENS (§4.5) ---

// TokenParams is the input to TokenGenerator.Issue.
type TokenParams struct {
	ClientId          string
	UserPoolId        string
	User              *domain.User
	Source            string // e.g. "Authentication"
	ClientMetadata    map[string]string
	IncludeRefreshToken bool
}

// Tokens is the {AccessToken, IdToken, RefreshToken} triple. RefreshToken
// is empty when the caller did not request one (refresh flow).
type Tokens struct {
	AccessToken  string
	IdToken      string
	RefreshToken string
}

// TokenGenerator issues signed id/access/refresh tokens.
type TokenGenerator interface {
	Issue(ctx context.Context, params TokenParams) (Tokens, error)
	Validate(ctx context.Context, accessToken string) (AccessClaims, error)
}

// AccessClaims is what a Target needs back out of an access token to
// resolve the caller's pool and user (GetUser, ChangePassword, the
// attribute mutators, ...).
type AccessClaims struct {
	Sub        string
	Username   string
	ClientId   string
	UserPoolId string
}

// --- DOMAIN EVENTS (supplemented feature, see SPEC_FULL.md) ---

// DomainEventPublisher publishes lifecycle events best-effort; failures
// are logged, never surfaced to the caller.
type DomainEventPublisher interface {
	Publish(ctx context.Context, eventType string, payload map[string]any) error
}

// --- USER POOL SERVICE & COGNITO SERVICE (§4.2) ---

// UserPoolService owns one pool's document.
type UserPoolService interface {
	Pool() *domain.UserPool
	SavePool(ctx context.Context) error

	CreateAppClient(ctx context.Context, name string) (*domain.AppClient, error)

	SaveUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, user *domain.User) error
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByRefreshToken(ctx context.Context, token string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)

	SaveGroup(ctx context.Context, group *domain.Group) error
	ListGroups(ctx context.Context) ([]*domain.Group, error)

	StoreRefreshToken(ctx context.Context, token string, user *domain.User) error
	RevokeRefreshToken(ctx context.Context, token string, user *domain.User) error
}

// CognitoService is the registry of UserPools.
type CognitoService interface {
	GetUserPool(ctx context.Context, poolId string) (UserPoolService, error)
	GetUserPoolForClientId(ctx context.Context, clientId string) (UserPoolService, error)
	CreateUserPool(ctx context.Context, pool *domain.UserPool) (UserPoolService, error)
	DeleteUserPool(ctx context.Context, pool *domain.UserPool) error
	ListUserPools(ctx context.Context) ([]*domain.UserPool, error)

	GetAppClient(ctx context.Context, clientId string) (*domain.AppClient, error)
	DeleteAppClient(ctx context.Context, client *domain.AppClient) error
}
