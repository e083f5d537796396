package ports

import "github.com/antimatter-studios/cognito-local/internal/core/domain"

// OperationName is the X-Amz-Target operation suffix, the Router's
// dispatch key (§4.7, §9: "tagged variants over dynamic dispatch").
type OperationName string

const (
	OpAdminConfirmSignUp            OperationName = "AdminConfirmSignUp"
	OpAdminCreateUser                OperationName = "AdminCreateUser"
	OpAdminDeleteUser                OperationName = "AdminDeleteUser"
	OpAdminDeleteUserAttributes      OperationName = "AdminDeleteUserAttributes"
	OpAdminGetUser                   OperationName = "AdminGetUser"
	OpAdminInitiateAuth              OperationName = "AdminInitiateAuth"
	OpAdminSetUserPassword           OperationName = "AdminSetUserPassword"
	OpAdminUpdateUserAttributes      OperationName = "AdminUpdateUserAttributes"
	OpChangePassword                 OperationName = "ChangePassword"
	OpConfirmForgotPassword          OperationName = "ConfirmForgotPassword"
	OpConfirmSignUp                  OperationName = "ConfirmSignUp"
	OpCreateGroup                    OperationName = "CreateGroup"
	OpCreateUserPool                 OperationName = "CreateUserPool"
	OpCreateUserPoolClient           OperationName = "CreateUserPoolClient"
	OpDeleteUser                     OperationName = "DeleteUser"
	OpDeleteUserAttributes           OperationName = "DeleteUserAttributes"
	OpDeleteUserPool                 OperationName = "DeleteUserPool"
	OpDeleteUserPoolClient           OperationName = "DeleteUserPoolClient"
	OpDescribeUserPool               OperationName = "DescribeUserPool"
	OpDescribeUserPoolClient         OperationName = "DescribeUserPoolClient"
	OpForgotPassword                 OperationName = "ForgotPassword"
	OpGetUser                        OperationName = "GetUser"
	OpGetUserAttributeVerificationCode OperationName = "GetUserAttributeVerificationCode"
	OpGetUserPoolMfaConfig           OperationName = "GetUserPoolMfaConfig"
	OpInitiateAuth                   OperationName = "InitiateAuth"
	OpListGroups                     OperationName = "ListGroups"
	OpListUserPools                  OperationName = "ListUserPools"
	OpListUsers                      OperationName = "ListUsers"
	OpRespondToAuthChallenge         OperationName = "RespondToAuthChallenge"
	OpRevokeToken                    OperationName = "RevokeToken"
	OpSignUp                         OperationName = "SignUp"
	OpUpdateUserAttributes           OperationName = "UpdateUserAttributes"
	OpVerifyUserAttribute            OperationName = "VerifyUserAttribute"
)

// CodeDeliveryDetails mirrors the wire shape returned alongside a
// dispatched confirmation/MFA code.
type CodeDeliveryDetails struct {
	AttributeName  string `json:"AttributeName,omitempty"`
	DeliveryMedium string `json:"DeliveryMedium,omitempty"`
	Destination    string `json:"Destination,omitempty"`
}

// --- SignUp / confirmation family ---

type SignUpRequest struct {
	ClientId       string              `json:"ClientId" validate:"required"`
	Username       string              `json:"Username"`
	Password       string              `json:"Password" validate:"required"`
	UserAttributes []domain.Attribute  `json:"UserAttributes"`
	ValidationData []domain.Attribute  `json:"ValidationData,omitempty"`
	ClientMetadata map[string]string   `json:"ClientMetadata,omitempty"`
}

type SignUpResponse struct {
	UserConfirmed       bool                 `json:"UserConfirmed"`
	UserSub             string               `json:"UserSub"`
	CodeDeliveryDetails *CodeDeliveryDetails `json:"CodeDeliveryDetails,omitempty"`
}

type ConfirmSignUpRequest struct {
	ClientId         string `json:"ClientId" validate:"required"`
	Username         string `json:"Username" validate:"required"`
	ConfirmationCode string `json:"ConfirmationCode" validate:"required"`
	ClientMetadata   map[string]string `json:"ClientMetadata,omitempty"`
}

type ConfirmSignUpResponse struct{}

type AdminConfirmSignUpRequest struct {
	UserPoolId     string            `json:"UserPoolId" validate:"required"`
	Username       string            `json:"Username" validate:"required"`
	ClientMetadata map[string]string `json:"ClientMetadata,omitempty"`
}

type AdminConfirmSignUpResponse struct{}

// --- Forgot password family ---

type ForgotPasswordRequest struct {
	ClientId       string            `json:"ClientId" validate:"required"`
	Username       string            `json:"Username" validate:"required"`
	ClientMetadata map[string]string `json:"ClientMetadata,omitempty"`
}

type ForgotPasswordResponse struct {
	CodeDeliveryDetails *CodeDeliveryDetails `json:"CodeDeliveryDetails,omitempty"`
}

type ConfirmForgotPasswordRequest struct {
	ClientId         string `json:"ClientId" validate:"required"`
	Username         string `json:"Username" validate:"required"`
	ConfirmationCode string `json:"ConfirmationCode" validate:"required"`
	Password         string `json:"Password" validate:"required"`
}

type ConfirmForgotPasswordResponse struct{}

// --- Auth family ---

type InitiateAuthRequest struct {
	ClientId       string            `json:"ClientId" validate:"required"`
	AuthFlow       string            `json:"AuthFlow" validate:"required"`
	AuthParameters map[string]string `json:"AuthParameters"`
	ClientMetadata map[string]string `json:"ClientMetadata,omitempty"`
}

// AuthResult carries the shapes an auth flow can respond with: a final
// token set, or a named challenge awaiting a follow-up.
type AuthResult struct {
	ChallengeName       string               `json:"ChallengeName,omitempty"`
	Session             string               `json:"Session,omitempty"`
	ChallengeParameters map[string]string    `json:"ChallengeParameters,omitempty"`
	AuthenticationResult *AuthenticationResult `json:"AuthenticationResult,omitempty"`
}

type AuthenticationResult struct {
	AccessToken  string `json:"AccessToken,omitempty"`
	IdToken      string `json:"IdToken,omitempty"`
	RefreshToken string `json:"RefreshToken,omitempty"`
}

type InitiateAuthResponse = AuthResult

type AdminInitiateAuthRequest struct {
	UserPoolId     string            `json:"UserPoolId" validate:"required"`
	ClientId       string            `json:"ClientId" validate:"required"`
	AuthFlow       string            `json:"AuthFlow" validate:"required"`
	AuthParameters map[string]string `json:"AuthParameters"`
	ClientMetadata map[string]string `json:"ClientMetadata,omitempty"`
}

type AdminInitiateAuthResponse = AuthResult

type RespondToAuthChallengeRequest struct {
	ClientId           string            `json:"ClientId" validate:"required"`
	ChallengeName       string            `json:"ChallengeName" validate:"required"`
	Session             string            `json:"Session,omitempty"`
	ChallengeResponses  map[string]string `json:"ChallengeResponses"`
	ClientMetadata      map[string]string `json:"ClientMetadata,omitempty"`
}

type RespondToAuthChallengeResponse = AuthResult

// --- Password management ---

type ChangePasswordRequest struct {
	AccessToken      string `json:"AccessToken" validate:"required"`
	PreviousPassword string `json:"PreviousPassword" validate:"required"`
	ProposedPassword string `json:"ProposedPassword" validate:"required"`
}

type ChangePasswordResponse struct{}

type AdminSetUserPasswordRequest struct {
	UserPoolId string `json:"UserPoolId" validate:"required"`
	Username   string `json:"Username" validate:"required"`
	Password   string `json:"Password" validate:"required"`
	Permanent  bool   `json:"Permanent"`
}

type AdminSetUserPasswordResponse struct{}

type RevokeTokenRequest struct {
	Token    string `json:"Token" validate:"required"`
	ClientId string `json:"ClientId" validate:"required"`
}

type RevokeTokenResponse struct{}

// --- Attribute management ---

type UpdateUserAttributesRequest struct {
	AccessToken    string              `json:"AccessToken" validate:"required"`
	UserAttributes []domain.Attribute `json:"UserAttributes"`
	ClientMetadata map[string]string  `json:"ClientMetadata,omitempty"`
}

type UpdateUserAttributesResponse struct {
	CodeDeliveryDetailsList []CodeDeliveryDetails `json:"CodeDeliveryDetailsList,omitempty"`
}

type AdminUpdateUserAttributesRequest struct {
	UserPoolId     string              `json:"UserPoolId" validate:"required"`
	Username       string              `json:"Username" validate:"required"`
	UserAttributes []domain.Attribute `json:"UserAttributes"`
	ClientMetadata map[string]string  `json:"ClientMetadata,omitempty"`
}

type AdminUpdateUserAttributesResponse struct{}

type DeleteUserAttributesRequest struct {
	AccessToken            string   `json:"AccessToken" validate:"required"`
	UserAttributeNames     []string `json:"UserAttributeNames"`
}

type DeleteUserAttributesResponse struct{}

type AdminDeleteUserAttributesRequest struct {
	UserPoolId         string   `json:"UserPoolId" validate:"required"`
	Username           string   `json:"Username" validate:"required"`
	UserAttributeNames []string `json:"UserAttributeNames"`
}

type AdminDeleteUserAttributesResponse struct{}

type VerifyUserAttributeRequest struct {
	AccessToken string `json:"AccessToken" validate:"required"`
	AttributeName string `json:"AttributeName" validate:"required"`
	Code        string `json:"Code" validate:"required"`
}

type VerifyUserAttributeResponse struct{}

type GetUserAttributeVerificationCodeRequest struct {
	AccessToken   string `json:"AccessToken" validate:"required"`
	AttributeName string `json:"AttributeName" validate:"required"`
	ClientMetadata map[string]string `json:"ClientMetadata,omitempty"`
}

type GetUserAttributeVerificationCodeResponse struct {
	CodeDeliveryDetails *CodeDeliveryDetails `json:"CodeDeliveryDetails,omitempty"`
}

// --- User read / admin user management ---

type UserType struct {
	Username             string              `json:"Username"`
	Attributes           []domain.Attribute `json:"Attributes"`
	UserStatus           string              `json:"UserStatus"`
	Enabled              bool                `json:"Enabled"`
	MFAOptions           []domain.MFAOption `json:"MFAOptions,omitempty"`
	UserCreateDate       int64               `json:"UserCreateDate"`
	UserLastModifiedDate int64               `json:"UserLastModifiedDate"`
}

func UserToWire(u *domain.User) UserType {
	return UserType{
		Username:             u.Username,
		Attributes:           u.Attributes,
		UserStatus:           u.UserStatus,
		Enabled:              u.Enabled,
		MFAOptions:           u.MFAOptions,
		UserCreateDate:       u.UserCreateDate.Unix(),
		UserLastModifiedDate: u.UserLastModifiedDate.Unix(),
	}
}

type GetUserRequest struct {
	AccessToken string `json:"AccessToken" validate:"required"`
}

type GetUserResponse struct {
	Username       string              `json:"Username"`
	UserAttributes []domain.Attribute `json:"UserAttributes"`
	MFAOptions     []domain.MFAOption `json:"MFAOptions,omitempty"`
}

type AdminGetUserRequest struct {
	UserPoolId string `json:"UserPoolId" validate:"required"`
	Username   string `json:"Username" validate:"required"`
}

type AdminGetUserResponse struct {
	Username             string              `json:"Username"`
	UserAttributes       []domain.Attribute `json:"UserAttributes"`
	UserStatus           string              `json:"UserStatus"`
	Enabled              bool                `json:"Enabled"`
	MFAOptions           []domain.MFAOption `json:"MFAOptions,omitempty"`
	UserCreateDate       int64               `json:"UserCreateDate"`
	UserLastModifiedDate int64               `json:"UserLastModifiedDate"`
}

type AdminCreateUserRequest struct {
	UserPoolId       string              `json:"UserPoolId" validate:"required"`
	Username         string              `json:"Username"`
	UserAttributes   []domain.Attribute `json:"UserAttributes"`
	TemporaryPassword string             `json:"TemporaryPassword,omitempty"`
	ClientMetadata   map[string]string   `json:"ClientMetadata,omitempty"`
	MessageAction    string              `json:"MessageAction,omitempty"`
}

type AdminCreateUserResponse struct {
	User UserType `json:"User"`
}

type DeleteUserRequest struct {
	AccessToken string `json:"AccessToken" validate:"required"`
}

type DeleteUserResponse struct{}

type AdminDeleteUserRequest struct {
	UserPoolId string `json:"UserPoolId" validate:"required"`
	Username   string `json:"Username" validate:"required"`
}

type AdminDeleteUserResponse struct{}

type ListUsersRequest struct {
	UserPoolId string `json:"UserPoolId" validate:"required"`
	Limit      int    `json:"Limit,omitempty"`
}

type ListUsersResponse struct {
	Users []UserType `json:"Users"`
}

// --- User pools ---

type CreateUserPoolRequest struct {
	PoolName               string            `json:"PoolName" validate:"required"`
	UsernameAttributes     []string          `json:"UsernameAttributes,omitempty"`
	AutoVerifiedAttributes []string          `json:"AutoVerifiedAttributes,omitempty"`
	MfaConfiguration       string            `json:"MfaConfiguration,omitempty"`
	SchemaAttributes       []domain.SchemaAttribute `json:"SchemaAttributes,omitempty"`
}

type UserPoolType struct {
	Id                     string   `json:"Id"`
	Name                   string   `json:"Name"`
	UsernameAttributes     []string `json:"UsernameAttributes,omitempty"`
	AutoVerifiedAttributes []string `json:"AutoVerifiedAttributes,omitempty"`
	MfaConfiguration       string   `json:"MfaConfiguration"`
	CreationDate           int64    `json:"CreationDate"`
	LastModifiedDate       int64    `json:"LastModifiedDate"`
}

func PoolToWire(p *domain.UserPool) UserPoolType {
	return UserPoolType{
		Id:                     p.Id,
		Name:                   p.Name,
		UsernameAttributes:     p.UsernameAttributes,
		AutoVerifiedAttributes: p.AutoVerifiedAttributes,
		MfaConfiguration:       p.MfaConfiguration,
		CreationDate:           p.CreationDate.Unix(),
		LastModifiedDate:       p.LastModifiedDate.Unix(),
	}
}

type CreateUserPoolResponse struct {
	UserPool UserPoolType `json:"UserPool"`
}

type DescribeUserPoolRequest struct {
	UserPoolId string `json:"UserPoolId" validate:"required"`
}

type DescribeUserPoolResponse struct {
	UserPool UserPoolType `json:"UserPool"`
}

type DeleteUserPoolRequest struct {
	UserPoolId string `json:"UserPoolId" validate:"required"`
}

type DeleteUserPoolResponse struct{}

type ListUserPoolsRequest struct {
	MaxResults int `json:"MaxResults,omitempty"`
}

type ListUserPoolsResponse struct {
	UserPools []UserPoolType `json:"UserPools"`
}

type GetUserPoolMfaConfigRequest struct {
	UserPoolId string `json:"UserPoolId" validate:"required"`
}

type GetUserPoolMfaConfigResponse struct {
	MfaConfiguration string `json:"MfaConfiguration"`
}

// --- App clients ---

type CreateUserPoolClientRequest struct {
	UserPoolId string `json:"UserPoolId" validate:"required"`
	ClientName string `json:"ClientName" validate:"required"`
}

type AppClientType struct {
	ClientId             string `json:"ClientId"`
	ClientName           string `json:"ClientName"`
	UserPoolId           string `json:"UserPoolId"`
	RefreshTokenValidity int    `json:"RefreshTokenValidity"`
	CreationDate         int64  `json:"CreationDate"`
	LastModifiedDate     int64  `json:"LastModifiedDate"`
}

func ClientToWire(c *domain.AppClient) AppClientType {
	return AppClientType{
		ClientId:             c.ClientId,
		ClientName:           c.ClientName,
		UserPoolId:           c.UserPoolId,
		RefreshTokenValidity: c.RefreshTokenValidity,
		CreationDate:         c.CreationDate.Unix(),
		LastModifiedDate:     c.LastModifiedDate.Unix(),
	}
}

type CreateUserPoolClientResponse struct {
	UserPoolClient AppClientType `json:"UserPoolClient"`
}

type DescribeUserPoolClientRequest struct {
	UserPoolId string `json:"UserPoolId" validate:"required"`
	ClientId   string `json:"ClientId" validate:"required"`
}

type DescribeUserPoolClientResponse struct {
	UserPoolClient AppClientType `json:"UserPoolClient"`
}

type DeleteUserPoolClientRequest struct {
	UserPoolId string `json:"UserPoolId" validate:"required"`
	ClientId   string `json:"ClientId" validate:"required"`
}

type DeleteUserPoolClientResponse struct{}

// --- Groups ---

type CreateGroupRequest struct {
	UserPoolId  string `json:"UserPoolId" validate:"required"`
	GroupName   string `json:"GroupName" validate:"required"`
	Description string `json:"Description,omitempty"`
	Precedence  int    `json:"Precedence,omitempty"`
	RoleArn     string `json:"RoleArn,omitempty"`
}

type GroupType struct {
	GroupName        string `json:"GroupName"`
	UserPoolId       string `json:"UserPoolId"`
	Description      string `json:"Description,omitempty"`
	Precedence       int    `json:"Precedence,omitempty"`
	RoleArn          string `json:"RoleArn,omitempty"`
	CreationDate     int64  `json:"CreationDate"`
	LastModifiedDate int64  `json:"LastModifiedDate"`
}

func GroupToWire(g *domain.Group) GroupType {
	return GroupType{
		GroupName:        g.GroupName,
		UserPoolId:       g.UserPoolId,
		Description:      g.Description,
		Precedence:       g.Precedence,
		RoleArn:          g.RoleArn,
		CreationDate:     g.CreationDate.Unix(),
		LastModifiedDate: g.LastModifiedDate.Unix(),
	}
}

type CreateGroupResponse struct {
	Group GroupType `json:"Group"`
}

type ListGroupsRequest struct {
	UserPoolId string `json:"UserPoolId" validate:"required"`
}

type ListGroupsResponse struct {
	Groups []GroupType `json:"Groups"`
}
