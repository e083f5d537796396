package security

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/antimatter-studios/cognito-local/internal/core/ports"
)

// JWTProvider implements ports.TokenGenerator: RS256 id/access tokens per
// §4.5, generalized from a single claims type into distinct id- and
// access-token claim sets, with a PreTokenGeneration pass folded into id
// token issuance the way the component diagram places TokenGenerator
// downstream of Triggers.
type JWTProvider struct {
	Keys       *KeyMaterial
	Triggers   ports.Triggers
	Clock      ports.Clock
	IssuerBase string // e.g. "http://localhost:9229"
}

func NewJWTProvider(keys *KeyMaterial, triggers ports.Triggers, clock ports.Clock, issuerBase string) *JWTProvider {
	return &JWTProvider{Keys: keys, Triggers: triggers, Clock: clock, IssuerBase: issuerBase}
}

func (p *JWTProvider) issuer(userPoolId string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(p.IssuerBase, "/"), userPoolId)
}

// Issue builds and signs the {AccessToken, IdToken, RefreshToken} triple.
func (p *JWTProvider) Issue(ctx context.Context, params ports.TokenParams) (ports.Tokens, error) {
	user := params.User
	now := p.Clock.Now()
	iat := now.Unix()
	authTime := iat
	exp := iat + 24*3600
	sub := user.Sub()

	idClaims := jwt.MapClaims{
		"sub":              sub,
		"aud":              params.ClientId,
		"iss":              p.issuer(params.UserPoolId),
		"token_use":        "id",
		"auth_time":        authTime,
		"iat":              iat,
		"exp":              exp,
		"jti":              uuid.NewString(),
		"cognito:username": user.Username,
	}
	for _, a := range user.Attributes {
		idClaims[a.Name] = a.Value
	}

	if p.Triggers != nil && p.Triggers.Enabled(ports.TriggerPreTokenGeneration) {
		out, err := p.Triggers.PreTokenGeneration(ctx, ports.PreTokenGenerationInput{
			ClientId:       params.ClientId,
			Username:       user.Username,
			UserPoolId:     params.UserPoolId,
			UserAttributes: user.AttributesAsMap(),
			ClientMetadata: params.ClientMetadata,
		})
		if err != nil {
			return ports.Tokens{}, err
		}
		for k, v := range out.ClaimsToAddOrOverride {
			idClaims[k] = v
		}
		for _, k := range out.ClaimsToSuppress {
			delete(idClaims, k)
		}
	}

	accessClaims := jwt.MapClaims{
		"sub":              sub,
		"iss":              p.issuer(params.UserPoolId),
		"client_id":        params.ClientId,
		"token_use":        "access",
		"auth_time":        authTime,
		"iat":              iat,
		"exp":              exp,
		"jti":              uuid.NewString(),
		"username":         user.Username,
		"cognito:username": user.Username,
	}

	idToken, err := p.sign(idClaims)
	if err != nil {
		return ports.Tokens{}, err
	}
	accessToken, err := p.sign(accessClaims)
	if err != nil {
		return ports.Tokens{}, err
	}

	var refreshToken string
	if params.IncludeRefreshToken {
		refreshToken = uuid.NewString()
	}

	return ports.Tokens{AccessToken: accessToken, IdToken: idToken, RefreshToken: refreshToken}, nil
}

func (p *JWTProvider) sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = p.Keys.Kid
	return token.SignedString(p.Keys.PrivateKey)
}

// Validate parses an access token and resolves the pool/user it names.
// Expiry is checked against the provider's Clock, the same clock Issue
// stamps iat/exp from.
func (p *JWTProvider) Validate(ctx context.Context, accessToken string) (ports.AccessClaims, error) {
	token, err := jwt.Parse(accessToken, func(t *jwt.Token) (any, error) {
		return &p.Keys.PrivateKey.PublicKey, nil
	}, jwt.WithValidMethods([]string{"RS256"}), jwt.WithTimeFunc(p.Clock.Now))
	if err != nil || !token.Valid {
		return ports.AccessClaims{}, fmt.Errorf("invalid access token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ports.AccessClaims{}, fmt.Errorf("invalid access token claims")
	}
	if use, _ := claims["token_use"].(string); use != "access" {
		return ports.AccessClaims{}, fmt.Errorf("not an access token")
	}
	sub, _ := claims["sub"].(string)
	username, _ := claims["username"].(string)
	clientId, _ := claims["client_id"].(string)
	iss, _ := claims["iss"].(string)

	parts := strings.Split(strings.TrimRight(iss, "/"), "/")
	userPoolId := parts[len(parts)-1]

	return ports.AccessClaims{Sub: sub, Username: username, ClientId: clientId, UserPoolId: userPoolId}, nil
}
