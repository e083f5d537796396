package router

import (
	"fmt"

	"github.com/antimatter-studios/cognito-local/internal/core/domain"
)

// validatePermittedAttributeChanges enforces invariant 4 (§8): every
// attribute in a change request must name a mutable schema attribute.
// It also enforces the email/phone verified-flag rules of §4.3.3 and
// returns the change set with *_verified defaults filled in.
func validatePermittedAttributeChanges(pool *domain.UserPool, existing *domain.User, attrs []domain.Attribute) ([]domain.Attribute, error) {
	hasInReq := func(name string) (string, bool) {
		for _, a := range attrs {
			if a.Name == name {
				return a.Value, true
			}
		}
		return "", false
	}

	for _, a := range attrs {
		schema, ok := pool.SchemaFor(a.Name)
		if !ok {
			return nil, WithMessage(domain.ErrInvalidParameter, fmt.Sprintf("attribute %s is not a permitted schema attribute", a.Name))
		}
		if !schema.Mutable {
			return nil, WithMessage(domain.ErrInvalidParameter, fmt.Sprintf("attribute %s is not mutable", a.Name))
		}
	}

	out := make([]domain.Attribute, len(attrs))
	copy(out, attrs)

	_, emailInReq := hasInReq("email")
	_, emailVerifiedInReq := hasInReq("email_verified")
	_, existingEmail := existing.Attribute("email")
	if emailVerifiedInReq && !emailInReq && !existingEmail {
		return nil, WithMessage(domain.ErrInvalidParameter, "email_verified supplied without an email attribute")
	}
	if emailInReq && !emailVerifiedInReq {
		out = append(out, domain.Attribute{Name: "email_verified", Value: "false"})
	}

	_, phoneInReq := hasInReq("phone_number")
	_, phoneVerifiedInReq := hasInReq("phone_number_verified")
	_, existingPhone := existing.Attribute("phone_number")
	if phoneVerifiedInReq && !phoneInReq && !existingPhone {
		return nil, WithMessage(domain.ErrInvalidParameter, "phone_number_verified supplied without a phone_number attribute")
	}
	if phoneInReq && !phoneVerifiedInReq {
		out = append(out, domain.Attribute{Name: "phone_number_verified", Value: "false"})
	}

	return out, nil
}

func attrsToMap(attrs []domain.Attribute) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		m[a.Name] = a.Value
	}
	return m
}
