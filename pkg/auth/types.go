package auth

import "github.com/Shingunhoon/Clix/pkg/model"

// Identity is what a verified session token proves: the provider
// authenticated this email. It says nothing about portal membership;
// that requires a users/{email} record.
type Identity struct {
	Email string
	Name  string
}

// Principal is a signed-in portal member: a verified identity joined
// with its user record. Role comes from the record, never the token.
type Principal struct {
	Email string
	Name  string
	Role  model.Role
}

// Elevated reports whether the principal may enter administrative views.
func (p *Principal) Elevated() bool {
	return p.Role.Elevated()
}
