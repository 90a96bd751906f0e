package auth

import "strings"

// CredentialKind tags the storage format of a stored credential.
type CredentialKind uint8

const (
	// CredentialHashed is a bcrypt digest, self-identifying by prefix.
	CredentialHashed CredentialKind = iota

	// CredentialLegacy is a plaintext password kept for backward
	// compatibility. It is rewritten to a hash on the first successful
	// login that matches it and never reverts.
	CredentialLegacy
)

// bcryptPrefix matches the $2a$, $2b$ and $2y$ hash variants.
const bcryptPrefix = "$2"

// Credential is the decoded form of the stored credential column.
type Credential struct {
	Kind  CredentialKind
	Value string
}

// DecodeCredential classifies a stored credential. This is the only place
// that sniffs the storage prefix; everything else switches on Kind.
func DecodeCredential(stored string) Credential {
	if strings.HasPrefix(stored, bcryptPrefix) {
		return Credential{Kind: CredentialHashed, Value: stored}
	}
	return Credential{Kind: CredentialLegacy, Value: stored}
}
