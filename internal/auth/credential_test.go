package auth

import "testing"

func TestDecodeCredentialBcryptVariants(t *testing.T) {
	for _, stored := range []string{
		"$2a$10$N9qo8uLOickgx2ZMRZoMye",
		"$2b$12$abcdefghijklmnopqrstuv",
		"$2y$10$abcdefghijklmnopqrstuv",
	} {
		cred := DecodeCredential(stored)
		if cred.Kind != CredentialHashed {
			t.Fatalf("expected %q to classify as hashed", stored)
		}
		if cred.Value != stored {
			t.Fatalf("value was rewritten: %q", cred.Value)
		}
	}
}

func TestDecodeCredentialLegacy(t *testing.T) {
	for _, stored := range []string{
		"plaintext-password",
		"2a-not-a-hash",
		"$1$md5crypt",
		"",
	} {
		if cred := DecodeCredential(stored); cred.Kind != CredentialLegacy {
			t.Fatalf("expected %q to classify as legacy", stored)
		}
	}
}
