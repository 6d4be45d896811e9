package auth

import "testing"

func TestGenerateAndValidateToken(t *testing.T) {
	authenticator := NewAuthenticator("test-secret")

	token, err := authenticator.GenerateInterviewToken("cand-1")
	if err != nil {
		t.Fatalf("GenerateInterviewToken: %v", err)
	}

	claims, err := authenticator.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.CandidateID != "cand-1" {
		t.Errorf("candidate id = %q, want cand-1", claims.CandidateID)
	}
	if claims.Role != "candidate" {
		t.Errorf("role = %q, want candidate", claims.Role)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := NewAuthenticator("secret-a").GenerateInterviewToken("cand-1")
	if err != nil {
		t.Fatalf("GenerateInterviewToken: %v", err)
	}

	if _, err := NewAuthenticator("secret-b").ValidateToken(token); err == nil {
		t.Fatal("token signed with another secret must be rejected")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	if _, err := NewAuthenticator("secret").ValidateToken("not.a.jwt"); err == nil {
		t.Fatal("garbage token must be rejected")
	}
}

func TestAuthenticatorDisabledWithoutSecret(t *testing.T) {
	if NewAuthenticator("").Enabled() {
		t.Error("empty secret must disable authentication")
	}
	if !NewAuthenticator("s").Enabled() {
		t.Error("non-empty secret must enable authentication")
	}
}
