package util

import (
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123"

func TestGenerateAndParseToken(t *testing.T) {
	tok, exp, err := GenerateToken(testSecret, "finance-ledger", "user-1", "sess-1", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if time.Until(exp) <= 0 {
		t.Fatal("expiry should be in the future")
	}

	claims, err := ParseToken(testSecret, "finance-ledger", tok)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID() != "user-1" || claims.SessionID() != "sess-1" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	tok, _, _ := GenerateToken(testSecret, "finance-ledger", "user-1", "s", time.Hour)
	if _, err := ParseToken("another-secret-value", "finance-ledger", tok); err == nil {
		t.Error("expected signature error")
	}
}

func TestParseToken_WrongIssuer(t *testing.T) {
	tok, _, _ := GenerateToken(testSecret, "someone-else", "user-1", "s", time.Hour)
	if _, err := ParseToken(testSecret, "finance-ledger", tok); err == nil {
		t.Error("expected issuer error")
	}
}

func TestParseToken_DefaultTTLAndGarbage(t *testing.T) {
	tok, _, _ := GenerateToken(testSecret, "finance-ledger", "user-1", "s", -time.Hour)
	if _, err := ParseToken(testSecret, "finance-ledger", tok); err != nil {
		t.Fatalf("default ttl token should parse: %v", err)
	}
	if _, err := ParseToken(testSecret, "finance-ledger", "not.a.token"); err == nil {
		t.Error("garbage should not parse")
	}
}

func TestParseToken_NoSubject(t *testing.T) {
	tok, _, _ := GenerateToken(testSecret, "finance-ledger", "", "s", time.Hour)
	if _, err := ParseToken(testSecret, "finance-ledger", tok); err == nil {
		t.Error("token without subject should be rejected")
	}
}
