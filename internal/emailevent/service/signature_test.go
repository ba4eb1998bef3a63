package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/RonanBeelen/InvoiceStudio/internal/config"
	eventdomain "github.com/RonanBeelen/InvoiceStudio/internal/emailevent/domain"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignatureValid(t *testing.T) {
	svc := &Service{cfg: config.Config{WebhookSecret: "topsecret"}}
	body := []byte(`{"type":"email.delivered"}`)

	if err := svc.verifySignature(body, sign("topsecret", body)); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}
}

func TestVerifySignatureRejectsMismatch(t *testing.T) {
	svc := &Service{cfg: config.Config{WebhookSecret: "topsecret"}}
	body := []byte(`{"type":"email.delivered"}`)

	if err := svc.verifySignature(body, sign("wrong", body)); !errors.Is(err, eventdomain.ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
	if err := svc.verifySignature(body, ""); !errors.Is(err, eventdomain.ErrBadSignature) {
		t.Fatalf("missing signature: expected ErrBadSignature, got %v", err)
	}
	tampered := append([]byte{}, body...)
	tampered[0] = '['
	if err := svc.verifySignature(tampered, sign("topsecret", body)); !errors.Is(err, eventdomain.ErrBadSignature) {
		t.Fatalf("tampered body: expected ErrBadSignature, got %v", err)
	}
}

func TestVerifySignatureSkippedWithoutSecret(t *testing.T) {
	svc := &Service{cfg: config.Config{}}
	if err := svc.verifySignature([]byte("anything"), ""); err != nil {
		t.Fatalf("empty secret must disable verification, got %v", err)
	}
}
