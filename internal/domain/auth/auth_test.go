package auth

import (
	"context"
	"errors"
	"testing"

	"tokenestate-backend/internal/domain/apperr"
)

func TestContextAuthorizer(t *testing.T) {
	var a ContextAuthorizer
	ctx := WithPrincipal(context.Background(), "GBUILDER")

	if err := a.Authorize(ctx, "GBUILDER"); err != nil {
		t.Fatalf("same principal: %v", err)
	}
	if err := a.Authorize(ctx, "GOTHER"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("other principal => want Unauthorized, got %v", err)
	}
	if err := a.Authorize(context.Background(), "GBUILDER"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("anonymous => want Unauthorized, got %v", err)
	}
	if err := a.Authorize(WithPrincipal(context.Background(), ""), ""); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("empty principal => want Unauthorized, got %v", err)
	}
}

func TestRegistrationPolicy(t *testing.T) {
	p := NewRegistrationPolicy(" GADMIN ", []string{"GB1", " ", "GB2 "})
	for _, ok := range []string{"GADMIN", "GB1", "GB2"} {
		if !p.Allows(ok) {
			t.Fatalf("%s should be allowed", ok)
		}
	}
	for _, no := range []string{"", "GB3", " "} {
		if p.Allows(no) {
			t.Fatalf("%q should be rejected", no)
		}
	}
}
