package auth

import (
	"context"
	"testing"
	"time"

	"admissions/internal/core"
	"admissions/internal/domain/user"
	"admissions/internal/store/memory"
)

func newService() *Service {
	return NewService(memory.NewUserStore(), NewTokenIssuer("s3cret", 720*time.Hour), memory.NewDenylist(), "admin-key")
}

var neha = RegisterInput{Name: "Neha", Email: "neha@x.in", Password: "hunter22", Phone: "9000000000"}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	sess, err := svc.Register(ctx, neha)
	if err != nil {
		t.Fatal(err)
	}
	if sess.Role != user.RoleUser || sess.Token == "" {
		t.Fatalf("unexpected session %+v", sess)
	}
	if _, err := svc.Register(ctx, neha); !core.Is(err, core.KindDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}

	if _, err := svc.Login(ctx, "neha@x.in", "wrong"); !core.Is(err, core.KindUnauthorized) {
		t.Fatalf("wrong password: %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@x.in", "hunter22"); !core.Is(err, core.KindUnauthorized) {
		t.Fatalf("unknown email: %v", err)
	}
	sess, err = svc.Login(ctx, "NEHA@x.in", "hunter22")
	if err != nil {
		t.Fatal(err)
	}

	claims, err := svc.Authenticate(ctx, sess.Token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != sess.ID.String() || claims.Role != user.RoleUser {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestRegisterRequiresPhone(t *testing.T) {
	in := neha
	in.Phone = ""
	if _, err := newService().Register(context.Background(), in); !core.Is(err, core.KindInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestAdminRegistrationAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	if _, err := svc.RegisterAdmin(ctx, neha, "guess"); !core.Is(err, core.KindUnauthorized) {
		t.Fatalf("bad key: %v", err)
	}
	if _, err := svc.Register(ctx, neha); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.LoginAdmin(ctx, neha.Email, neha.Password); !core.Is(err, core.KindForbidden) {
		t.Fatalf("non-admin login: %v", err)
	}

	admin := RegisterInput{Name: "Root", Email: "root@x.in", Password: "toor123"}
	sess, err := svc.RegisterAdmin(ctx, admin, "admin-key")
	if err != nil {
		t.Fatal(err)
	}
	if sess.Role != user.RoleAdmin {
		t.Fatal("admin role not set")
	}
	if _, err := svc.LoginAdmin(ctx, admin.Email, admin.Password); err != nil {
		t.Fatal(err)
	}
}

func TestAdminRegistrationDisabledWithoutKey(t *testing.T) {
	svc := NewService(memory.NewUserStore(), NewTokenIssuer("s", time.Hour), nil, "")
	if _, err := svc.RegisterAdmin(context.Background(), neha, ""); !core.Is(err, core.KindUnauthorized) {
		t.Fatalf("empty key must not match empty config: %v", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	sess, _ := svc.Register(ctx, neha)
	claims, err := svc.Authenticate(ctx, sess.Token)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Logout(ctx, claims); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Authenticate(ctx, sess.Token); !core.Is(err, core.KindUnauthorized) {
		t.Fatalf("revoked token accepted: %v", err)
	}
}

func TestTokenExpiryAndTampering(t *testing.T) {
	issuer := NewTokenIssuer("s3cret", time.Hour)
	u, _ := user.New("A", "a@x.in", "", "secret1", user.RoleUser, time.Now())
	tok, err := issuer.Issue(u)
	if err != nil {
		t.Fatal(err)
	}

	other := NewTokenIssuer("other", time.Hour)
	if _, err := other.Parse(tok); !core.Is(err, core.KindUnauthorized) {
		t.Fatalf("wrong secret accepted: %v", err)
	}

	issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := issuer.Parse(tok); !core.Is(err, core.KindUnauthorized) || core.MessageOf(err) != "Token expired" {
		t.Fatalf("expired token: %v", err)
	}
}

func TestProfileUpdates(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	sess, _ := svc.Register(ctx, neha)

	u, err := svc.UpdateProfile(ctx, sess.ID, "Neha K", "")
	if err != nil {
		t.Fatal(err)
	}
	if u.Name != "Neha K" || u.Phone != neha.Phone {
		t.Fatalf("unexpected profile %+v", u)
	}

	if err := svc.UpdatePassword(ctx, sess.ID, "wrong", "newpass1"); !core.Is(err, core.KindInvalidInput) {
		t.Fatalf("wrong current password: %v", err)
	}
	if err := svc.UpdatePassword(ctx, sess.ID, neha.Password, "newpass1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Login(ctx, neha.Email, "newpass1"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}
