package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gamearena/gamearena/services"
	"github.com/gamearena/gamearena/store"
)

func TestRegisterAndLogin(t *testing.T) {
	s := store.NewMemoryStore()
	svc := services.NewAuthService(s)

	user, err := svc.Register(context.Background(), services.RegisterInput{
		Username: "ProGamer_99",
		Email:    "pro@example.com",
		Password: "s3cretpw",
		FullName: "Pro Gamer",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == "" {
		t.Error("registered user has no ID")
	}
	if user.PasswordHash == "s3cretpw" {
		t.Error("password stored in plaintext")
	}
	if user.IsAdmin {
		t.Error("registration must not grant admin")
	}

	got, err := svc.Login(context.Background(), services.LoginInput{
		Email:    "pro@example.com",
		Password: "s3cretpw",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("login returned user %s; want %s", got.ID, user.ID)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	s := store.NewMemoryStore()
	svc := services.NewAuthService(s)

	base := services.RegisterInput{
		Username: "ProGamer_99",
		Email:    "pro@example.com",
		Password: "s3cretpw",
		FullName: "Pro Gamer",
	}
	if _, err := svc.Register(context.Background(), base); err != nil {
		t.Fatalf("register: %v", err)
	}

	dupEmail := base
	dupEmail.Username = "other"
	dupEmail.Email = "PRO@example.com"
	if _, err := svc.Register(context.Background(), dupEmail); !errors.Is(err, services.ErrEmailTaken) {
		t.Errorf("duplicate email: got %v; want ErrEmailTaken", err)
	}

	dupName := base
	dupName.Email = "new@example.com"
	dupName.Username = "progamer_99"
	if _, err := svc.Register(context.Background(), dupName); !errors.Is(err, services.ErrUsernameTaken) {
		t.Errorf("duplicate username: got %v; want ErrUsernameTaken", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	s := store.NewMemoryStore()
	svc := services.NewAuthService(s)

	cases := []struct {
		name  string
		input services.RegisterInput
	}{
		{"short password", services.RegisterInput{Username: "a1", Email: "a@example.com", Password: "123"}},
		{"bad email", services.RegisterInput{Username: "a1", Email: "not-an-email", Password: "s3cretpw"}},
		{"missing username", services.RegisterInput{Email: "a@example.com", Password: "s3cretpw"}},
	}
	for _, tc := range cases {
		if _, err := svc.Register(context.Background(), tc.input); !errors.Is(err, services.ErrValidation) {
			t.Errorf("%s: got %v; want ErrValidation", tc.name, err)
		}
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := store.NewMemoryStore()
	svc := services.NewAuthService(s)

	if _, err := svc.Register(context.Background(), services.RegisterInput{
		Username: "ProGamer_99",
		Email:    "pro@example.com",
		Password: "s3cretpw",
		FullName: "Pro Gamer",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := svc.Login(context.Background(), services.LoginInput{Email: "pro@example.com", Password: "wrong"})
	if !errors.Is(err, services.ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v; want ErrInvalidCredentials", err)
	}

	// Unknown email must look identical to a wrong password.
	_, err = svc.Login(context.Background(), services.LoginInput{Email: "ghost@example.com", Password: "s3cretpw"})
	if !errors.Is(err, services.ErrInvalidCredentials) {
		t.Errorf("unknown email: got %v; want ErrInvalidCredentials", err)
	}
}
