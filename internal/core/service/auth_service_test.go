package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/accountkit/account-service/internal/core/domain"
	"github.com/accountkit/account-service/internal/core/ports"
)

const testSecret = "secret"

func newTestAuthService(repo *stubUserRepo) (*AuthService, *stubCache, *recordingEmitter) {
	cache := newStubCache()
	events := &recordingEmitter{}
	svc := NewAuthService(repo, cache, events, AuthOptions{
		JWTSecret:  testSecret,
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, discardLogger)
	return svc, cache, events
}

func signupInput() ports.RegisterInput {
	return ports.RegisterInput{
		Username:       "john",
		Email:          "john@galt.com",
		Password:       "hello",
		PasswordRepeat: "hello",
		Name:           "John Galt",
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc, _, events := newTestAuthService(repo)

	user, err := svc.Register(context.Background(), signupInput())
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user == nil || user.ID == "" {
		t.Fatalf("expected stored user with id, got %+v", user)
	}
	if user.Name != "John Galt" {
		t.Fatalf("unexpected name: %q", user.Name)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected default role %q, got %q", domain.RoleUser, user.Role)
	}
	if user.PasswordHash == "hello" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hello")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if ev := events.last(); ev.Type != domain.EventUserRegistered || ev.UserID != user.ID {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestAuthService_Register_NormalizesEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc, _, _ := newTestAuthService(repo)

	in := signupInput()
	in.Email = "  John@Galt.COM "
	user, err := svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Email != "john@galt.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	repo := newStubUserRepo()
	svc, _, _ := newTestAuthService(repo)

	cases := map[string]func(*ports.RegisterInput){
		"missing username": func(in *ports.RegisterInput) { in.Username = " " },
		"missing email":    func(in *ports.RegisterInput) { in.Email = "" },
		"missing password": func(in *ports.RegisterInput) { in.Password, in.PasswordRepeat = "", "" },
		"mismatch":         func(in *ports.RegisterInput) { in.PasswordRepeat = "other" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := signupInput()
			mutate(&in)
			_, err := svc.Register(context.Background(), in)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
	if len(repo.users) != 0 {
		t.Fatalf("no user should be stored, got %d", len(repo.users))
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	repo := newStubUserRepo()
	svc, _, _ := newTestAuthService(repo)

	if _, err := svc.Register(context.Background(), signupInput()); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), signupInput()); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc, _, _ := newTestAuthService(repo)

	registered, err := svc.Register(context.Background(), signupInput())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, user, err := svc.Login(context.Background(), "JOHN@galt.com", "hello")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token, got empty")
	}
	if user == nil || user.Username != "john" {
		t.Fatalf("unexpected user: %+v", user)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims.Subject != registered.ID {
		t.Fatalf("expected subject %s, got %s", registered.ID, claims.Subject)
	}
	if claims.ExpiresAt == nil || claims.ID == "" {
		t.Fatalf("expected exp and jti claims, got %+v", claims.RegisteredClaims)
	}
}

func TestAuthService_Login_FailuresAreUniform(t *testing.T) {
	repo := newStubUserRepo()
	svc, _, _ := newTestAuthService(repo)
	repo.seed("dave", "goodpass", domain.RoleUser)

	_, _, wrongPassword := svc.Login(context.Background(), "dave@example.com", "badpass")
	_, _, unknownEmail := svc.Login(context.Background(), "ghost@example.com", "badpass")
	_, _, empty := svc.Login(context.Background(), "", "")

	for name, err := range map[string]error{"wrong password": wrongPassword, "unknown email": unknownEmail, "empty": empty} {
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("%s: expected ErrInvalidCredentials, got %v", name, err)
		}
	}
}

func TestAuthService_Login_StoreErrorIsNotMasked(t *testing.T) {
	repo := newStubUserRepo()
	repo.findErr = errors.New("connection refused")
	svc, _, _ := newTestAuthService(repo)

	_, _, err := svc.Login(context.Background(), "dave@example.com", "pass")
	if err == nil || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	repo := newStubUserRepo()
	svc, cache, _ := newTestAuthService(repo)
	seeded := repo.seed("carol", "s3cret", domain.RoleAdmin)

	token, _, err := svc.Login(context.Background(), "carol@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	user, err := svc.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if user.ID != seeded.ID || user.Role != domain.RoleAdmin {
		t.Fatalf("unexpected user: %+v", user)
	}
	if _, ok := cache.users[seeded.ID]; !ok {
		t.Fatalf("expected user view to be cached")
	}

	// Cached lookups must not hit the store.
	repo.findErr = errors.New("store down")
	if _, err := svc.Authenticate(context.Background(), token); err != nil {
		t.Fatalf("expected cached authenticate to succeed, got %v", err)
	}
}

func TestAuthService_Authenticate_Rejects(t *testing.T) {
	repo := newStubUserRepo()
	svc, cache, _ := newTestAuthService(repo)
	seeded := repo.seed("erin", "pw", domain.RoleUser)

	sign := func(secret string, method jwt.SigningMethod, claims jwt.Claims) string {
		t.Helper()
		var key interface{} = []byte(secret)
		if method == jwt.SigningMethodNone {
			key = jwt.UnsafeAllowNoneSignatureType
		}
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}
	valid := func(sub string, exp time.Time) jwt.RegisteredClaims {
		return jwt.RegisteredClaims{Subject: sub, ExpiresAt: jwt.NewNumericDate(exp)}
	}

	cases := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": sign("other", jwt.SigningMethodHS256, valid(seeded.ID, time.Now().Add(time.Hour))),
		"expired":      sign(testSecret, jwt.SigningMethodHS256, valid(seeded.ID, time.Now().Add(-time.Minute))),
		"no expiry":    sign(testSecret, jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: seeded.ID}),
		"alg none":     sign("", jwt.SigningMethodNone, valid(seeded.ID, time.Now().Add(time.Hour))),
		"no subject":   sign(testSecret, jwt.SigningMethodHS256, valid("", time.Now().Add(time.Hour))),
		"deleted user": sign(testSecret, jwt.SigningMethodHS256, valid("ffffffffffffffffffffffff", time.Now().Add(time.Hour))),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Authenticate(context.Background(), token); !errors.Is(err, domain.ErrUnauthenticated) {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}
	if len(cache.users) != 0 {
		t.Fatalf("rejected tokens must not populate the cache")
	}
}

func TestAuthService_Authenticate_MutationDuringCacheFill(t *testing.T) {
	cases := map[string]func(users *UserService, target, admin *domain.User) error{
		"deleted": func(users *UserService, target, _ *domain.User) error {
			return users.DeleteSelf(context.Background(), target)
		},
		"demoted": func(users *UserService, target, admin *domain.User) error {
			return users.UpdateUser(context.Background(), admin, target.ID, ports.AdminUpdateInput{Role: strPtr("user")})
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			store := newStubUserRepo()
			target := store.seed("carol", "pw", domain.RoleAdmin)
			admin := store.seed("dominiek", "pw", domain.RoleAdmin)

			repo := &interleavingRepo{stubUserRepo: store}
			cache := newStubCache()
			auth := NewAuthService(repo, cache, &recordingEmitter{}, AuthOptions{
				JWTSecret:  testSecret,
				TokenTTL:   time.Hour,
				BcryptCost: bcrypt.MinCost,
			}, discardLogger)
			users := NewUserService(store, cache, &recordingEmitter{}, discardLogger)

			token, _, err := auth.Login(context.Background(), "carol@example.com", "pw")
			if err != nil {
				t.Fatalf("login failed: %v", err)
			}

			// The mutation lands after the store read and before the cache fill.
			repo.afterFind = func() {
				if err := mutate(users, target, admin); err != nil {
					t.Fatalf("mutation failed: %v", err)
				}
			}
			if _, err := auth.Authenticate(context.Background(), token); err != nil {
				t.Fatalf("first authenticate failed: %v", err)
			}

			user, err := auth.Authenticate(context.Background(), token)
			switch name {
			case "deleted":
				if !errors.Is(err, domain.ErrUnauthenticated) {
					t.Fatalf("deleted account still authenticates: user=%+v err=%v", user, err)
				}
			case "demoted":
				if err != nil || user.Role != domain.RoleUser {
					t.Fatalf("expected demoted role, got user=%+v err=%v", user, err)
				}
			}
		})
	}
}
