package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/accountkit/account-service/internal/core/domain"
	"github.com/accountkit/account-service/internal/core/ports"
	"github.com/accountkit/account-service/internal/metrics"
)

// AuthOptions tunes token and hashing behaviour.
type AuthOptions struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// AuthService implements registration, login and session verification.
type AuthService struct {
	repo   ports.UserRepository
	cache  ports.UserCache
	events ports.EventEmitter
	opts   AuthOptions
	log    zerolog.Logger

	// dummyHash is compared against on unknown emails so that both login
	// failure paths spend the same bcrypt time.
	dummyHash []byte
}

func NewAuthService(
	repo ports.UserRepository,
	cache ports.UserCache,
	events ports.EventEmitter,
	opts AuthOptions,
	log zerolog.Logger,
) *AuthService {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("account-service-dummy"), opts.BcryptCost)
	if err != nil {
		// Only reachable with a cost outside bcrypt's range.
		panic(fmt.Sprintf("auth service: bcrypt cost %d: %v", opts.BcryptCost, err))
	}
	return &AuthService{
		repo:      repo,
		cache:     cache,
		events:    events,
		opts:      opts,
		log:       log,
		dummyHash: dummy,
	}
}

// Claims is the session token payload. Subject holds the user id.
type Claims struct {
	jwt.RegisteredClaims
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := domain.NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)

	switch {
	case username == "":
		return nil, domain.NewValidationError("username is required")
	case email == "":
		return nil, domain.NewValidationError("email is required")
	case in.Password == "":
		return nil, domain.NewValidationError("password is required")
	case in.Password != in.PasswordRepeat:
		return nil, domain.NewValidationError("passwords do not match")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.opts.BcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, domain.NewValidationError("password is too long")
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     username,
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		}
		return nil, err
	}
	metrics.RegistrationsTotal.WithLabelValues("created").Inc()

	s.events.Enqueue(domain.UserEvent{
		Type:      domain.EventUserRegistered,
		UserID:    created.ID,
		ActorID:   created.ID,
		Timestamp: now,
	})
	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user registered")

	return created, nil
}

// Login verifies credentials and issues a session token. Every credential
// failure, whatever its cause, is reported as domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, fmt.Errorf("login: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return "", nil, domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	metrics.LoginsTotal.WithLabelValues("accepted").Inc()

	return token, user, nil
}

// Authenticate verifies the token signature and expiry, then loads the user
// it names. Tokens of deleted users fail with domain.ErrUnauthenticated.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.opts.JWTSecret), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, domain.ErrUnauthenticated
	}

	if user, ok := s.cache.Get(ctx, claims.Subject); ok {
		return user, nil
	}

	user, err := s.repo.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	s.cache.Set(ctx, user)

	return user, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TokenTTL)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.opts.JWTSecret))
}
