package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/accountkit/account-service/internal/core/domain"
	"github.com/accountkit/account-service/internal/core/ports"
	"github.com/accountkit/account-service/internal/metrics"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
	maxPage          = 1_000_000
)

type UserService struct {
	repo   ports.UserRepository
	cache  ports.UserCache
	events ports.EventEmitter
	log    zerolog.Logger
}

func NewUserService(repo ports.UserRepository, cache ports.UserCache, events ports.EventEmitter, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, cache: cache, events: events, log: log}
}

// UpdateSelf applies the caller's own profile changes. Only the name is editable here.
func (s *UserService) UpdateSelf(ctx context.Context, actor *domain.User, in ports.SelfUpdateInput) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if in.Name == nil {
		return domain.NewValidationError("no fields to update")
	}

	name := strings.TrimSpace(*in.Name)
	if name == "" {
		return domain.NewValidationError("name cannot be empty")
	}

	return s.update(ctx, actor, actor.ID, ports.UserChanges{Name: &name}, "self")
}

// DeleteSelf removes the caller's own account.
func (s *UserService) DeleteSelf(ctx context.Context, actor *domain.User) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	return s.delete(ctx, actor, actor.ID, "self")
}

func (s *UserService) GetUser(ctx context.Context, actor *domain.User, id string) (*domain.User, error) {
	if err := authorizeAdmin(actor); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// UpdateUser applies admin changes to any account, including its role.
func (s *UserService) UpdateUser(ctx context.Context, actor *domain.User, id string, in ports.AdminUpdateInput) error {
	if err := authorizeAdmin(actor); err != nil {
		return err
	}

	var changes ports.UserChanges
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if username == "" {
			return domain.NewValidationError("username cannot be empty")
		}
		changes.Username = &username
	}
	if in.Email != nil {
		email := domain.NormalizeEmail(*in.Email)
		if email == "" {
			return domain.NewValidationError("email cannot be empty")
		}
		changes.Email = &email
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return domain.NewValidationError("name cannot be empty")
		}
		changes.Name = &name
	}
	if in.Role != nil {
		role, ok := domain.ParseRole(*in.Role)
		if !ok {
			return domain.NewValidationError("role must be one of: %s %s", domain.RoleUser, domain.RoleAdmin)
		}
		changes.Role = &role
	}
	if len(changes.Fields()) == 0 {
		return domain.NewValidationError("no fields to update")
	}

	return s.update(ctx, actor, id, changes, "admin")
}

func (s *UserService) DeleteUser(ctx context.Context, actor *domain.User, id string) error {
	if err := authorizeAdmin(actor); err != nil {
		return err
	}
	return s.delete(ctx, actor, id, "admin")
}

// SearchUsers returns a page of accounts, newest first.
func (s *UserService) SearchUsers(ctx context.Context, actor *domain.User, in ports.SearchUsersInput) (*ports.SearchUsersResult, error) {
	if err := authorizeAdmin(actor); err != nil {
		return nil, err
	}

	filter := ports.SearchUsersFilter{
		Name:  strings.TrimSpace(in.Name),
		Page:  in.Page,
		Limit: in.Limit,
	}
	if in.Role != "" {
		role, ok := domain.ParseRole(in.Role)
		if !ok {
			return nil, domain.NewValidationError("role must be one of: %s %s", domain.RoleUser, domain.RoleAdmin)
		}
		filter.Role = role
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Page > maxPage {
		return nil, domain.NewValidationError("page must be at most %d", maxPage)
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}

	users, total, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}

	return &ports.SearchUsersResult{
		Items:      users,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

func (s *UserService) update(ctx context.Context, actor *domain.User, id string, changes ports.UserChanges, scope string) error {
	changes.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, id, changes); err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) && !errors.Is(err, domain.ErrUserExists) {
			s.log.Error().Err(err).Str("user_id", id).Msg("failed to update user")
		}
		return err
	}
	s.cache.Delete(ctx, id)
	metrics.UserMutationsTotal.WithLabelValues("update", scope).Inc()

	fields := changes.Fields()
	s.events.Enqueue(domain.UserEvent{
		Type:      domain.EventUserUpdated,
		UserID:    id,
		ActorID:   actor.ID,
		Fields:    fields,
		Timestamp: changes.UpdatedAt,
	})
	s.log.Info().Str("user_id", id).Str("actor_id", actor.ID).Strs("fields", fields).Msg("user updated")
	return nil
}

func (s *UserService) delete(ctx context.Context, actor *domain.User, id string, scope string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			s.log.Error().Err(err).Str("user_id", id).Msg("failed to delete user")
		}
		return err
	}
	s.cache.Delete(ctx, id)
	metrics.UserMutationsTotal.WithLabelValues("delete", scope).Inc()

	s.events.Enqueue(domain.UserEvent{
		Type:      domain.EventUserDeleted,
		UserID:    id,
		ActorID:   actor.ID,
		Timestamp: time.Now().UTC(),
	})
	s.log.Info().Str("user_id", id).Str("actor_id", actor.ID).Msg("user deleted")
	return nil
}

// authorizeAdmin rejects actors whose role cannot manage other accounts.
func authorizeAdmin(actor *domain.User) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if !actor.Role.CanManageUsers() {
		metrics.AuthorizationDenialsTotal.WithLabelValues(string(actor.Role)).Inc()
		return domain.ErrForbidden
	}
	return nil
}
