package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"userhub/internal/config"
	"userhub/internal/domainerr"
	"userhub/internal/event"
	"userhub/internal/logger"
	"userhub/internal/messaging"
	"userhub/internal/model"
	"userhub/internal/repository"
	"userhub/internal/validation"
	"userhub/pkg/distlock"
	"userhub/pkg/timer"
	"userhub/pkg/util"
)

// UserService decides whether a user command is allowed, applies it to the
// aggregate, persists it and emits one event per committed change.
type UserService struct {
	repo      repository.IUserRepository
	publisher messaging.IUserEventPublisher
	locker    distlock.Locker
	events    *event.Factory
	consent   map[string]bool
	pageSize  int
	log       *logger.Logger
	now       func() time.Time
}

type Option func(*UserService)

// WithLocker serializes commands per user (and creation per email).
func WithLocker(l distlock.Locker) Option {
	return func(s *UserService) { s.locker = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *UserService) { s.now = now }
}

// NewUserService creates a new user service
func NewUserService(repo repository.IUserRepository, publisher messaging.IUserEventPublisher, cfg *config.Config, log *logger.Logger, opts ...Option) *UserService {
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > config.MaxPageSize {
		pageSize = config.DefaultPageSize
	}
	if log == nil {
		log = logger.Nop()
	}
	s := &UserService{
		repo:      repo,
		publisher: publisher,
		events:    event.NewFactory(cfg.App.Name),
		consent:   cfg.Consent.Mandatory(),
		pageSize:  pageSize,
		log:       log.With("service", "UserService"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateUser registers a new user on behalf of actor, who must already exist.
func (s *UserService) CreateUser(ctx context.Context, req model.CreateUserRequest, actor string) (string, error) {
	defer timer.Track(s.log, "CreateUser")()

	if err := validation.CreateUser(req, s.consent); err != nil {
		return "", err
	}
	if err := s.authorizeActor(ctx, actor); err != nil {
		return "", err
	}

	actor = util.CanonicalReference(actor)
	email := model.NormalizeEmail(req.Email)
	ref := util.CanonicalReference(req.UserReference)
	req.UserReference = ref

	err := s.withLock(ctx, "user:email:"+email, func() error {
		existing, err := s.repo.GetByEmail(ctx, email)
		if err != nil {
			return domainerr.Internal("failed to look up user by email", err)
		}
		if existing != nil {
			return domainerr.Newf(domainerr.KindConflict, "a user with email %s already exists", email)
		}

		existing, err = s.repo.GetByReference(ctx, ref)
		if err != nil {
			return domainerr.Internal("failed to look up user by reference", err)
		}
		if existing != nil {
			return domainerr.Newf(domainerr.KindConflict, "a user with reference %s already exists", ref)
		}

		user := model.NewUser(req, actor, s.now())
		if _, err := s.repo.Create(ctx, user); err != nil {
			return domainerr.Internal("failed to create user", err)
		}

		s.emit(ctx, messaging.TopicCreated, event.UserCreated, user.UserReference, req)
		return nil
	})
	if err != nil {
		return "", err
	}

	s.log.Info("user created", "user_reference", ref, "email", email, "actor", actor)
	return ref, nil
}

// UpdateUser overwrites a user's own profile. Only the user may update themselves.
func (s *UserService) UpdateUser(ctx context.Context, ref string, req model.UpdateUserRequest, actor string) (string, error) {
	defer timer.Track(s.log, "UpdateUser")()

	if err := validation.Join(validation.UUID(ref), validation.UpdateUser(req, s.consent)); err != nil {
		return "", err
	}
	ref, actor = util.CanonicalReference(ref), util.CanonicalReference(actor)

	err := s.mutateSelf(ctx, ref, actor, func(user *model.User) error {
		user.ApplyUpdate(req, actor, s.now())
		return nil
	}, func(user *model.User) {
		s.emit(ctx, messaging.TopicUpdated, event.UserUpdated, user.UserReference, user.ToResponse())
	})
	if err != nil {
		return "", err
	}
	return ref, nil
}

// AddUserToOrganisation adds a membership. Names and references must be new
// to the user's membership set.
func (s *UserService) AddUserToOrganisation(ctx context.Context, ref string, req model.AddOrganisationRequest, actor string) (string, error) {
	defer timer.Track(s.log, "AddUserToOrganisation")()

	if err := validation.Join(validation.UUID(ref), validation.Organisation(req.Organisation)); err != nil {
		return "", err
	}
	ref, actor = util.CanonicalReference(ref), util.CanonicalReference(actor)

	org := req.Organisation
	org.OrganisationReference = util.CanonicalReference(org.OrganisationReference)
	if d := org.Department; d != nil {
		dept := *d
		dept.DepartmentReference = util.CanonicalReference(dept.DepartmentReference)
		org.Department = &dept
	}
	org.OrganisationName = strings.TrimSpace(org.OrganisationName)

	err := s.mutateSelf(ctx, ref, actor, func(user *model.User) error {
		if _, found := user.FindOrganisationByName(org.OrganisationName); found {
			return domainerr.Newf(domainerr.KindConflict, "user is already a member of organisation %q", org.OrganisationName)
		}
		if _, found := user.FindOrganisationByReference(org.OrganisationReference); found {
			return domainerr.Newf(domainerr.KindConflict, "user is already a member of organisation %s", org.OrganisationReference)
		}
		user.AddOrganisation(org)
		user.Touch(actor, s.now())
		return nil
	}, func(user *model.User) {
		s.emit(ctx, messaging.TopicAddedToOrganisation, event.UserAddedToOrganisation, user.UserReference, map[string]any{
			"user_reference": user.UserReference,
			"organisation":   org,
		})
	})
	if err != nil {
		return "", err
	}
	return ref, nil
}

// RemoveUserFromOrganisation drops the membership with the given organisation reference.
func (s *UserService) RemoveUserFromOrganisation(ctx context.Context, ref string, req model.RemoveOrganisationRequest, actor string) (string, error) {
	defer timer.Track(s.log, "RemoveUserFromOrganisation")()

	if err := validation.Join(validation.UUID(ref), validation.RemoveOrganisation(req)); err != nil {
		return "", err
	}
	ref, actor = util.CanonicalReference(ref), util.CanonicalReference(actor)

	orgRef := util.CanonicalReference(req.OrganisationReference)
	var removed model.Organisation

	err := s.mutateSelf(ctx, ref, actor, func(user *model.User) error {
		org, found := user.FindOrganisationByReference(orgRef)
		if !found {
			return domainerr.Newf(domainerr.KindConflict, "user is not a member of organisation %s", orgRef)
		}
		removed = org
		user.RemoveOrganisation(orgRef)
		user.Touch(actor, s.now())
		return nil
	}, func(user *model.User) {
		s.emit(ctx, messaging.TopicRemovedFromOrganisation, event.UserRemovedFromOrganisation, user.UserReference, map[string]any{
			"user_reference": user.UserReference,
			"organisation":   removed,
		})
	})
	if err != nil {
		return "", err
	}
	return ref, nil
}

// GetUserByReference returns NotFound when the user does not exist.
func (s *UserService) GetUserByReference(ctx context.Context, ref string) (*model.User, error) {
	if err := validation.UUID(ref); err != nil {
		return nil, err
	}
	ref = util.CanonicalReference(ref)
	user, err := s.repo.GetByReference(ctx, ref)
	if err != nil {
		return nil, domainerr.Internal("failed to get user", err)
	}
	if user == nil {
		return nil, domainerr.Newf(domainerr.KindNotFound, "user %s not found", ref)
	}
	return user, nil
}

// GetUserByEmail returns (nil, nil) when no user has the address.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if err := validation.Email(email); err != nil {
		return nil, err
	}
	user, err := s.repo.GetByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		return nil, domainerr.Internal("failed to get user by email", err)
	}
	return user, nil
}

// GetAllUsers returns one 1-based page of users.
func (s *UserService) GetAllUsers(ctx context.Context, page int) ([]*model.User, error) {
	users, err := s.repo.GetAll(ctx, normalizePage(page), s.pageSize)
	if err != nil {
		return nil, domainerr.Internal("failed to list users", err)
	}
	return users, nil
}

// FindUsers filters users. An empty query lists all users.
func (s *UserService) FindUsers(ctx context.Context, query model.UserQuery, page int) ([]*model.User, error) {
	if query.IsEmpty() {
		return s.GetAllUsers(ctx, page)
	}

	c := validation.NewCollector()
	if query.Email != "" {
		c.Add(validation.Email(query.Email))
	}
	if query.OrganisationReference != "" {
		c.Add(validation.UUIDField(query.OrganisationReference, validation.FieldOrganisationReference))
		query.OrganisationReference = util.CanonicalReference(query.OrganisationReference)
	}
	if err := c.Err(); err != nil {
		return nil, err
	}

	users, err := s.repo.GetByQuery(ctx, query, normalizePage(page), s.pageSize)
	if err != nil {
		return nil, domainerr.Internal("failed to query users", err)
	}
	return users, nil
}

// PageSize is the number of users per page.
func (s *UserService) PageSize() int { return s.pageSize }

// DeleteUser removes the record. A missing user yields false and no event.
func (s *UserService) DeleteUser(ctx context.Context, ref, actor string) (bool, error) {
	return s.remove(ctx, ref, actor, false)
}

// SoftDeleteUser deactivates the user. A missing or already inactive user
// yields false and no event.
func (s *UserService) SoftDeleteUser(ctx context.Context, ref, actor string) (bool, error) {
	return s.remove(ctx, ref, actor, true)
}

// ReplayParked republishes events whose first publish failed and reports
// how many are still parked afterwards.
func (s *UserService) ReplayParked(ctx context.Context, limit int) (int, int64, error) {
	n, err := s.publisher.Replay(ctx, limit)
	if err != nil {
		return n, 0, domainerr.Internal("failed to replay parked events", err)
	}
	remaining, err := s.publisher.Parked(ctx)
	if err != nil {
		return n, 0, domainerr.Internal("failed to count parked events", err)
	}
	if n > 0 {
		s.log.Info("parked events replayed", "count", n, "remaining", remaining)
	}
	return n, remaining, nil
}

// ConsentTemplate returns a copy of the consent rules requests are checked against.
func (s *UserService) ConsentTemplate() map[string]bool {
	out := make(map[string]bool, len(s.consent))
	for k, v := range s.consent {
		out[k] = v
	}
	return out
}

func (s *UserService) remove(ctx context.Context, ref, actor string, soft bool) (bool, error) {
	if err := validation.UUID(ref); err != nil {
		return false, err
	}
	ref, actor = util.CanonicalReference(ref), util.CanonicalReference(actor)
	if err := s.authorizeActor(ctx, actor); err != nil {
		return false, err
	}

	var changed bool
	err := s.withLock(ctx, "user:"+ref, func() error {
		var err error
		if soft {
			changed, err = s.repo.SoftDelete(ctx, ref, actor)
		} else {
			changed, err = s.repo.Delete(ctx, ref)
		}
		if err != nil {
			return domainerr.Internal("failed to delete user", err)
		}
		if !changed {
			return nil
		}

		name := event.UserDeleted
		if soft {
			name = event.UserDeactivated
		}
		s.emit(ctx, messaging.TopicDeleted, name, ref, map[string]any{
			"user_reference":            ref,
			"soft":                      soft,
			"updated_by_user_reference": actor,
		})
		return nil
	})
	if err != nil {
		return false, err
	}
	if changed {
		s.log.Info("user removed", "user_reference", ref, "soft", soft, "actor", actor)
	}
	return changed, nil
}

// mutateSelf runs the self-service flow shared by update and membership
// changes: authorize, lock, load, mutate, persist, emit.
func (s *UserService) mutateSelf(ctx context.Context, ref, actor string, mutate func(*model.User) error, emit func(*model.User)) error {
	if util.CanonicalReference(ref) != util.CanonicalReference(actor) {
		return domainerr.New(domainerr.KindUnAuthorized, "users may only change their own record")
	}

	return s.withLock(ctx, "user:"+ref, func() error {
		user, err := s.repo.GetByReference(ctx, ref)
		if err != nil {
			return domainerr.Internal("failed to get user", err)
		}
		if user == nil {
			return domainerr.Newf(domainerr.KindNotFound, "user %s not found", ref)
		}

		if err := mutate(user); err != nil {
			return err
		}

		updated, err := s.repo.Update(ctx, ref, user)
		if err != nil {
			return domainerr.Internal("failed to update user", err)
		}
		if updated == "" {
			return domainerr.Newf(domainerr.KindNotFound, "user %s not found", ref)
		}

		emit(user)
		return nil
	})
}

func (s *UserService) authorizeActor(ctx context.Context, actor string) error {
	actor = util.CanonicalReference(actor)
	if actor == "" {
		return domainerr.New(domainerr.KindUnAuthorized, "current user reference is required")
	}
	current, err := s.repo.GetByReference(ctx, actor)
	if err != nil {
		return domainerr.Internal("failed to resolve current user", err)
	}
	if current == nil {
		return domainerr.Newf(domainerr.KindUnAuthorized, "current user %s does not exist", actor)
	}
	return nil
}

func (s *UserService) withLock(ctx context.Context, key string, fn func() error) error {
	if s.locker == nil {
		return fn()
	}
	lock := s.locker.NewLock(key)
	ok, err := lock.Acquire(ctx)
	if err != nil {
		return domainerr.Internal("failed to acquire lock", err)
	}
	if !ok {
		return domainerr.New(domainerr.KindConflict, "another change to this user is in progress, retry shortly")
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn("failed to release lock", "key", key, "error", err)
		}
	}()
	return fn()
}

// emit publishes after a successful persist. A failed publish does not undo
// the change: the event is parked for replay and the failure logged.
func (s *UserService) emit(ctx context.Context, topic messaging.Topic, name, userRef string, payload any) {
	e, err := s.events.New(name, event.TypeUser, userRef, payload)
	if err != nil {
		s.log.Error("failed to build event", "event", name, "user_reference", userRef, "error", err)
		return
	}
	raw, err := e.Serialize()
	if err != nil {
		s.log.Error("failed to serialize event", "event", name, "user_reference", userRef, "error", err)
		return
	}

	if err := s.publish(ctx, topic, raw); err != nil {
		s.log.Error("event publish failed, parking", "event", name, "event_reference", e.Reference, "user_reference", userRef, "error", err)
		if perr := s.publisher.Park(context.WithoutCancel(ctx), topic, raw, err); perr != nil {
			s.log.Error("failed to park event", "event", name, "event_reference", e.Reference, "error", perr)
		}
	}
}

func (s *UserService) publish(ctx context.Context, topic messaging.Topic, raw string) error {
	switch topic {
	case messaging.TopicCreated:
		return s.publisher.PublishCreated(ctx, raw)
	case messaging.TopicUpdated:
		return s.publisher.PublishUpdated(ctx, raw)
	case messaging.TopicAddedToOrganisation:
		return s.publisher.PublishAddedToOrganisation(ctx, raw)
	case messaging.TopicRemovedFromOrganisation:
		return s.publisher.PublishRemovedFromOrganisation(ctx, raw)
	case messaging.TopicDeleted:
		return s.publisher.PublishDeleted(ctx, raw)
	}
	return fmt.Errorf("unknown topic %q", topic)
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
