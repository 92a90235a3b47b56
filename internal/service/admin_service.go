package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shinyyama/pharmacy-admin-backend/internal/identity"
	"github.com/shinyyama/pharmacy-admin-backend/internal/model"
	"github.com/shinyyama/pharmacy-admin-backend/internal/repository"
	"github.com/shinyyama/pharmacy-admin-backend/internal/reqctx"
	"github.com/shinyyama/pharmacy-admin-backend/internal/session"
)

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	Location    string
}

// AdminService is the staff auth boundary: it owns sign-up, sign-in and the
// session lifecycle.
type AdminService interface {
	Register(ctx context.Context, in RegisterInput) (*model.Admin, error)
	Login(ctx context.Context, email, password string) (*session.Session, *model.Admin, error)
	Logout(ctx context.Context, token string) error
	// Authenticate resolves a bearer token into a session. Stored session ids
	// are tried first, then Firebase ID tokens.
	Authenticate(ctx context.Context, token string) (*session.Session, error)
	Me(ctx context.Context, uid string) (*model.Admin, error)
	UpdateLocation(ctx context.Context, sess *session.Session, location string) (*model.Admin, error)
}

type adminService struct {
	repo       repository.AdminRepository
	idp        identity.Provider
	sessions   session.Store
	sessionTTL time.Duration
	activity   ActivityService
	now        func() time.Time
}

func NewAdminService(repo repository.AdminRepository, idp identity.Provider, sessions session.Store, sessionTTL time.Duration, activity ActivityService) AdminService {
	if sessionTTL <= 0 {
		sessionTTL = 12 * time.Hour
	}
	return &adminService{
		repo:       repo,
		idp:        idp,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		activity:   activity,
		now:        time.Now,
	}
}

func (in RegisterInput) validate() error {
	if !strings.Contains(in.Email, "@") {
		return invalid("a valid email is required")
	}
	if len(in.Password) < 6 {
		return invalid("password must be at least 6 characters")
	}
	if strings.TrimSpace(in.DisplayName) == "" {
		return invalid("displayName is required")
	}
	if strings.TrimSpace(in.Location) == "" {
		return invalid("location is required")
	}
	return nil
}

func (s *adminService) Register(ctx context.Context, in RegisterInput) (*model.Admin, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := in.validate(); err != nil {
		return nil, err
	}
	user, err := s.idp.CreateUser(ctx, in.Email, in.Password, strings.TrimSpace(in.DisplayName))
	if err != nil {
		if errors.Is(err, identity.ErrEmailExists) {
			return nil, invalid("email already registered")
		}
		return nil, fmt.Errorf("register: %w", err)
	}
	now := s.now()
	admin := &model.Admin{
		UID:         user.UID,
		Email:       in.Email,
		DisplayName: strings.TrimSpace(in.DisplayName),
		Location:    strings.TrimSpace(in.Location),
		Role:        model.RoleAdmin,
		CreatedAt:   now,
		LastLogin:   now,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		if delErr := s.idp.DeleteUser(ctx, user.UID); delErr != nil {
			log.Printf("[auth] rid=%s uid=%s rollback failed: %v", reqctx.RID(ctx), user.UID, delErr)
		}
		return nil, fmt.Errorf("save admin profile: %w", err)
	}
	s.activity.Record(reqctx.WithActor(ctx, admin.UID), "admin.registered", EntityAdmin, admin.UID, admin.Email)
	return admin, nil
}

func (s *adminService) Login(ctx context.Context, email, password string) (*session.Session, *model.Admin, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, nil, invalid("email and password are required")
	}
	idToken, err := s.idp.SignIn(ctx, email, password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return nil, nil, fmt.Errorf("login: %w", ErrUnauthorized)
		}
		return nil, nil, fmt.Errorf("login: %w", err)
	}
	user, err := s.idp.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, nil, fmt.Errorf("login: %w", ErrUnauthorized)
	}
	admin, err := s.repo.FindByUID(ctx, user.UID)
	if err != nil {
		return nil, nil, wrap(err, "admin profile "+user.UID)
	}
	now := s.now()
	if err := s.repo.TouchLastLogin(ctx, admin.UID, now); err != nil {
		log.Printf("[auth] rid=%s uid=%s touch last login: %v", reqctx.RID(ctx), admin.UID, err)
	} else {
		admin.LastLogin = now
	}
	sess := session.New(admin.UID, admin.Email, admin.DisplayName, admin.Location, now, s.sessionTTL)
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, nil, fmt.Errorf("save session: %w", err)
	}
	log.Printf("[auth] rid=%s uid=%s login ok", reqctx.RID(ctx), admin.UID)
	return sess, admin, nil
}

func (s *adminService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *adminService) Authenticate(ctx context.Context, token string) (*session.Session, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	sess, err := s.sessions.Get(ctx, token)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, session.ErrNotFound) {
		return nil, fmt.Errorf("load session: %w", err)
	}
	user, err := s.idp.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	admin, err := s.repo.FindByUID(ctx, user.UID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("admin profile: %w", err)
	}
	// request-scoped; never stored
	return session.New(admin.UID, admin.Email, admin.DisplayName, admin.Location, s.now(), s.sessionTTL), nil
}

func (s *adminService) Me(ctx context.Context, uid string) (*model.Admin, error) {
	if uid == "" {
		return nil, ErrUnauthorized
	}
	admin, err := s.repo.FindByUID(ctx, uid)
	if err != nil {
		return nil, wrap(err, "admin profile "+uid)
	}
	return admin, nil
}

func (s *adminService) UpdateLocation(ctx context.Context, sess *session.Session, loc string) (*model.Admin, error) {
	if sess == nil {
		return nil, ErrUnauthorized
	}
	loc = strings.TrimSpace(loc)
	if loc == "" {
		return nil, invalid("location is required")
	}
	if err := s.repo.UpdateLocation(ctx, sess.UID, loc); err != nil {
		return nil, wrap(err, "update location "+sess.UID)
	}
	updated := *sess
	updated.Location = loc
	if _, err := s.sessions.Get(ctx, sess.ID); err == nil {
		if err := s.sessions.Save(ctx, &updated); err != nil {
			log.Printf("[auth] rid=%s uid=%s refresh session: %v", reqctx.RID(ctx), sess.UID, err)
		}
	}
	s.activity.Record(ctx, "admin.location", EntityAdmin, sess.UID, loc)
	return s.Me(ctx, sess.UID)
}
