// Package service contains the business logic layer: account/session
// management, the repository registry, the audit recorder, and the dashboard
// statistics composer. Handlers translate HTTP to these calls; repositories
// do the storage. Services return domain errors from the apperror package.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/forgeworld/forge/internal/apperror"
	"github.com/forgeworld/forge/internal/auth"
	"github.com/forgeworld/forge/internal/model"
	"github.com/forgeworld/forge/internal/repository"
)

// AdminUserID is the token subject for the synthesized administrator. It can
// never collide with a stored user ID (xids are 20 characters).
const AdminUserID = "admin"

// Validation bounds for profile fields.
const (
	MaxUsernameLength    = 40
	MaxDisplayNameLength = 100
	MaxBioLength         = 512
	// MaxAvatarBytes bounds an encoded avatar payload (data URL).
	MaxAvatarBytes = 1 << 20
)

// AdminConfig describes the single fixed administrative account. It lives in
// configuration only — never in the users table. PasswordHash is a bcrypt
// hash computed at startup; the plaintext is discarded immediately.
type AdminConfig struct {
	Email        string
	Username     string
	DisplayName  string
	PasswordHash string
}

// AccountService owns login/signup/logout transitions and profile state.
// Every successful identity event is flushed to the store and recorded as a
// session cookie before the call returns.
type AccountService struct {
	users     repository.UserRepository
	repos     repository.RepoRepository
	sessions  repository.SessionRepository
	audit     *AuditService
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	admin     AdminConfig
	logger    *slog.Logger
}

// NewAccountService wires the account service. admin may be zero-valued, in
// which case no administrative login exists.
func NewAccountService(
	users repository.UserRepository,
	repos repository.RepoRepository,
	sessions repository.SessionRepository,
	audit *AuditService,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	admin AdminConfig,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		users:     users,
		repos:     repos,
		sessions:  sessions,
		audit:     audit,
		passwords: passwords,
		tokens:    tokens,
		admin:     admin,
		logger:    logger,
	}
}

// AuthResult bundles the authenticated profile with the issued session
// token so the handler can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// adminProfile synthesizes the administrator's profile. It is rebuilt on
// every access rather than stored, so nothing in the registry can shadow it.
func (s *AccountService) adminProfile() *model.User {
	return &model.User{
		ID:          AdminUserID,
		Username:    s.admin.Username,
		DisplayName: s.admin.DisplayName,
		Email:       s.admin.Email,
		IsAdmin:     true,
	}
}

// Login authenticates an email/password pair.
//
// The fixed administrative credentials are checked first; a full match
// yields the synthesized admin profile. Otherwise the registry is consulted:
// an unknown email is ErrNotFound ("account not found"), a password mismatch
// is ErrUnauthorized ("invalid credentials"). Either failure is recorded as
// a SECURITY audit entry (email only — never the attempted password).
func (s *AccountService) Login(ctx context.Context, email, password, userAgent string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	if s.isAdmin(email, password) {
		user := s.adminProfile()
		result, err := s.establishSession(ctx, user, userAgent)
		if err != nil {
			return nil, err
		}
		s.logger.Info("admin logged in", slog.String("email", email))
		return result, nil
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.audit.RecordFailedLogin(ctx, email)
		}
		return nil, err
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		s.audit.RecordFailedLogin(ctx, email)
		return nil, apperror.Unauthorized("invalid credentials")
	}

	result, err := s.establishSession(ctx, user, userAgent)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return result, nil
}

// isAdmin reports whether the pair matches the fixed administrative
// credentials. Both parts must match; a wrong password on the admin email
// falls through to the (empty) registry lookup, mirroring the account-not-
// found behaviour for the unregistered admin address.
func (s *AccountService) isAdmin(email, password string) bool {
	if s.admin.Email == "" || email != s.admin.Email {
		return false
	}
	return s.passwords.Verify(s.admin.PasswordHash, password) == nil
}

// Signup registers a new account and establishes its session.
//
// A duplicate email fails with ErrConflict and leaves the registry
// unchanged. The administrative email is reserved and also reported as a
// conflict. A SIGNUP audit entry records the event — email and username
// only, never the credential.
func (s *AccountService) Signup(ctx context.Context, email, password, username, userAgent string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)

	if email == "" || !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("email", "a valid email is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if len(username) > MaxUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d characters or less", MaxUsernameLength))
	}

	if s.admin.Email != "" && email == s.admin.Email {
		return nil, apperror.Conflict("account", email)
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict("account", email)
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/account: checking email %s: %w", email, err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{
		Username:     username,
		DisplayName:  username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("service/account: creating user %s: %w", email, err)
	}

	s.audit.RecordSignup(ctx, email, username)

	result, err := s.establishSession(ctx, user, userAgent)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user signed up",
		slog.String("userID", user.ID),
		slog.String("username", username),
	)

	return result, nil
}

// establishSession issues the token and records the session cookie,
// expiring any prior ACTIVE cookie for the same email first. This is the
// single place the one-active-cookie-per-email invariant is enforced.
func (s *AccountService) establishSession(ctx context.Context, user *model.User, userAgent string) (*AuthResult, error) {
	token, err := s.tokens.Generate(auth.Identity{UserID: user.ID, Admin: user.IsAdmin})
	if err != nil {
		return nil, fmt.Errorf("service/account: generating token for %s: %w", user.ID, err)
	}

	repoCount, err := s.repos.CountReposByOwner(ctx, user.Username)
	if err != nil {
		return nil, fmt.Errorf("service/account: counting repositories for %s: %w", user.Username, err)
	}

	if _, err := s.sessions.ExpireActiveSessions(ctx, user.Email); err != nil {
		return nil, fmt.Errorf("service/account: expiring prior sessions: %w", err)
	}

	cookie := &model.SessionCookie{
		Email:     user.Email,
		Username:  user.Username,
		UserAgent: userAgent,
		AvatarURL: user.AvatarURL,
		RepoCount: repoCount,
	}
	if err := s.sessions.CreateSession(ctx, cookie); err != nil {
		return nil, fmt.Errorf("service/account: recording session cookie: %w", err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Logout expires the identity's ACTIVE session cookie. Profile edits are
// written through as they happen, so there is nothing further to flush.
// Logout is idempotent: a session whose account was deleted in the meantime
// still "succeeds".
func (s *AccountService) Logout(ctx context.Context, id auth.Identity) error {
	user, err := s.Profile(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil
		}
		return err
	}

	if _, err := s.sessions.ExpireActiveSessions(ctx, user.Email); err != nil {
		return fmt.Errorf("service/account: expiring session for %s: %w", user.Email, err)
	}

	s.logger.Info("user logged out", slog.String("username", user.Username))
	return nil
}

// Profile resolves the identity to its profile: the synthesized
// administrator, or the stored user row.
func (s *AccountService) Profile(ctx context.Context, id auth.Identity) (*model.User, error) {
	if id.Admin && id.UserID == AdminUserID {
		return s.adminProfile(), nil
	}
	return s.users.GetUserByID(ctx, id.UserID)
}

// ProfileUpdate carries the editable profile fields. Nil means "leave
// unchanged".
type ProfileUpdate struct {
	DisplayName *string
	Bio         *string
	Location    *string
	Website     *string
	AvatarURL   *string
}

// UpdateProfile merges the update into the identity's registry entry and
// persists it. The administrator's profile is fixed configuration and
// cannot be edited.
func (s *AccountService) UpdateProfile(ctx context.Context, id auth.Identity, upd ProfileUpdate) (*model.User, error) {
	if id.Admin {
		return nil, apperror.Forbidden("the administrator profile is fixed")
	}

	user, err := s.users.GetUserByID(ctx, id.UserID)
	if err != nil {
		return nil, err
	}

	if upd.DisplayName != nil {
		name := strings.TrimSpace(*upd.DisplayName)
		if len(name) > MaxDisplayNameLength {
			return nil, apperror.ValidationFailed("displayName",
				fmt.Sprintf("display name must be %d characters or less", MaxDisplayNameLength))
		}
		user.DisplayName = name
	}
	if upd.Bio != nil {
		if len(*upd.Bio) > MaxBioLength {
			return nil, apperror.ValidationFailed("bio",
				fmt.Sprintf("bio must be %d characters or less", MaxBioLength))
		}
		user.Bio = *upd.Bio
	}
	if upd.Location != nil {
		user.Location = strings.TrimSpace(*upd.Location)
	}
	if upd.Website != nil {
		user.Website = strings.TrimSpace(*upd.Website)
	}
	if upd.AvatarURL != nil {
		if err := validateAvatar(*upd.AvatarURL); err != nil {
			return nil, err
		}
		user.AvatarURL = *upd.AvatarURL
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("service/account: updating profile %s: %w", user.ID, err)
	}

	s.logger.Info("profile updated", slog.String("userID", user.ID))
	return user, nil
}

// UpdateAvatar replaces the identity's avatar with an encoded image payload
// (data URL) or a plain URL, as produced by the camera/file capture flow.
func (s *AccountService) UpdateAvatar(ctx context.Context, id auth.Identity, avatar string) (*model.User, error) {
	return s.UpdateProfile(ctx, id, ProfileUpdate{AvatarURL: &avatar})
}

// validateAvatar accepts either an encoded data URL image or an http(s) URL,
// bounded in size.
func validateAvatar(avatar string) error {
	if avatar == "" {
		return nil
	}
	if len(avatar) > MaxAvatarBytes {
		return apperror.ValidationFailed("avatar", "avatar image is too large")
	}
	if strings.HasPrefix(avatar, "data:image/") ||
		strings.HasPrefix(avatar, "http://") ||
		strings.HasPrefix(avatar, "https://") {
		return nil
	}
	return apperror.ValidationFailed("avatar", "avatar must be an image data URL or an http(s) URL")
}

// ListUsers returns every registered account. Admin console only; the
// implicit administrator is not included (it has no row).
func (s *AccountService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.ListUsers(ctx)
}

// DeleteUser removes a registration by email and expires its sessions. The
// removal is recorded as a SYSTEM audit entry. Repositories owned by the
// account are left in place.
func (s *AccountService) DeleteUser(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperror.ValidationFailed("email", "email is required")
	}

	if err := s.users.DeleteUserByEmail(ctx, email); err != nil {
		return err
	}
	if _, err := s.sessions.ExpireActiveSessions(ctx, email); err != nil {
		return fmt.Errorf("service/account: expiring sessions for %s: %w", email, err)
	}

	s.audit.RecordSystem(ctx, fmt.Sprintf("registration removed: %s", email))
	s.logger.Info("registration removed", slog.String("email", email))
	return nil
}
