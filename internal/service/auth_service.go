package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/blogging-tool/internal/auth"
	"github.com/blogging-tool/internal/models"
	"github.com/blogging-tool/internal/observability"
	"github.com/blogging-tool/internal/repository"
	"github.com/blogging-tool/internal/validation"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// authService is the concrete implementation of AuthService
type authService struct {
	users     repository.UserRepository
	validator *validation.Validator
	cost      int
	opts      *options
	log       zerolog.Logger
}

func newAuthService(repos *repository.Repositories, o *options, log zerolog.Logger) *authService {
	return &authService{
		users:     repos.User,
		validator: o.validator,
		cost:      o.bcryptCost,
		opts:      o,
		log:       log.With().Str("service", "auth").Logger(),
	}
}

// Register creates a local account. It does not log the user in.
func (s *authService) Register(ctx context.Context, form *validation.RegisterForm) (*models.User, error) {
	if errs := s.validator.ValidateRegistration(form); len(errs) > 0 {
		return nil, errs
	}

	exists, err := s.users.EmailExists(ctx, form.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		s.log.Info().Str("email", form.Email).Msg("Registration refused, email already in use")
		return nil, ErrRegistration
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), s.cost)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to hash password")
		return nil, ErrRegistration
	}
	hashed := string(hash)

	user := &models.User{
		UserName:  form.UserName,
		Email:     form.Email,
		Password:  &hashed,
		CreatedAt: s.opts.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent registration may have taken the address after the check
		if exists, _ := s.users.EmailExists(ctx, form.Email); exists {
			return nil, ErrRegistration
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	observability.Registrations.Inc()
	s.log.Info().Int64("user_id", user.ID).Msg("User registered")
	return user, nil
}

// Login checks email and password
func (s *authService) Login(ctx context.Context, form *validation.LoginForm) (*models.User, error) {
	if errs := s.validator.ValidateLogin(form); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.users.GetByEmail(ctx, form.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || user.IsFederated() {
		observability.Logins.WithLabelValues("local", "failure").Inc()
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(form.Password)); err != nil {
		observability.Logins.WithLabelValues("local", "failure").Inc()
		return nil, ErrInvalidCredentials
	}

	observability.Logins.WithLabelValues("local", "success").Inc()
	return user, nil
}

// LoginWithIdentity finds or creates the account for a provider-asserted email
func (s *authService) LoginWithIdentity(ctx context.Context, identity *auth.Identity) (*models.User, error) {
	email := validation.NormalizeEmail(identity.Email)
	if email == "" {
		return nil, auth.ErrNoEmail
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user != nil {
		observability.Logins.WithLabelValues("oauth", "success").Inc()
		return user, nil
	}

	user = &models.User{
		UserName:  displayName(identity.Name, email),
		Email:     email,
		CreatedAt: s.opts.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Two callbacks for the same new account can race; the loser reads the winner's row
		existing, getErr := s.users.GetByEmail(ctx, email)
		if getErr == nil && existing != nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create federated user: %w", err)
	}

	observability.Logins.WithLabelValues("oauth", "success").Inc()
	s.log.Info().Int64("user_id", user.ID).Msg("Federated user created")
	return user, nil
}

// UserByID re-reads the account behind a session. A nil user means it no longer exists.
func (s *authService) UserByID(ctx context.Context, id int64) (*models.User, error) {
	if id == 0 {
		return nil, nil
	}
	return s.users.GetByID(ctx, id)
}

func displayName(name, email string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	local, _, _ := strings.Cut(email, "@")
	return local
}
