package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/movie-review/internal/model"
	"github.com/iliyamo/movie-review/internal/queue"
	"github.com/iliyamo/movie-review/internal/repository"
	"github.com/iliyamo/movie-review/internal/utils"
)

// User-facing messages shared by signup, login and the settings pages.
const (
	MsgFillAllFields   = "Please fill in all fields."
	MsgInvalidEmail    = "Please enter a valid email address."
	MsgPasswordsDiffer = "Passwords do not match."
	MsgPasswordShort   = "Password must be at least 6 characters long."
	MsgEmailTaken      = "An account with this email already exists."
	MsgInvalidRole     = "Invalid role selected."
	MsgBadCredentials  = "Invalid email or password."
	MsgWrongPassword   = "Current password is incorrect."
	MsgAccountMissing  = "Account not found."
)

// passwordMessages maps validator tags to the message shown for them, in
// the order they are checked.
var passwordMessages = []struct{ tag, msg string }{
	{"required", MsgFillAllFields},
	{"account_email", MsgInvalidEmail},
	{"eqfield", MsgPasswordsDiffer},
	{"min", MsgPasswordShort},
}

// SignupInput is the signup form.  Role may be empty, meaning "user".
type SignupInput struct {
	FirstName       string `json:"first_name" form:"first_name" validate:"required"`
	LastName        string `json:"last_name" form:"last_name" validate:"required"`
	Email           string `json:"email" form:"email" validate:"required,account_email"`
	Password        string `json:"password" form:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" validate:"required,eqfield=Password"`
	Role            string `json:"role" form:"role"`
}

// LoginInput is the login form.
type LoginInput struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// ProfileInput carries the settings form.  Nil fields are left unchanged.
type ProfileInput struct {
	FirstName *string
	LastName  *string
	Email     *string
}

// PasswordInput is the change-password form.
type PasswordInput struct {
	CurrentPassword string `json:"current_password" form:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" form:"new_password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// AuthService implements signup, login and account self-service.
type AuthService struct {
	accounts  *repository.AccountRepo
	events    EventPublisher
	cost      int
	dummyHash string
}

// NewAuthService wires the service.  cost is the bcrypt cost for new hashes.
func NewAuthService(accounts *repository.AccountRepo, events EventPublisher, cost int) *AuthService {
	// compared against on unknown emails so both failure paths cost a bcrypt check
	dummy, err := utils.HashPassword("movie-review-dummy", cost)
	if err != nil {
		log.Warn().Err(err).Msg("could not prepare dummy password hash")
	}
	return &AuthService{accounts: accounts, events: events, cost: cost, dummyHash: dummy}
}

func checkPasswordRules(in any) error {
	fe, err := firstFailure(in, "required", "account_email", "eqfield", "min")
	if err != nil {
		return err
	}
	if fe == nil {
		return nil
	}
	for _, m := range passwordMessages {
		if fe.Tag() == m.tag {
			return validationError("%s", m.msg)
		}
	}
	return validationError("%s", MsgFillAllFields)
}

// Signup validates in and creates the account.  Checks run in this order:
// blank fields, email shape, password confirmation, password length, email
// uniqueness across every account kind, role.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*model.Account, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.Role = strings.TrimSpace(in.Role)
	if err := checkPasswordRules(&in); err != nil {
		return nil, err
	}
	exists, err := s.accounts.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, conflictError("%s", MsgEmailTaken)
	}
	kind := model.KindUser
	if in.Role != "" {
		kind = model.Kind(strings.ToLower(in.Role))
	}
	if !kind.Valid() {
		return nil, validationError("%s", MsgInvalidRole)
	}

	a := &model.Account{Kind: kind, FirstName: in.FirstName, LastName: in.LastName, Email: in.Email}
	if err := s.accounts.Create(ctx, a, in.Password, s.cost); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, conflictError("%s", MsgEmailTaken)
		}
		return nil, err
	}
	emit(ctx, s.events, queue.Event{Type: queue.AccountRegistered, AccountID: a.ID,
		Title: a.FullName(), Detail: string(a.Kind)})
	return a, nil
}

// Login checks credentials with a single lookup across all account kinds.
// Unknown email and wrong password fail with the same message.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*model.Account, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || in.Password == "" {
		return nil, validationError("%s", MsgFillAllFields)
	}
	a, err := s.accounts.GetByEmail(ctx, in.Email)
	if errors.Is(err, repository.ErrAccountNotFound) {
		if s.dummyHash != "" {
			utils.VerifyPassword(s.dummyHash, in.Password)
		}
		return nil, authError(MsgBadCredentials)
	}
	if err != nil {
		return nil, err
	}
	if !utils.VerifyPassword(a.PasswordHash, in.Password) {
		return nil, authError(MsgBadCredentials)
	}
	if utils.NeedsRehash(a.PasswordHash, s.cost) {
		if err := s.accounts.UpdatePassword(ctx, a.ID, in.Password, s.cost); err != nil {
			log.Warn().Err(err).Uint64("account_id", a.ID).Msg("password rehash failed")
		}
	}
	return a, nil
}

// Account loads the account behind a session.
func (s *AuthService) Account(ctx context.Context, id uint64) (*model.Account, error) {
	a, err := s.accounts.GetByID(ctx, id)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, notFoundError(MsgAccountMissing)
	}
	return a, err
}

// UpdateProfile overwrites the supplied fields of account id and returns the
// updated account.
func (s *AuthService) UpdateProfile(ctx context.Context, id uint64, in ProfileInput) (*model.Account, error) {
	a, err := s.Account(ctx, id)
	if err != nil {
		return nil, err
	}
	first, last, email := a.FirstName, a.LastName, a.Email
	if in.FirstName != nil {
		first = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		last = strings.TrimSpace(*in.LastName)
	}
	if in.Email != nil {
		email = strings.TrimSpace(*in.Email)
	}
	if first == "" || last == "" || email == "" {
		return nil, validationError("%s", MsgFillAllFields)
	}
	if !ValidEmail(email) {
		return nil, validationError("%s", MsgInvalidEmail)
	}
	if repository.NormalizeEmail(email) != a.Email {
		exists, err := s.accounts.EmailExists(ctx, email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, conflictError("%s", MsgEmailTaken)
		}
	}
	if err := s.accounts.UpdateProfile(ctx, id, first, last, email); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return nil, conflictError("%s", MsgEmailTaken)
		case errors.Is(err, repository.ErrAccountNotFound):
			return nil, notFoundError(MsgAccountMissing)
		}
		return nil, err
	}
	return s.Account(ctx, id)
}

// ChangePassword replaces the password of account id after verifying the
// current one.
func (s *AuthService) ChangePassword(ctx context.Context, id uint64, in PasswordInput) error {
	if err := checkPasswordRules(&in); err != nil {
		return err
	}
	a, err := s.Account(ctx, id)
	if err != nil {
		return err
	}
	if !utils.VerifyPassword(a.PasswordHash, in.CurrentPassword) {
		return authError(MsgWrongPassword)
	}
	return s.accounts.UpdatePassword(ctx, id, in.NewPassword, s.cost)
}

// EnsureAdmin creates an admin account for email unless one already exists.
// It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	exists, err := s.accounts.EmailExists(ctx, email)
	if err != nil || exists {
		return false, err
	}
	if !ValidEmail(strings.TrimSpace(email)) {
		return false, validationError("%s", MsgInvalidEmail)
	}
	if len(password) < 6 {
		return false, validationError("%s", MsgPasswordShort)
	}
	a := &model.Account{Kind: model.KindAdmin, FirstName: "Site", LastName: "Admin", Email: email}
	if err := s.accounts.Create(ctx, a, password, s.cost); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
