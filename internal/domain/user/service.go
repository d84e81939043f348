package user

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/hms/hms/internal/platform/apperror"
	"github.com/hms/hms/internal/platform/auth"
)

var validRoles = map[string]bool{
	RoleAdmin:  true,
	RoleDoctor: true,
	RoleNurse:  true,
}

const minPasswordLen = 8

// Service implements staff management and authentication.
type Service struct {
	repo   Repository
	jwtCfg auth.JWTConfig
}

func NewService(repo Repository, jwtCfg auth.JWTConfig) *Service {
	return &Service{repo: repo, jwtCfg: jwtCfg}
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t")
}

// Create registers a staff user. The plaintext password is hashed and
// discarded before the user is persisted.
func (s *Service) Create(ctx context.Context, u *User) (*User, error) {
	if !validEmail(u.Email) {
		return nil, apperror.Validation("invalid email")
	}
	if u.FullName == "" {
		return nil, apperror.Validation("full_name is required")
	}
	if !validRoles[u.Role] {
		return nil, apperror.Validation("invalid role: %s", u.Role)
	}
	if len(u.Password) < minPasswordLen {
		return nil, apperror.Validation("password must be at least %d characters", minPasswordLen)
	}

	if _, err := s.repo.GetByEmail(ctx, u.Email); err == nil {
		return nil, apperror.Conflict("user with email %s already exists", u.Email)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.Internal(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	u.PasswordHash = string(hash)
	u.Password = ""
	u.Active = true

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, apperror.Wrap(err, "user")
	}
	return s.Get(ctx, u.ID)
}

// Login verifies credentials and returns a signed token with the user.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil, apperror.Unauthorized("invalid credentials")
		}
		return "", nil, apperror.Internal(err)
	}
	if !u.Active {
		return "", nil, apperror.Unauthorized("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, apperror.Unauthorized("invalid credentials")
	}

	token, err := auth.IssueToken(s.jwtCfg, u.ID.String(), u.FullName, u.Role)
	if err != nil {
		return "", nil, apperror.Internal(err)
	}
	return token, u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Wrap(err, "user")
	}
	return u, nil
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*User, int, error) {
	if f.Role != "" && !validRoles[f.Role] {
		return nil, 0, apperror.Validation("invalid role: %s", f.Role)
	}
	items, total, err := s.repo.List(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, apperror.Wrap(err, "user")
	}
	return items, total, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, upd Update) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Wrap(err, "user")
	}

	if upd.Email != nil && *upd.Email != u.Email {
		if !validEmail(*upd.Email) {
			return nil, apperror.Validation("invalid email")
		}
		if _, err := s.repo.GetByEmail(ctx, *upd.Email); err == nil {
			return nil, apperror.Conflict("user with email %s already exists", *upd.Email)
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.Internal(err)
		}
		u.Email = *upd.Email
	}
	if upd.Password != nil {
		if len(*upd.Password) < minPasswordLen {
			return nil, apperror.Validation("password must be at least %d characters", minPasswordLen)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		u.PasswordHash = string(hash)
	}
	if upd.FullName != nil {
		if *upd.FullName == "" {
			return nil, apperror.Validation("full_name cannot be empty")
		}
		u.FullName = *upd.FullName
	}
	if upd.Role != nil {
		if !validRoles[*upd.Role] {
			return nil, apperror.Validation("invalid role: %s", *upd.Role)
		}
		u.Role = *upd.Role
	}
	if upd.DepartmentID != nil {
		u.DepartmentID = upd.DepartmentID
	}
	if upd.Specialty != nil {
		u.Specialty = upd.Specialty
	}
	if upd.LicenseNumber != nil {
		u.LicenseNumber = upd.LicenseNumber
	}
	if upd.Active != nil {
		u.Active = *upd.Active
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, apperror.Wrap(err, "user")
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return apperror.Wrap(err, "user")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Wrap(err, "user")
	}
	return nil
}
