package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/taskapi/internal/common"
	"github.com/dmitrijs2005/taskapi/internal/logging"
	"github.com/dmitrijs2005/taskapi/internal/server/auth"
	"github.com/dmitrijs2005/taskapi/internal/server/models"
	"github.com/dmitrijs2005/taskapi/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskapi/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskapi/internal/server/repositories/users"
)

// Fields a user may change about themselves.
const (
	FieldFullName = "fullName"
	FieldEmail    = "email"
	FieldPassword = "password"
)

var updatableFields = map[string]bool{
	FieldFullName: true,
	FieldEmail:    true,
	FieldPassword: true,
}

type UserService struct {
	repos  repomanager.RepositoryManager
	creds  *auth.Credentials
	logger logging.Logger
}

func NewUserService(m repomanager.RepositoryManager, creds *auth.Credentials, l logging.Logger) *UserService {
	return &UserService{
		repos:  m,
		creds:  creds,
		logger: l.With("module", "user_service"),
	}
}

// Create registers a new user and returns it with a freshly issued token.
func (s *UserService) Create(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.register(ctx, email, password, false)
	if err != nil {
		return nil, "", err
	}

	token, err := s.creds.IssueToken(user.ID, user.IsAdmin)
	if err != nil {
		return nil, "", internalError(ctx, s.logger, "Could not create user", err)
	}

	return user, token, nil
}

// CreateAdmin registers a user with the admin flag set. No token is issued.
func (s *UserService) CreateAdmin(ctx context.Context, email, password string) (*models.User, error) {
	return s.register(ctx, email, password, true)
}

func (s *UserService) register(ctx context.Context, email, password string, isAdmin bool) (*models.User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	repo := s.repos.Users()

	_, err := repo.GetByEmail(ctx, email)
	if err == nil {
		return nil, common.ErrEmailInUse
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, internalError(ctx, s.logger, "Could not create user", err)
	}

	hash, err := s.creds.HashPassword(password)
	if err != nil {
		return nil, internalError(ctx, s.logger, "Could not create user", err)
	}

	user, err := repo.Create(ctx, &models.User{Email: email, Password: hash, IsAdmin: isAdmin})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrEmailInUse
		}
		return nil, internalError(ctx, s.logger, "Could not create user", err)
	}

	s.logger.Info(ctx, "user created", "user_id", user.ID, "admin", isAdmin)
	return user, nil
}

// Signin checks the credentials and issues a token.
func (s *UserService) Signin(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.repos.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrEmailNotRegistered
		}
		return nil, "", internalError(ctx, s.logger, "Could not sign in", err)
	}

	ok, err := s.creds.VerifyPassword(password, user.Password)
	if err != nil {
		return nil, "", internalError(ctx, s.logger, "Could not sign in", err)
	}
	if !ok {
		return nil, "", common.ErrInvalidCredentials
	}

	token, err := s.creds.IssueToken(user.ID, user.IsAdmin)
	if err != nil {
		return nil, "", internalError(ctx, s.logger, "Could not sign in", err)
	}

	return user, token, nil
}

// FindOne returns the user with the given id, or nil when there is none.
func (s *UserService) FindOne(ctx context.Context, id string) (*models.User, error) {
	if id == "" || !validID(id) {
		return nil, nil
	}

	user, err := s.repos.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, internalError(ctx, s.logger, "Could not find user", err)
	}
	return user, nil
}

func (s *UserService) mustFind(ctx context.Context, id string) (*models.User, error) {
	user, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, common.ErrUserNotFound
	}
	return user, nil
}

// Update changes the caller's own profile. attrs holds the decoded request
// body; only fullName, email and password may appear in it.
func (s *UserService) Update(ctx context.Context, id string, attrs map[string]any) (*models.User, error) {
	user, err := s.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}

	var disallowed []string
	for key := range attrs {
		if !updatableFields[key] {
			disallowed = append(disallowed, key)
		}
	}
	if len(disallowed) > 0 {
		sort.Strings(disallowed)
		return nil, &common.FieldsError{Fields: disallowed}
	}

	values := make(map[string]string, len(attrs))
	for key, raw := range attrs {
		v, ok := raw.(string)
		if !ok {
			return nil, validationError(fmt.Sprintf("%s must be a string", key))
		}
		values[key] = v
	}

	if password, ok := values[FieldPassword]; ok {
		if err := validatePassword(password); err != nil {
			return nil, err
		}
		same, err := s.creds.VerifyPassword(password, user.Password)
		if err != nil {
			return nil, internalError(ctx, s.logger, "Could not update", err)
		}
		if same {
			return nil, common.ErrPasswordUnchanged
		}
		hash, err := s.creds.HashPassword(password)
		if err != nil {
			return nil, internalError(ctx, s.logger, "Could not update", err)
		}
		user.Password = hash
	}

	if email, ok := values[FieldEmail]; ok && email != user.Email {
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		user.Email = email
	}

	if fullName, ok := values[FieldFullName]; ok {
		user.FullName = fullName
	}

	if err := s.repos.Users().Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, common.ErrorAlreadyExists):
			return nil, common.ErrEmailInUse
		case errors.Is(err, common.ErrorNotFound):
			return nil, common.ErrUserNotFound
		}
		return nil, internalError(ctx, s.logger, "Could not update", err)
	}

	return user, nil
}

// Remove deletes the caller's own account.
func (s *UserService) Remove(ctx context.Context, id string) (*models.User, error) {
	return s.delete(ctx, id)
}

// RemoveOne deletes any account by id.
func (s *UserService) RemoveOne(ctx context.Context, id string) (*models.User, error) {
	return s.delete(ctx, id)
}

// delete removes the user together with its tasks in one unit of work and
// revokes every token issued to it so far.
func (s *UserService) delete(ctx context.Context, id string) (*models.User, error) {
	user, err := s.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}

	var removedTasks int64
	err = s.repos.WithTx(ctx, func(ctx context.Context, ur users.Repository, tr tasks.Repository) error {
		n, err := tr.DeleteAllByOwner(ctx, id)
		if err != nil {
			return err
		}
		removedTasks = n
		return ur.Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, internalError(ctx, s.logger, "Could not remove", err)
	}

	if err := s.creds.Revoke(ctx, id); err != nil {
		s.logger.Error(ctx, "error revoking tokens", "user_id", id, "error", err)
	}

	s.logger.Info(ctx, "user removed", "user_id", id, "tasks", removedTasks)
	return user, nil
}

// ListAll returns every user.
func (s *UserService) ListAll(ctx context.Context) ([]*models.User, error) {
	list, err := s.repos.Users().List(ctx)
	if err != nil {
		return nil, internalError(ctx, s.logger, "Could not get all users", err)
	}
	return list, nil
}

// SetAdmin grants or withdraws the admin flag. Withdrawing it also revokes
// tokens that still carry the old flag.
func (s *UserService) SetAdmin(ctx context.Context, email string, isAdmin bool) (*models.User, error) {
	repo := s.repos.Users()

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrEmailNotRegistered
		}
		return nil, internalError(ctx, s.logger, "Could not update", err)
	}

	if user.IsAdmin == isAdmin {
		return user, nil
	}

	user.IsAdmin = isAdmin
	if err := repo.Update(ctx, user); err != nil {
		return nil, internalError(ctx, s.logger, "Could not update", err)
	}

	if !isAdmin {
		if err := s.creds.Revoke(ctx, user.ID); err != nil {
			return nil, internalError(ctx, s.logger, "Could not update", err)
		}
	}

	s.logger.Info(ctx, "admin flag changed", "user_id", user.ID, "admin", isAdmin)
	return user, nil
}
