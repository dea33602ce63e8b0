package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"socialnet/database"
	"socialnet/models"
	"socialnet/utils"
)

type SignupInput struct {
	Email     string
	Password  string
	Username  string
	FirstName string
	LastName  string
}

// UserService is the account directory: signup, credential checks and search.
type UserService struct {
	store    *database.Store
	hashCost int
	now      func() time.Time
}

func NewUserService(store *database.Store) *UserService {
	return &UserService{
		store:    store,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// WithHashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *UserService) WithHashCost(cost int) *UserService {
	s.hashCost = cost
	return s
}

func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	if err := ValidateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	username := strings.TrimSpace(in.Username)
	if username == "" {
		username = in.Email
	}

	now := s.now().UTC()
	user := &models.User{
		ID:        utils.GenerateUUID(),
		Email:     in.Email,
		Username:  username,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Password:  string(hashed),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, newValidationError("user with this email already exists")
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("User signed up")
	return user, nil
}

// Authenticate checks an email/password pair and records the login time.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		logrus.WithField("user_id", user.ID).Debug("Password mismatch")
		return nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.store.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// Search matches the email exactly when the query contains an @, otherwise
// any of first name, last name or username by substring. Both ignore case;
// an empty query lists every user.
func (s *UserService) Search(ctx context.Context, query string) ([]models.User, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if strings.Contains(query, "@") {
		return s.store.FindUsersByEmail(ctx, query)
	}
	return s.store.SearchUsers(ctx, query)
}
