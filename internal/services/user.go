package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"vidshare-api/internal/apperror"
	"vidshare-api/internal/auth"
	"vidshare-api/internal/database"
	"vidshare-api/internal/models"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	store  database.Store
	tokens *auth.TokenManager
	cost   int
}

func NewUserService(store database.Store, tokens *auth.TokenManager) *UserService {
	return &UserService{store: store, tokens: tokens, cost: bcrypt.DefaultCost}
}

// TokenTTL is the lifetime of issued access tokens.
func (s *UserService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

type RegisterInput struct {
	Username string
	Email    string
	FullName string
	Password string
	Avatar   string
}

// Session is an authenticated user together with its access token.
type Session struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"accessToken"`
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.ToLower(strings.TrimSpace(in.Email))
	fullName := strings.TrimSpace(in.FullName)
	if username == "" || email == "" || fullName == "" || in.Password == "" {
		return nil, apperror.Validation("All fields are required.")
	}

	for _, lookup := range []func() (*models.User, error){
		func() (*models.User, error) { return s.store.Users().GetByUsername(ctx, username) },
		func() (*models.User, error) { return s.store.Users().GetByEmail(ctx, email) },
	} {
		_, err := lookup()
		if err == nil {
			return nil, apperror.Conflict("User with email or username already exists.")
		}
		if !errors.Is(err, database.ErrNotFound) {
			return nil, apperror.Internal("Something went wrong", err)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, apperror.Internal("Failed to hash password", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		Avatar:       in.Avatar,
		PasswordHash: string(hashed),
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, apperror.Conflict("User with email or username already exists.")
		}
		return nil, apperror.Internal("Something went wrong while registering the user.", err)
	}
	return s.session(user)
}

// Login accepts either a username or an email as identifier.
func (s *UserService) Login(ctx context.Context, identifier, password string) (*Session, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	if identifier == "" || password == "" {
		return nil, apperror.Validation("Username or email and password are required.")
	}

	var (
		user *models.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.store.Users().GetByEmail(ctx, identifier)
	} else {
		user, err = s.store.Users().GetByUsername(ctx, identifier)
	}
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperror.Auth("Invalid credentials")
	}
	if err != nil {
		return nil, apperror.Internal("Something went wrong", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.Auth("Invalid credentials")
	}
	return s.session(user)
}

func (s *UserService) session(user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperror.Internal("Failed to generate token", err)
	}
	return &Session{User: user, AccessToken: token}, nil
}

func (s *UserService) Current(ctx context.Context, userID string) (*models.User, error) {
	if !s.store.ValidID(userID) {
		return nil, apperror.Auth("Invalid access token")
	}
	user, err := s.store.Users().GetByID(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperror.Auth("Invalid access token")
	}
	if err != nil {
		return nil, apperror.Internal("Something went wrong", err)
	}
	return user, nil
}

// Channel returns the public profile of username with its subscription
// counters. viewerID may be empty for anonymous callers.
func (s *UserService) Channel(ctx context.Context, username, viewerID string) (*models.Channel, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, apperror.Validation("Username is missing.")
	}
	user, err := s.store.Users().GetByUsername(ctx, username)
	if err != nil {
		return nil, storeError(err, "Channel does not exist.")
	}

	subs := s.store.Subscriptions()
	subscribers, err := subs.CountByChannel(ctx, user.ID)
	if err != nil {
		return nil, apperror.Internal("Something went wrong", err)
	}
	subscribedTo, err := subs.CountBySubscriber(ctx, user.ID)
	if err != nil {
		return nil, apperror.Internal("Something went wrong", err)
	}

	channel := &models.Channel{
		Owner:             user.PublicProfile(),
		CoverImage:        user.CoverImage,
		SubscribersCount:  subscribers,
		SubscribedToCount: subscribedTo,
	}
	if viewerID != "" && s.store.ValidID(viewerID) {
		channel.IsSubscribedByUser, err = subs.Exists(ctx, viewerID, user.ID)
		if err != nil {
			return nil, apperror.Internal("Something went wrong", err)
		}
	}
	return channel, nil
}
