package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dalemusser/gigboard/pantry/crypto"
	apperr "github.com/dalemusser/gigboard/pantry/errors"
	gmongo "github.com/dalemusser/gigboard/pantry/mongo"
	"github.com/dalemusser/gigboard/pantry/pagination"
	"github.com/dalemusser/gigboard/pantry/validate"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// User status values with a fixed meaning.
const (
	UserNotActivated int32 = 0
	UserBanned       int32 = -1
	UserMaxActive    int32 = 10
)

// Sign-in outcome codes.
const (
	CodeSignInIncorrect       = "sign_in_incorrect"
	CodeSignInNotActivated    = "sign_in_not_activated"
	CodeSignInBanned          = "sign_in_banned"
	CodeSignInSecurityProblem = "sign_in_security_problem"
	CodeSignInNotRegistered   = "sign_in_not_registered"
)

// Quality fields users can be listed by.
const (
	QualityWorker = "worker_quality"
	QualityBoss   = "boss_quality"
)

func userMiss(field, value string) *apperr.Error {
	return apperr.NotFound("user does not exist").WithDetail(field, value)
}

// UserByID returns the user with the given id.
func (s *Store) UserByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	return findOne[User](ctx, s.coll(CollUsers), bson.M{"_id": id}, userMiss("id", id.Hex()))
}

// UserByEmail returns the user registered with email (matched folded).
func (s *Store) UserByEmail(ctx context.Context, email string) (*User, error) {
	email = normalizeLogin(email)
	return findOne[User](ctx, s.coll(CollUsers), bson.M{"email": email}, userMiss("email", email))
}

// UserByUsername returns the user with username (matched folded).
func (s *Store) UserByUsername(ctx context.Context, username string) (*User, error) {
	username = normalizeLogin(username)
	return findOne[User](ctx, s.coll(CollUsers), bson.M{"username": username}, userMiss("username", username))
}

func normalizeLogin(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// RegisterUser creates a not-yet-activated account. Email and username are
// stored folded and must both be unused.
func (s *Store) RegisterUser(ctx context.Context, in UserNew) (*User, error) {
	in.Email = normalizeLogin(in.Email)
	in.Username = normalizeLogin(in.Username)

	var problems []string
	if !validate.SimpleEmailValid(in.Email) {
		problems = append(problems, "email")
	}
	if !validate.UsernameValid(in.Username) {
		problems = append(problems, "username")
	}
	if in.Password == "" {
		problems = append(problems, "password")
	}
	if len(problems) > 0 {
		return nil, apperr.Validation("registration rejected").WithDetail("fields", problems)
	}

	cred, err := s.hasher.Hash(in.Username, in.Password)
	if err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}

	now := s.stamp()
	u := User{
		ID:           s.newID(),
		Username:     in.Username,
		Email:        in.Email,
		Cred:         cred,
		Nickname:     in.Nickname,
		PhoneNumber:  in.PhoneNumber,
		PhonePublic:  in.PhonePublic,
		ImAccount:    in.ImAccount,
		ImPublic:     in.ImPublic,
		Website:      in.Website,
		Introduction: in.Introduction,
		CreatedAt:    now,
		UpdatedAt:    now,
		Status:       UserNotActivated,
	}
	if err := s.insert(ctx, CollUsers, u, "username or email already registered"); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.String("user_id", u.ID.Hex()), zap.String("username", u.Username))
	return &u, nil
}

// SignIn checks a credential. The signature is an email when it contains
// "@" and a username otherwise. Every rejection carries its own code.
func (s *Store) SignIn(ctx context.Context, signature, password string) (*User, error) {
	var (
		u   *User
		err error
	)
	if strings.Contains(signature, "@") {
		u, err = s.UserByEmail(ctx, signature)
	} else {
		u, err = s.UserByUsername(ctx, signature)
	}
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, apperr.AuthenticationFailed(CodeSignInNotRegistered, "account is not registered")
		}
		return nil, err
	}

	switch {
	case u.Status >= 1 && u.Status <= UserMaxActive:
		if err := s.hasher.Verify(u.Username, password, u.Cred); err != nil {
			if errors.Is(err, crypto.ErrMismatchedCredential) {
				return nil, apperr.AuthenticationFailed(CodeSignInIncorrect, "signature or password is incorrect")
			}
			return nil, fmt.Errorf("sign in: %w", err)
		}
		return u, nil
	case u.Status == UserNotActivated:
		return nil, apperr.AuthenticationFailed(CodeSignInNotActivated, "account is not activated").
			WithDetail("user_id", u.ID.Hex())
	case u.Status == UserBanned:
		return nil, apperr.AuthenticationFailed(CodeSignInBanned, "account is banned")
	default:
		return nil, apperr.AuthenticationFailed(CodeSignInSecurityProblem, "account has a security problem")
	}
}

// ChangePassword replaces the credential of the user registered with email
// after verifying the current password.
func (s *Store) ChangePassword(ctx context.Context, email, current, next string) (*User, error) {
	u, err := s.UserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if next == "" {
		return nil, apperr.Validation("new password is empty")
	}
	if err := s.hasher.Verify(u.Username, current, u.Cred); err != nil {
		if errors.Is(err, crypto.ErrMismatchedCredential) {
			return nil, apperr.AuthenticationFailed(CodeSignInIncorrect, "current password is incorrect")
		}
		return nil, fmt.Errorf("change password: %w", err)
	}

	cred, err := s.hasher.Hash(u.Username, next)
	if err != nil {
		return nil, fmt.Errorf("change password: %w", err)
	}
	now := s.stamp()
	if _, err := s.coll(CollUsers).UpdateOne(ctx,
		bson.M{"_id": u.ID},
		bson.M{"$set": bson.M{"cred": cred, "updated_at": now}},
	); err != nil {
		return nil, fmt.Errorf("change password: %w", err)
	}
	u.Cred = cred
	u.UpdatedAt = now
	return u, nil
}

// UpdateProfile rewrites the profile of the user registered with email.
// The username is part of the credential and stays as it is; a new email
// must be unused.
func (s *Store) UpdateProfile(ctx context.Context, email string, in UserNew) (*User, error) {
	u, err := s.UserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if in.Email = normalizeLogin(in.Email); in.Email == "" {
		in.Email = u.Email
	}
	if !validate.SimpleEmailValid(in.Email) {
		return nil, apperr.Validation("email is malformed").WithDetail("email", in.Email)
	}

	now := s.stamp()
	set := bson.M{
		"email":        in.Email,
		"nickname":     in.Nickname,
		"phone_number": in.PhoneNumber,
		"phone_public": in.PhonePublic,
		"im_account":   in.ImAccount,
		"im_public":    in.ImPublic,
		"website":      in.Website,
		"introduction": in.Introduction,
		"updated_at":   now,
	}
	if _, err := s.coll(CollUsers).UpdateOne(ctx, bson.M{"_id": u.ID}, bson.M{"$set": set}); err != nil {
		if gmongo.IsDup(err) {
			return nil, apperr.AlreadyExists("email already registered").Wrap(err)
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.UserByID(ctx, u.ID)
}

// UpdateUserField sets one administrative field of a user. Only "status"
// is supported.
func (s *Store) UpdateUserField(ctx context.Context, id primitive.ObjectID, field, value string) (*User, error) {
	if field != pagination.StatusField {
		return nil, apperr.Validation("field cannot be updated").WithDetail("field", field)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 32)
	if err != nil {
		return nil, apperr.Validation("status must be an integer").WithDetail("value", value).Wrap(err)
	}
	res, err := s.coll(CollUsers).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": int32(n), "updated_at": s.stamp()}},
	)
	if err != nil {
		return nil, fmt.Errorf("update user %s: %w", field, err)
	}
	if res.MatchedCount == 0 {
		return nil, userMiss("id", id.Hex())
	}
	return s.UserByID(ctx, id)
}

// Users lists every user.
func (s *Store) Users(ctx context.Context, req pagination.Request) (*pagination.Envelope[User], error) {
	return pagination.List[User](ctx, s.engine, s.coll(CollUsers), "users", pagination.NewFilter(), req)
}

// UsersByQuality lists users rated at least 1 on the given quality field.
func (s *Store) UsersByQuality(ctx context.Context, field string, req pagination.Request) (*pagination.Envelope[User], error) {
	if field != QualityWorker && field != QualityBoss {
		return nil, apperr.Validation("unknown quality field").WithDetail("field", field)
	}
	base := pagination.NewFilter().AtLeast(field, 1)
	return pagination.List[User](ctx, s.engine, s.coll(CollUsers), "users_by_"+field, base, req)
}
