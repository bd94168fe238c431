package service

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrEmailInUse         = errors.New("email is already in use")
	ErrEmailAlreadyAdded  = errors.New("email is already added to an account")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid verification token")
	ErrTokenExpired       = errors.New("verification token has expired")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailNotFound      = errors.New("email not found")
	ErrEmailNotVerified   = errors.New("email must be verified before setting as primary")
	ErrPrimaryEmail       = errors.New("cannot delete primary email address")
	ErrAlreadyVerified    = errors.New("email is already verified")
)
