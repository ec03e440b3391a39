package account

import "errors"

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already exists")
	ErrIDNumberTaken = errors.New("id number already exists")
)
