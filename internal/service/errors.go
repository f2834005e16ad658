package service

import "errors"

// Request-level validation failures. Handlers map these to client-error
// statuses; nothing in this set is retried or fatal.
var (
	ErrInvalidCookingTime  = errors.New("cooking time must be at least one minute")
	ErrInvalidAmount       = errors.New("ingredient amount must be greater than zero")
	ErrDuplicateRecipeName = errors.New("you already published a recipe with this name")
	ErrDuplicateIngredient = errors.New("an ingredient may appear only once per recipe")
	ErrInvalidImage        = errors.New("invalid image payload")
	ErrNotFound            = errors.New("not found")
	ErrAlreadyExists       = errors.New("already exists")
	ErrNotInList           = errors.New("recipe was not in the list")
	ErrNotSubscribed       = errors.New("you were not subscribed")
	ErrSelfFollow          = errors.New("you cannot subscribe to yourself")
	ErrForbidden           = errors.New("only the author may modify this recipe")
	ErrInvalidCredentials  = errors.New("invalid credentials")
)
