package store

import "errors"

// Erreurs sentinelles du stockage. Le service et les handlers s'appuient
// dessus avec errors.Is pour choisir le code HTTP.
var (
	ErrOrderNotFound = errors.New("order not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already registered")
)
