package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both missing entries and entries owned by someone else.
	ErrNotFound = errors.New("entry not found")

	ErrValidation    = errors.New("validation failed")
	ErrFileTooLarge  = fmt.Errorf("%w: file exceeds the upload size limit", ErrValidation)
	ErrDuplicateName = fmt.Errorf("%w: an entry with this name already exists", ErrValidation)
	ErrInvalidName   = fmt.Errorf("%w: invalid name", ErrValidation)

	ErrStorageFailure = errors.New("blob storage unavailable")
	ErrTreeTooDeep    = errors.New("folder tree exceeds the maximum depth")
	ErrCycle          = errors.New("folder tree contains a cycle")
)
