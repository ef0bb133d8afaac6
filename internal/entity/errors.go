package entity

import "errors"

var (
	ErrPropertyNotFound    = errors.New("property not found")
	ErrSavedSearchNotFound = errors.New("saved search not found")
	ErrFavoriteNotFound    = errors.New("favorite not found")
	ErrDuplicateFavorite   = errors.New("property already in favorites")
	ErrDuplicateSearchName = errors.New("saved search with this name already exists")
	ErrSavedSearchLimit    = errors.New("maximum number of saved searches reached")
	ErrForbidden           = errors.New("user not authorized to perform this action")
	ErrNoPhotos            = errors.New("cannot publish property without photos")

	// ErrQueryTimeout marks a search that exceeded its statement timeout.
	// It is retryable and must never be cached.
	ErrQueryTimeout = errors.New("search query timed out")
)
