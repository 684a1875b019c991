package domain

import "errors"

var (
	// ErrNotADirectory is returned when the content root is missing or is not a directory.
	ErrNotADirectory = errors.New("not a directory")

	// ErrMalformedPost is returned when a post file cannot be read.
	ErrMalformedPost = errors.New("malformed post")

	// ErrIncompletePost wraps recoverable problems found while parsing a post.
	ErrIncompletePost = errors.New("incomplete post")

	// ErrIDConflict reports two files deriving the same post id.
	ErrIDConflict = errors.New("id conflict")

	// ErrPostNotFound is returned when no cached post has the requested id.
	ErrPostNotFound = errors.New("post not found")
)
