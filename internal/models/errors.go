package models

import "errors"

// Application-wide standard errors
var (
	// Common Resource/DB Errors
	ErrNotFound      = errors.New("resource not found") // General not found
	ErrStoryNotFound = errors.New("story not found")

	// Generation Errors
	ErrNoPagesGenerated  = errors.New("text generation produced no pages")
	ErrEmptyPageSet      = errors.New("story has no pages for this category")
	ErrUnknownPageType   = errors.New("unknown page type")
	ErrMissingKidDetails = errors.New("kid details are required")

	// General Request/Server Errors
	ErrInternalServer = errors.New("internal server error")
	ErrBadRequest     = errors.New("bad request")
	ErrInvalidInput   = errors.New("invalid input data")
)
