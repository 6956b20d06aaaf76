package templates

// Package-level sentinel errors for template registry operations. These
// enable consistent classification of per-page vs fatal failures.

import "errors"

var (
	// ErrTemplatesDirUnreadable indicates the templates folder could not be
	// scanned at startup. This is fatal for the whole run.
	ErrTemplatesDirUnreadable = errors.New("templates directory unreadable")

	// ErrTemplateNotFound indicates a page referenced a template name that is
	// not registered. This fails the page, not the run.
	ErrTemplateNotFound = errors.New("template not found")
)
