package mailer

import "errors"

var (
	ErrNoSender    = errors.New("mailer: message must have a sender")
	ErrNoRecipient = errors.New("mailer: message must have at least one recipient")
	ErrNoSubject   = errors.New("mailer: message must have a subject")
	ErrNoContent   = errors.New("mailer: message must have an html or text body")

	// ErrInvalidAddress is returned for an address without an email.
	ErrInvalidAddress = errors.New("mailer: invalid address")

	ErrAttachmentFailed = errors.New("mailer: failed to attach file")
	ErrSendFailed       = errors.New("mailer: failed to send message")

	// ErrUnsupportedProvider is returned by provider factories for unknown
	// provider names.
	ErrUnsupportedProvider = errors.New("mailer: unsupported provider")

	ErrTemplateNotFound   = errors.New("mailer: template not found")
	ErrLayoutNotFound     = errors.New("mailer: layout not found")
	ErrRenderFailed       = errors.New("mailer: failed to render template")
	ErrInvalidFrontmatter = errors.New("mailer: invalid frontmatter")
)
