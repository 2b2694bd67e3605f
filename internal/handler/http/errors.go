// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

// Sentinel errors returned while reading form submissions. Callers can match
// against them with [errors.Is].
var (
	// ErrInvalidForm is returned when the request body cannot be parsed as a
	// URL-encoded or multipart form.
	ErrInvalidForm = errors.New("invalid form submission")

	// ErrInvalidUserID is returned when the {id} route segment is not a
	// positive integer.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrMissingAvatarFile is returned when the avatar form carries no file.
	ErrMissingAvatarFile = errors.New("missing avatar file")
)
