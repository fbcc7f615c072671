/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrValidation covers malformed input; the sender is told why.
	ErrValidation = errors.New("invalid request")
	// ErrNotFound means the sender is not in a room, or the room is gone.
	ErrNotFound = errors.New("not found")
	// ErrNotCreator is dropped without a reply so that regular participants
	// can't probe for privileged actions.
	ErrNotCreator = errors.New("not the room creator")
	// ErrProtocol covers out-of-order or impossible actions, also dropped
	// silently.
	ErrProtocol = errors.New("protocol violation")
	// ErrRateLimited is raised by the transport, not the coordinator.
	ErrRateLimited = errors.New("too many messages")
)

// replyable reports whether err should be echoed back to the sender as an
// error event.
func replyable(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrRateLimited)
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

var fieldLabels = map[string]string{
	"roomId":   "room id",
	"userName": "name",
	"text":     "message",
}

// validationError turns validator output into a single user-facing error.
func validationError(err error) error {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	fe := fields[0]

	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: %s is required", ErrValidation, label)
	case "max":
		return fmt.Errorf("%w: %s must be at most %s characters", ErrValidation, label, fe.Param())
	default:
		return fmt.Errorf("%w: %s is invalid", ErrValidation, label)
	}
}
