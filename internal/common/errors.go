package common

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KIND_UNKNOWN Kind = iota
	KIND_SERVER_NOT_INITIALIZED
	KIND_PLAYER_ALREADY_EXISTS
	KIND_PLAYER_NOT_FOUND
	KIND_GAME_DETAIL_NOT_FOUND
	KIND_LAST_MATCH_NOT_FOUND
	KIND_PLAYER_RANK_INFO_NOT_FOUND
	KIND_GENERIC_DATA_STORE
)

var kindNames = map[Kind]string{
	KIND_UNKNOWN:                    "unknown",
	KIND_SERVER_NOT_INITIALIZED:     "server not initialized",
	KIND_PLAYER_ALREADY_EXISTS:      "player already exists",
	KIND_PLAYER_NOT_FOUND:           "player not found",
	KIND_GAME_DETAIL_NOT_FOUND:      "game detail not found",
	KIND_LAST_MATCH_NOT_FOUND:       "last match not found",
	KIND_PLAYER_RANK_INFO_NOT_FOUND: "player rank info not found",
	KIND_GENERIC_DATA_STORE:         "data store error",
}

func (kind Kind) String() string {
	if name, ok := kindNames[kind]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(kind))
}

// Error is a failure the rest of the bot knows how to branch on.
// Two errors match with errors.Is when their kinds are equal
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Sentinels to use as errors.Is targets
var (
	ErrServerNotInitialized   = &Error{Kind: KIND_SERVER_NOT_INITIALIZED}
	ErrPlayerAlreadyExists    = &Error{Kind: KIND_PLAYER_ALREADY_EXISTS}
	ErrPlayerNotFound         = &Error{Kind: KIND_PLAYER_NOT_FOUND}
	ErrGameDetailNotFound     = &Error{Kind: KIND_GAME_DETAIL_NOT_FOUND}
	ErrLastMatchNotFound      = &Error{Kind: KIND_LAST_MATCH_NOT_FOUND}
	ErrPlayerRankInfoNotFound = &Error{Kind: KIND_PLAYER_RANK_INFO_NOT_FOUND}
	ErrGenericDataStore       = &Error{Kind: KIND_GENERIC_DATA_STORE}
)

func NewError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap an underlying error into a typed one
func WrapError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	message := e.Message
	if message == "" {
		message = e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", message, e.Err)
	}
	return message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// KindOf returns the kind of the first typed error in the chain,
// or KIND_UNKNOWN for anything else
func KindOf(err error) Kind {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	return KIND_UNKNOWN
}
