// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts defines the ledger's failure taxonomy. Every failure aborts
// the whole call with no partial state change; callers are expected to
// re-invoke with corrected arguments.
package reverts

import (
	"errors"
	"fmt"
)

// Code classifies a revert.
type Code uint8

const (
	CodeEntityNotFound Code = iota + 1
	CodeInvalidEpoch
	CodeInvalidTier
	CodeNotOwner
	CodeNoPositions
	CodeAlreadyExists
)

func (c Code) String() string {
	switch c {
	case CodeEntityNotFound:
		return "EntityNotFound"
	case CodeInvalidEpoch:
		return "InvalidEpoch"
	case CodeInvalidTier:
		return "InvalidTier"
	case CodeNotOwner:
		return "NotOwner"
	case CodeNoPositions:
		return "NoPositions"
	case CodeAlreadyExists:
		return "AlreadyExists"
	default:
		return "Unknown"
	}
}

// ErrRevert is a classified ledger failure.
type ErrRevert struct {
	code    Code
	message string
}

func (e *ErrRevert) Error() string {
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

// Code returns the revert classification.
func (e *ErrRevert) Code() Code {
	return e.code
}

// New creates a revert with the given code.
func New(code Code, format string, args ...any) *ErrRevert {
	return &ErrRevert{code: code, message: fmt.Sprintf(format, args...)}
}

// EntityNotFound reports an unknown position/node id, or id 0.
func EntityNotFound(format string, args ...any) *ErrRevert {
	return New(CodeEntityNotFound, format, args...)
}

// InvalidEpoch reports a catch-up target before the entity's last-updated
// epoch, or a reward epoch set out of sequence or not strictly in the past.
func InvalidEpoch(format string, args ...any) *ErrRevert {
	return New(CodeInvalidEpoch, format, args...)
}

// InvalidTier reports an inactive tier or a principal below its minimum.
func InvalidTier(format string, args ...any) *ErrRevert {
	return New(CodeInvalidTier, format, args...)
}

// NotOwner reports a claim attempted by a non-owner of the certificate.
func NotOwner(format string, args ...any) *ErrRevert {
	return New(CodeNotOwner, format, args...)
}

// NoPositions reports a bulk call with nothing to act on.
func NoPositions(format string, args ...any) *ErrRevert {
	return New(CodeNoPositions, format, args...)
}

// AlreadyExists reports a registration of an id that is already taken.
func AlreadyExists(format string, args ...any) *ErrRevert {
	return New(CodeAlreadyExists, format, args...)
}

// IsRevertErr returns whether err is (or wraps) a classified revert.
func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// Is reports whether err is a revert with the given code.
func Is(err error, code Code) bool {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.code == code
	}
	return false
}
