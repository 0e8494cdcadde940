// Package errors provides standardized error handling patterns for Gestalt.
// It includes error classification, the error-kind taxonomy used throughout
// the decode/merge/substitution pipeline, and helper functions for consistent
// error wrapping and classification.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorClass represents the classification of errors for handling purposes.
type ErrorClass int

const (
	// ErrorTransient represents temporary errors that may be retried.
	ErrorTransient ErrorClass = iota
	// ErrorInvalid represents errors due to invalid input or configuration.
	ErrorInvalid
	// ErrorFatal represents unrecoverable errors that should stop processing.
	ErrorFatal
)

// String returns the string representation of ErrorClass.
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorTransient:
		return "transient"
	case ErrorInvalid:
		return "invalid"
	case ErrorFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Kind is the error-kind taxonomy from the pipeline's error handling design.
// Kinds classify *why* a ValidationError occurred; they are distinct from
// ErrorClass, which classifies *what to do about* an error.
type Kind int

const (
	KindUnknown Kind = iota
	KindFailedToTokenize
	KindNoResultsFoundForNode
	KindDecodingExpectedLeaf
	KindDecodingExpectedArray
	KindDecodingExpectedMap
	KindDecodingExpectedObject
	KindDecodingLeafMissingValue
	KindDecodingNumberParsing
	KindDecodingNumberFormatException
	KindDecodingCharWrongSize
	KindArrayMissingIndex
	KindSubstitutionMissingKey
	KindSubstitutionRecursionLimit
	KindSubstitutionCycle
	KindNoDecoderFor
	KindMergeConflict
	KindSourceLoadFailure
	KindConfigurationBuild
)

// String returns the taxonomy name used in error messages and logs.
func (k Kind) String() string {
	switch k {
	case KindFailedToTokenize:
		return "FailedToTokenize"
	case KindNoResultsFoundForNode:
		return "NoResultsFoundForNode"
	case KindDecodingExpectedLeaf:
		return "DecodingExpectedLeaf"
	case KindDecodingExpectedArray:
		return "DecodingExpectedArray"
	case KindDecodingExpectedMap:
		return "DecodingExpectedMap"
	case KindDecodingExpectedObject:
		return "DecodingExpectedObject"
	case KindDecodingLeafMissingValue:
		return "DecodingLeafMissingValue"
	case KindDecodingNumberParsing:
		return "DecodingNumberParsing"
	case KindDecodingNumberFormatException:
		return "DecodingNumberFormatException"
	case KindDecodingCharWrongSize:
		return "DecodingCharWrongSize"
	case KindArrayMissingIndex:
		return "ArrayMissingIndex"
	case KindSubstitutionMissingKey:
		return "SubstitutionMissingKey"
	case KindSubstitutionRecursionLimit:
		return "SubstitutionRecursionLimit"
	case KindSubstitutionCycle:
		return "SubstitutionCycle"
	case KindNoDecoderFor:
		return "NoDecoderFor"
	case KindMergeConflict:
		return "MergeConflict"
	case KindSourceLoadFailure:
		return "SourceLoadFailure"
	case KindConfigurationBuild:
		return "ConfigurationBuild"
	default:
		return "Unknown"
	}
}

// Standard error variables for common conditions outside the ValidationError
// taxonomy (build-time and lifecycle failures).
var (
	ErrNoSources       = stderrors.New("gestalt: no sources configured")
	ErrNoDecoders      = stderrors.New("gestalt: no decoders registered")
	ErrAlreadyStarted  = stderrors.New("gestalt: already loaded")
	ErrNotLoaded       = stderrors.New("gestalt: loadConfigs has not been called")
	ErrInvalidConfig   = stderrors.New("gestalt: invalid configuration")
	ErrSourceDuplicate = stderrors.New("gestalt: duplicate source id")
	ErrInvalidData     = stderrors.New("gestalt: invalid data")
)

// ClassifiedError wraps an error with its classification and, optionally,
// the taxonomy Kind that produced it.
type ClassifiedError struct {
	Class     ErrorClass
	Kind      Kind
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface.
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error.
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// IsTransient checks if an error is transient and should be retried.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var ce *ClassifiedError
	if stderrors.As(err, &ce) {
		return ce.Class == ErrorTransient
	}
	errStr := strings.ToLower(err.Error())
	for _, pattern := range []string{"timeout", "temporary", "unavailable", "busy", "retry"} {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// IsFatal checks if an error is fatal and should stop processing.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var ce *ClassifiedError
	if stderrors.As(err, &ce) {
		return ce.Class == ErrorFatal
	}
	if stderrors.Is(err, ErrInvalidConfig) || stderrors.Is(err, ErrNoSources) || stderrors.Is(err, ErrNoDecoders) {
		return true
	}
	return false
}

// IsInvalid checks if an error is due to invalid input.
func IsInvalid(err error) bool {
	if err == nil {
		return false
	}
	var ce *ClassifiedError
	if stderrors.As(err, &ce) {
		return ce.Class == ErrorInvalid
	}
	return false
}

// Classify returns the error class for an error.
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorTransient
	}
	if IsFatal(err) {
		return ErrorFatal
	}
	if IsInvalid(err) {
		return ErrorInvalid
	}
	return ErrorTransient
}

func newClassified(class ErrorClass, kind Kind, err error, component, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Kind:      kind,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w".
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapTransient wraps an error as transient with context.
func WrapTransient(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, component, method, action)
	return newClassified(ErrorTransient, KindUnknown, wrapped, component, method, wrapped.Error())
}

// WrapFatal wraps an error as fatal with context.
func WrapFatal(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, component, method, action)
	return newClassified(ErrorFatal, KindUnknown, wrapped, component, method, wrapped.Error())
}

// WrapInvalid wraps an error as invalid with context.
func WrapInvalid(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, component, method, action)
	return newClassified(ErrorInvalid, KindUnknown, wrapped, component, method, wrapped.Error())
}

// WrapKind wraps an error tagged with a taxonomy Kind, preserving the
// component/method/action context used by the rest of the classified-error
// machinery. Used by gestalt.Core for source-load and configuration-build
// failures.
func WrapKind(class ErrorClass, kind Kind, component, operation, message string) *ClassifiedError {
	return newClassified(class, kind, stderrors.New(message), component, operation, message)
}
