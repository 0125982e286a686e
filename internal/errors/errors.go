// Package errors defines the failure kinds of the experiment pipeline.
//
// Every failure surfaced by the pipeline can be matched against one of the
// sentinel kinds below with Is. Errors carry stack traces through
// github.com/cockroachdb/errors.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

var (
	// ErrUnsupportedFormat is returned when a dataset file is neither CSV nor ARFF.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrIO is returned when a dataset file cannot be opened, read or parsed.
	ErrIO = errors.New("io error")

	// ErrFilter is returned by preprocessing when the dataset cannot be filtered.
	ErrFilter = errors.New("filter error")

	// ErrInvalidModelOption is returned for a model tag outside the known families.
	ErrInvalidModelOption = errors.New("invalid model option")

	// ErrHyperparameterParse is returned when a hyperparameter is missing or not numeric.
	ErrHyperparameterParse = errors.New("hyperparameter parse error")

	// ErrClassifierNotConfigured is returned when evaluation runs without a model.
	ErrClassifierNotConfigured = errors.New("classifier not configured")

	// ErrTrainDataUnavailable is returned when train/test evaluation runs before a split.
	ErrTrainDataUnavailable = errors.New("train data unavailable")

	// ErrEmptySweep is returned when a sweep is requested with no fold counts.
	ErrEmptySweep = errors.New("empty sweep")

	// ErrInvalidFolds is returned when a fold count is outside [2, instances].
	ErrInvalidFolds = errors.New("invalid number of folds")
)

// ParamError describes a hyperparameter that failed validation.
type ParamError struct {
	Model string
	Field string
	Value string
	Err   error
}

func (e *ParamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: cannot use %q: %v", e.Model, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("%s: %s: missing value", e.Model, e.Field)
}

func (e *ParamError) Unwrap() error {
	return e.Err
}

// Is reports ParamError as a hyperparameter parse failure.
func (e *ParamError) Is(target error) bool {
	return target == ErrHyperparameterParse
}

// MarshalZerologObject adds the parameter details to a log event.
func (e *ParamError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model", e.Model).
		Str("field", e.Field).
		Str("value", e.Value).
		Str("type", "ParamError")
}

// NewParamError returns a ParamError with a stack trace attached.
func NewParamError(model, field, value string, cause error) error {
	return errors.WithStack(&ParamError{Model: model, Field: field, Value: value, Err: cause})
}

// UnsupportedFormat reports a dataset path whose extension has no loader.
func UnsupportedFormat(path string) error {
	return errors.Wrapf(ErrUnsupportedFormat, "%s: use .csv or .arff", path)
}

// IO marks err as an ErrIO failure for path.
func IO(err error, path string) error {
	return errors.Mark(errors.Wrapf(err, "load %s", path), ErrIO)
}

// Filter reports a preprocessing failure.
func Filter(format string, args ...interface{}) error {
	return errors.Wrapf(ErrFilter, format, args...)
}

// InvalidModelOption reports an unknown model tag.
func InvalidModelOption(tag int) error {
	return errors.Wrapf(ErrInvalidModelOption, "tag %d: use 1 to 6", tag)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap annotates err with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf annotates err with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates an error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}
