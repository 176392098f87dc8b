package domain

import "errors"

var (
	ErrEmptyRegistry     = errors.New("service registry is empty")
	ErrDuplicateService  = errors.New("duplicate service name")
	ErrInvalidDescriptor = errors.New("invalid service descriptor")

	ErrNavigationTimeout = errors.New("navigation timed out")
	ErrNavigation        = errors.New("navigation failed")

	ErrContentIndicatesError = errors.New("page content indicates an error")
	ErrCheckAssertion        = errors.New("check assertion failed")

	// ErrReportWrite aborts the run: an unreported run has no value.
	ErrReportWrite = errors.New("writing report")

	// ErrServicesFailed signals that at least one service ended failed or error.
	ErrServicesFailed = errors.New("one or more services failed validation")
)
