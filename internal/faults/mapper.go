package faults

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Responder builds the problem document for a matched error.
type Responder func(err error, r *http.Request) *Problem

// Rule is one mapping case: a match predicate over the raised error plus the
// responder that runs when it matches.
type Rule struct {
	match   func(error) bool
	respond Responder
}

// On creates a rule matching with errors.Is against a sentinel.
func On(target error, respond Responder) Rule {
	return Rule{
		match:   func(err error) bool { return errors.Is(err, target) },
		respond: respond,
	}
}

// OnType creates a rule matching with errors.As against a concrete error
// type. The responder receives the unwrapped typed value.
func OnType[T error](respond func(target T, r *http.Request) *Problem) Rule {
	return Rule{
		match: func(err error) bool {
			var target T
			return errors.As(err, &target)
		},
		respond: func(err error, r *http.Request) *Problem {
			var target T
			errors.As(err, &target)
			return respond(target, r)
		},
	}
}

// OnKind creates a rule matching faults of the given kind.
func OnKind(kind Kind, respond Responder) Rule {
	return Rule{
		match: func(err error) bool {
			var f *Fault
			return errors.As(err, &f) && f.Kind == kind
		},
		respond: respond,
	}
}

// OnMatch creates a rule with an arbitrary predicate.
func OnMatch(pred func(error) bool, respond Responder) Rule {
	return Rule{match: pred, respond: respond}
}

// Mapper holds an ordered list of rules. The first matching rule wins;
// an unmatched error falls through (Map returns nil) so an outer or sealed
// mapper can take over.
type Mapper struct {
	rules []Rule
}

// NewMapper creates a mapper from the given rules, in order.
func NewMapper(rules ...Rule) *Mapper {
	return &Mapper{rules: rules}
}

// Map runs the error through the rules and returns the first match's
// problem, or nil when no rule matches.
func (m *Mapper) Map(err error, r *http.Request) *Problem {
	if m == nil || err == nil {
		return nil
	}
	for _, rule := range m.rules {
		if rule.match(err) {
			return rule.respond(err, r)
		}
	}
	return nil
}

// Then returns a mapper that falls back to next when this mapper has no
// matching rule.
func (m *Mapper) Then(next *Mapper) *Mapper {
	combined := make([]Rule, 0, len(m.rules)+len(next.rules))
	combined = append(combined, m.rules...)
	combined = append(combined, next.rules...)
	return &Mapper{rules: combined}
}

var (
	defaultMu     sync.RWMutex
	defaultMapper *Mapper
)

// Default returns the implicit mapper used when a handler is constructed
// without an explicit one. It is built lazily from BuiltinRules.
func Default() *Mapper {
	defaultMu.RLock()
	m := defaultMapper
	defaultMu.RUnlock()
	if m != nil {
		return m
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultMapper == nil {
		defaultMapper = NewMapper(BuiltinRules()...)
	}
	return defaultMapper
}

// SetDefault replaces the implicit mapper. Intended for application startup;
// routes constructed afterwards pick up the new mapper.
func SetDefault(m *Mapper) {
	defaultMu.Lock()
	defaultMapper = m
	defaultMu.Unlock()
}

// BuiltinRules returns the standard rule set: context errors, validator
// errors, illegal headers, and the fault kinds.
func BuiltinRules() []Rule {
	return []Rule{
		OnMatch(func(err error) bool {
			return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
		}, func(err error, r *http.Request) *Problem {
			return NewProblem(
				http.StatusGatewayTimeout,
				TypeTimeout,
				"Request Timeout",
				"The request took too long to process and was cancelled",
				r.URL.Path,
			)
		}),

		OnType(func(target validator.ValidationErrors, r *http.Request) *Problem {
			fields := make([]map[string]string, 0, len(target))
			for _, fe := range target {
				fields = append(fields, map[string]string{
					"field":  fe.Field(),
					"reason": fe.Tag(),
				})
			}
			return NewProblem(
				http.StatusBadRequest,
				TypeValidation,
				"Validation Failed",
				"One or more request fields are invalid",
				r.URL.Path,
			).WithExtension("errors", fields)
		}),

		// The response names the offending header but never carries its value.
		OnType(func(target *IllegalHeaderError, r *http.Request) *Problem {
			return NewProblem(
				http.StatusBadRequest,
				TypeBadHeader,
				"Illegal Header",
				"The value of header '"+target.Name+"' was rejected",
				r.URL.Path,
			).WithExtension("header", target.Name)
		}),

		OnKind(KindValidation, func(err error, r *http.Request) *Problem {
			return NewProblem(http.StatusBadRequest, TypeValidation, "Validation Failed", faultMessage(err), r.URL.Path)
		}),
		OnKind(KindNotFound, func(err error, r *http.Request) *Problem {
			return NewProblem(http.StatusNotFound, TypeNotFound, "Resource Not Found", faultMessage(err), r.URL.Path)
		}),
		OnKind(KindConflict, func(err error, r *http.Request) *Problem {
			return NewProblem(http.StatusConflict, TypeConflict, "Conflict", faultMessage(err), r.URL.Path)
		}),
		OnKind(KindForbidden, func(err error, r *http.Request) *Problem {
			return NewProblem(http.StatusForbidden, TypeForbidden, "Forbidden", "You don't have permission to access this resource", r.URL.Path)
		}),
		OnKind(KindArithmetic, func(err error, r *http.Request) *Problem {
			return NewProblem(http.StatusBadRequest, TypeArithmetic, "Arithmetic Error", faultMessage(err), r.URL.Path)
		}),
	}
}

// faultMessage returns the fault's own message without the kind prefix or
// wrapped cause text that Error() would add.
func faultMessage(err error) string {
	var f *Fault
	if errors.As(err, &f) {
		return f.Message
	}
	return err.Error()
}
