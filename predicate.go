// SPDX-License-Identifier: GPL-3.0-or-later

package httpobs

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Predicate identifies requests that must not be observed.
//
// Implementations must be safe for concurrent use.
type Predicate interface {
	Matches(req *http.Request) bool
}

// PredicateFunc adapts a function to the [Predicate] interface.
type PredicateFunc func(req *http.Request) bool

var _ Predicate = PredicateFunc(nil)

// Matches implements [Predicate].
func (f PredicateFunc) Matches(req *http.Request) bool {
	return f(req)
}

// HostPredicate returns a [Predicate] matching requests whose URL host is one
// of the given hosts. The comparison is case-insensitive and ignores the port.
func HostPredicate(hosts ...string) Predicate {
	set := make(map[string]struct{}, len(hosts))
	for _, host := range hosts {
		set[strings.ToLower(host)] = struct{}{}
	}
	return PredicateFunc(func(req *http.Request) bool {
		if req.URL == nil {
			return false
		}
		_, found := set[strings.ToLower(req.URL.Hostname())]
		return found
	})
}

// MethodPredicate returns a [Predicate] matching requests using one of the
// given methods. The empty method is treated as GET, as [net/http] does.
func MethodPredicate(methods ...string) Predicate {
	set := make(map[string]struct{}, len(methods))
	for _, method := range methods {
		set[strings.ToUpper(method)] = struct{}{}
	}
	return PredicateFunc(func(req *http.Request) bool {
		method := req.Method
		if method == "" {
			method = http.MethodGet
		}
		_, found := set[strings.ToUpper(method)]
		return found
	})
}

// NewPathGlobPredicate returns a [Predicate] matching requests whose URL path
// matches the given doublestar glob (e.g., "/static/**" or "/**/*.png").
//
// It returns an error if the pattern is invalid.
func NewPathGlobPredicate(pattern string) (Predicate, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: %q", doublestar.ErrBadPattern, pattern)
	}
	return PredicateFunc(func(req *http.Request) bool {
		if req.URL == nil {
			return false
		}
		matched, err := doublestar.Match(pattern, req.URL.Path)
		return err == nil && matched
	}), nil
}

// NewExprPredicate compiles an expr-lang boolean expression into a [Predicate].
//
// The expression sees the following variables:
//
//   - method: the request method (e.g., "POST")
//   - host: the URL host without port
//   - path: the URL path
//   - url: the full URL string
//   - header: map from canonical header name to its first value
//
// For example: `method == "POST" && host endsWith ".example.com"`.
//
// Evaluation errors count as no match.
func NewExprPredicate(source string) (Predicate, error) {
	program, err := expr.Compile(source, expr.Env(exprRequestEnv(nil)), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("expr predicate: %w", err)
	}
	return &exprPredicate{program: program}, nil
}

type exprPredicate struct {
	program *vm.Program
}

// Matches implements [Predicate].
func (p *exprPredicate) Matches(req *http.Request) bool {
	result, err := expr.Run(p.program, exprRequestEnv(req))
	if err != nil {
		return false
	}
	matched, _ := result.(bool)
	return matched
}

// exprRequestEnv builds the expression environment for req. A nil req
// yields the zero-valued environment used for type checking.
func exprRequestEnv(req *http.Request) map[string]any {
	env := map[string]any{
		"method": "",
		"host":   "",
		"path":   "",
		"url":    "",
		"header": map[string]string{},
	}
	if req == nil {
		return env
	}
	headers := make(map[string]string, len(req.Header))
	for name := range req.Header {
		headers[name] = req.Header.Get(name)
	}
	env["method"] = req.Method
	if req.Method == "" {
		env["method"] = http.MethodGet
	}
	env["header"] = headers
	if req.URL != nil {
		env["host"] = req.URL.Hostname()
		env["path"] = req.URL.Path
		env["url"] = req.URL.String()
	}
	return env
}
