package client

import (
	"fmt"
	"reflect"

	"github.com/rs/zerolog"
)

// RequestInterceptor inspects or rewrites the resolved request configuration
// before submission. Returning nil means "no change".
type RequestInterceptor func(*Request) (*Request, error)

// ResponseInterceptor inspects or rewrites the settled result, including
// results served from cache. Returning nil means "no change".
type ResponseInterceptor func(*Result) (*Result, error)

// RequestTransform reshapes the outgoing body before it is encoded and
// before any request interceptor runs. Returning nil means "no change".
type RequestTransform func(body any) (any, error)

// ResponseTransform reshapes the incoming body before response interceptors
// see it. Returning nil means "no change".
type ResponseTransform func(data []byte) ([]byte, error)

// Interceptors pairs an optional request and response interceptor for
// registration as one unit. Either side may be nil.
type Interceptors struct {
	Request  RequestInterceptor
	Response ResponseInterceptor
}

// ErrorHandler is notified, side-effect only, when a request settles as a
// transport, abort or http failure. Hook failures are not reported.
type ErrorHandler func(*RequestError)

// HookFailure records one skipped hook from a pipeline run.
type HookFailure struct {
	Name string
	Err  error
}

// hook is one named entry in a pipeline chain.
type hook[T any] struct {
	name string
	fn   func(T) (T, error)
}

// runHooks folds the value through the chain in registration order. A hook
// that errors or panics is skipped and the fold continues with the prior
// value; a hook returning a nil replacement leaves the value unchanged.
// One hook's failure never blocks the request.
func runHooks[T any](hooks []hook[T], value T) (T, []HookFailure) {
	var failures []HookFailure
	for _, h := range hooks {
		out, err := callHook(h.fn, value)
		if err != nil {
			failures = append(failures, HookFailure{Name: h.name, Err: err})
			continue
		}
		if !isNilValue(out) {
			value = out
		}
	}
	return value, failures
}

func callHook[T any](fn func(T) (T, error), value T) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hook panic: %v", r)
		}
	}()
	return fn(value)
}

func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

func logHookFailures(logger zerolog.Logger, stage string, failures []HookFailure) {
	for _, f := range failures {
		logger.Warn().
			Str("stage", stage).
			Str("hook", f.Name).
			Err(f.Err).
			Msg("Hook failed, skipped")
	}
}
