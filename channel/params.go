package channel

import (
	"errors"
	"fmt"
)

var (
	ErrUnexpectedParam = errors.New("unexpected parameter type")
	ErrNotEnoughParams = errors.New("not enough parameters")
)

// ParamAssertion checks a single [Param], usually to pull a typed value out of it inside a [Listener].
// The pos parameter is the position of the [Param] in the publish, for error messages.
type ParamAssertion func(pos int, p Param) error

// AssertAndStore asserts that the [Param] is a T, and stores it in target.
func AssertAndStore[T any](target *T) ParamAssertion {
	if target == nil {
		return func(pos int, _ Param) error {
			return fmt.Errorf("target for param %d is nil pointer", pos)
		}
	}
	return func(pos int, p Param) error {
		val, ok := p.(T)
		if !ok {
			var expected T
			return fmt.Errorf("%w: param %d expected %T, but got %T", ErrUnexpectedParam, pos, expected, p)
		}
		*target = val
		return nil
	}
}

// Optional applies ifNotNil only when the [Param] is not nil.
func Optional(ifNotNil ParamAssertion) ParamAssertion {
	return func(pos int, p Param) error {
		if p == nil {
			return nil
		}
		return ifNotNil(pos, p)
	}
}

// ParamSpec applies each assertion to the [Param] in the same position, and joins any errors.
// A nil assertion skips its position. Extra params or extra assertions are ignored,
// but fewer than minParams params is an error on its own.
func ParamSpec(minParams int, assertions ...ParamAssertion) func(params []Param) error {
	return func(params []Param) error {
		if len(params) < minParams {
			return fmt.Errorf("%w: expected at least %d, got %d", ErrNotEnoughParams, minParams, len(params))
		}
		var errs []error
		for i := 0; i < len(assertions) && i < len(params); i++ {
			if assertions[i] == nil {
				continue
			}
			if err := assertions[i](i, params[i]); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}

// MapParam maps the first [Param] to target, which is the common case for a [Listener].
func MapParam[T any](target *T, params []Param) error {
	return ParamSpec(1, AssertAndStore(target))(params)
}
