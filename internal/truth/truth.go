// Package truth implements the multi-valued truth algebras used to evaluate
// fuzzy rules: Łukasiewicz, Gödel and Product logics.
//
// Each logic is a distinct value type over float64. Code that is generic over
// the logic constrains its type parameter with Value, so the algebra is fixed
// at instantiation time and never looked up at run time.
package truth

import (
	"errors"
	"fmt"
	"strings"
)

// Value is the operation set every logic must provide. The "strong"
// connectives are the logic's t-norm/t-conorm, the "weak" ones are min/max.
type Value[T any] interface {
	~float64
	Not() T
	StrongAnd(T) T
	WeakAnd(T) T
	StrongOr(T) T
	WeakOr(T) T
	Implies(T) T
	Equiv(T) T
	Float() float64
}

// Zero returns the absolutely false value of the algebra.
func Zero[T Value[T]]() T {
	return T(0)
}

// Unit returns the absolutely true value of the algebra.
func Unit[T Value[T]]() T {
	return T(1)
}

// Of converts a membership degree into a truth value of the algebra.
func Of[T Value[T]](x float64) T {
	return T(x)
}

// Logic names one of the supported algebras.
type Logic int

const (
	Lukasiewicz Logic = iota
	Godel
	Product
)

var ErrUnknownLogic = errors.New("unknown logic")

func (l Logic) String() string {
	switch l {
	case Lukasiewicz:
		return "lukasiewicz"
	case Godel:
		return "godel"
	case Product:
		return "product"
	default:
		return fmt.Sprintf("logic(%d)", int(l))
	}
}

// ParseLogic resolves a logic from its name. Diacritics and the
// "Gödel-Dummett" spelling are accepted.
func ParseLogic(name string) (Logic, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "lukasiewicz", "łukasiewicz":
		return Lukasiewicz, nil
	case "godel", "gödel", "godel-dummett", "gödel-dummett":
		return Godel, nil
	case "product":
		return Product, nil
	default:
		return Lukasiewicz, fmt.Errorf("%w: %q", ErrUnknownLogic, name)
	}
}
