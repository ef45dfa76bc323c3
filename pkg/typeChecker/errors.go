package typeChecker

import (
	"errors"
	"fmt"

	"github.com/xplshn/gwc/pkg/token"
)

type ErrorKind int

const (
	// MissingDominantType: no operand of an arithmetic expression carries a usable type
	MissingDominantType ErrorKind = iota
	// MissingOperandType: one operand has no type to cast from
	MissingOperandType
)

var (
	ErrMissingTypeParameters = errors.New("expression missing type parameters")
	ErrUndefinedType         = errors.New("undefined type in expression")
)

func (k ErrorKind) String() string {
	switch k {
	case MissingDominantType:
		return "MissingDominantType"
	case MissingOperandType:
		return "MissingOperandType"
	}
	return "Unknown"
}

// TypeError is fatal for the expression it was raised on; Node holds its printed form
type TypeError struct {
	Kind ErrorKind
	Tok  token.Token
	Node string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%v %s", e.Unwrap(), e.Node)
}

func (e *TypeError) Unwrap() error {
	if e.Kind == MissingOperandType {
		return ErrUndefinedType
	}
	return ErrMissingTypeParameters
}
