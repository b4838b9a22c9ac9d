package isa

import (
	"errors"
	"fmt"
)

// ErrorKind classifies assembly errors.
type ErrorKind uint8

const (
	// KindGrammar: the text matches no recognized statement or operand pattern.
	KindGrammar ErrorKind = iota
	// KindUnknownSymbol: mnemonic, directive or output semantic not in the tables.
	KindUnknownSymbol
	// KindOperand: register class not legal for its operand position.
	KindOperand
	// KindRange: a value does not fit the width of its field.
	KindRange
	// KindCondition: an ifc condition tests the same flag twice.
	KindCondition
	// KindUnresolvedLabel: a reference to a label that was never declared.
	KindUnresolvedLabel
	// KindDuplicate: a label or entry point declared more than once.
	KindDuplicate
)

func (k ErrorKind) String() string {
	switch k {
	case KindGrammar:
		return "grammar"
	case KindUnknownSymbol:
		return "unknown symbol"
	case KindOperand:
		return "operand class"
	case KindRange:
		return "numeric range"
	case KindCondition:
		return "condition"
	case KindUnresolvedLabel:
		return "unresolved label"
	case KindDuplicate:
		return "duplicate"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Error is a typed encoding error. It carries no source position; the
// assembler driver attaches one.
type Error struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

func errorf(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err if it is (or wraps) an *Error, and
// KindGrammar otherwise.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindGrammar
}
