package domain

import "fmt"

// ValidationError возвращается при нарушении ограничений на поля записи.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// InvalidStateError возвращается, когда операция недопустима в текущем состоянии договора.
type InvalidStateError struct {
	Op    string
	State string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s in state %q", e.Op, e.State)
}

// ImmutableVersionError возвращается при попытке изменить содержимое
// опубликованной версии или подписанного договора.
type ImmutableVersionError struct {
	Reason string
}

func (e *ImmutableVersionError) Error() string {
	return e.Reason
}

// PreconditionError возвращается, когда не выполнено предусловие операции.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return e.Reason
}

// NotFoundError возвращается, когда запрошенная запись отсутствует.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.Key)
}
