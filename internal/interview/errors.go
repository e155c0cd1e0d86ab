package interview

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSession возвращается, когда интервью еще не начато
	ErrNoSession = errors.New("интервью не начато")
	// ErrSummarized возвращается при попытке ответить после подведения итогов
	ErrSummarized = errors.New("интервью уже завершено, начните новое")
	// ErrNoExchange возвращается при запросе итогов до первого ответа
	ErrNoExchange = errors.New("нет ни одного ответа для подведения итогов")
)

// ValidationError пустой или некорректный ввод. Состояние сессии не меняется.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("некорректное значение %s: %s", e.Field, e.Reason)
}

// ServiceError ошибка сервиса диалога. Транскрипт откатывается к состоянию до вызова.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("ошибка сервиса диалога (%s): %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}
