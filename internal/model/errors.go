package model

import (
	"errors"
	"fmt"
)

// Ошибки ядра оптимизации. Все они восстановимы на границе запроса:
// обработчик сообщает причину и прерывает только текущий запрос.
var (
	// ErrUnsupportedTopology неизвестный тип перекрестка
	ErrUnsupportedTopology = errors.New("unsupported intersection topology")
	// ErrSignalCountMismatch длина массива таймингов не совпадает с числом направлений
	ErrSignalCountMismatch = errors.New("signal count mismatch")
	// ErrMissingRequiredField отсутствует обязательное поле или колонка
	ErrMissingRequiredField = errors.New("missing required field")
	// ErrMalformedDistance строку расстояния не удалось разобрать
	ErrMalformedDistance = errors.New("malformed distance")
	// ErrInvalidSample строка датасета нарушает инварианты VolumeSample
	ErrInvalidSample = errors.New("invalid volume sample")
)

// SignalCountMismatchError содержит ожидаемое для топологии число направлений
type SignalCountMismatchError struct {
	Topology Topology
	Field    string
	Expected int
	Got      int
}

func (e *SignalCountMismatchError) Error() string {
	field := e.Field
	if field == "" {
		field = "signals"
	}
	return fmt.Sprintf("signal count mismatch: %s intersection expects %d %s, got %d",
		e.Topology, e.Expected, field, e.Got)
}

// Unwrap позволяет проверять ошибку через errors.Is(err, ErrSignalCountMismatch)
func (e *SignalCountMismatchError) Unwrap() error {
	return ErrSignalCountMismatch
}

// MissingField возвращает ошибку ErrMissingRequiredField с именем поля
func MissingField(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingRequiredField, name)
}
