package wizard

import "errors"

var (
	// ErrGuardNotSatisfied возвращается, когда exit guard шага не выполнен
	ErrGuardNotSatisfied = errors.New("wizard: step guard is not satisfied")

	// ErrNoFurtherStep возвращается при попытке шагнуть дальше последнего шага
	ErrNoFurtherStep = errors.New("wizard: no further step")

	// ErrNoPreviousStep возвращается при недопустимой навигации назад
	ErrNoPreviousStep = errors.New("wizard: no previous step")

	// ErrUnknownStep возвращается для неизвестного имени шага
	ErrUnknownStep = errors.New("wizard: unknown step")
)
