package wizard

import (
	"fmt"
	"strings"
	"time"

	"github.com/toykraft/consult-booking-service/internal/domain"
)

// Step шаг мастера бронирования
type Step string

const (
	StepDate         Step = "date"
	StepSlot         Step = "slot"
	StepDetails      Step = "details"
	StepPayment      Step = "payment"
	StepConfirmation Step = "confirmation"
)

// stepOrder линейная последовательность шагов
var stepOrder = []Step{StepDate, StepSlot, StepDetails, StepPayment, StepConfirmation}

// IsValid проверяет, что шаг известен
func (s Step) IsValid() bool {
	return s.index() >= 0
}

func (s Step) index() int {
	for i, step := range stepOrder {
		if step == s {
			return i
		}
	}
	return -1
}

// Draft черновик бронирования, накапливаемый по шагам мастера.
// Не персистится: единственный createBooking происходит на шаге оплаты.
type Draft struct {
	Date        time.Time          `json:"date"`
	SessionType domain.SessionType `json:"sessionType"`
	SlotStart   time.Time          `json:"slotStart"`

	Name      string `json:"name"`
	Email     string `json:"email"`
	ChildName string `json:"childName"`
	ChildAge  *int   `json:"childAge"`
	Concerns  string `json:"concerns"`

	// Заполняются на шаге оплаты
	BookingID      string `json:"bookingId"`
	PaymentSucceed bool   `json:"paymentSucceeded"`
}

// Flow состояние одного прохода мастера: текущий шаг плюс черновик.
// Переходы только линейные; назад — без потери введённых данных.
type Flow struct {
	step  Step
	draft Draft
}

// NewFlow создаёт мастер на первом шаге с пустым черновиком
func NewFlow() *Flow {
	return &Flow{step: StepDate}
}

// Current возвращает текущий шаг
func (f *Flow) Current() Step {
	return f.step
}

// Draft возвращает копию накопленного черновика
func (f *Flow) Draft() Draft {
	return f.draft
}

// Apply обновляет черновик данными клиента. Данные накапливаются:
// пустые поля не затирают ранее введённые.
func (f *Flow) Apply(update Draft) {
	if !update.Date.IsZero() {
		f.draft.Date = update.Date
	}
	if update.SessionType != "" {
		f.draft.SessionType = update.SessionType
	}
	if !update.SlotStart.IsZero() {
		f.draft.SlotStart = update.SlotStart
	}
	if update.Name != "" {
		f.draft.Name = update.Name
	}
	if update.Email != "" {
		f.draft.Email = update.Email
	}
	if update.ChildName != "" {
		f.draft.ChildName = update.ChildName
	}
	if update.ChildAge != nil {
		f.draft.ChildAge = update.ChildAge
	}
	if update.Concerns != "" {
		f.draft.Concerns = update.Concerns
	}
	if update.BookingID != "" {
		f.draft.BookingID = update.BookingID
	}
	if update.PaymentSucceed {
		f.draft.PaymentSucceed = true
	}
}

// Advance переводит мастер на следующий шаг, если exit guard текущего
// шага выполнен
func (f *Flow) Advance() error {
	if err := ValidateStep(f.step, &f.draft); err != nil {
		return err
	}

	idx := f.step.index()
	if idx >= len(stepOrder)-1 {
		return fmt.Errorf("%w: %s is the final step", ErrNoFurtherStep, f.step)
	}

	f.step = stepOrder[idx+1]
	return nil
}

// Back возвращает мастер на предыдущий шаг. Черновик сохраняется.
// С первого шага и с экрана подтверждения назад пути нет.
func (f *Flow) Back() error {
	idx := f.step.index()
	if idx <= 0 {
		return fmt.Errorf("%w: already at the first step", ErrNoPreviousStep)
	}
	if f.step == StepConfirmation {
		return fmt.Errorf("%w: confirmation is terminal", ErrNoPreviousStep)
	}

	f.step = stepOrder[idx-1]
	return nil
}

// Reset сбрасывает мастер в исходное состояние: первый шаг, пустой черновик
func (f *Flow) Reset() {
	f.step = StepDate
	f.draft = Draft{}
}

// ValidateStep проверяет exit guard шага для накопленного черновика.
// Используется и мастером, и endpoint'ом валидации черновика витрины.
func ValidateStep(step Step, draft *Draft) error {
	switch step {
	case StepDate:
		if draft.Date.IsZero() {
			return fmt.Errorf("%w: date is not selected", ErrGuardNotSatisfied)
		}
		if draft.SessionType != "" && !draft.SessionType.IsValid() {
			return fmt.Errorf("%w: unknown session type %q", ErrGuardNotSatisfied, draft.SessionType)
		}
		return nil

	case StepSlot:
		if draft.SlotStart.IsZero() {
			return fmt.Errorf("%w: slot is not selected", ErrGuardNotSatisfied)
		}
		if !sameDay(draft.SlotStart, draft.Date) {
			return fmt.Errorf("%w: selected slot does not belong to the selected date", ErrGuardNotSatisfied)
		}
		return nil

	case StepDetails:
		for field, value := range map[string]string{
			"name":       draft.Name,
			"email":      draft.Email,
			"child_name": draft.ChildName,
			"concerns":   draft.Concerns,
		} {
			if strings.TrimSpace(value) == "" {
				return fmt.Errorf("%w: %s is required", ErrGuardNotSatisfied, field)
			}
		}
		if !strings.Contains(draft.Email, "@") {
			return fmt.Errorf("%w: email is malformed", ErrGuardNotSatisfied)
		}
		if draft.ChildAge == nil {
			return fmt.Errorf("%w: child_age is required", ErrGuardNotSatisfied)
		}
		if *draft.ChildAge < 0 || *draft.ChildAge > domain.MaxChildAge {
			return fmt.Errorf("%w: child_age must be between 0 and %d", ErrGuardNotSatisfied, domain.MaxChildAge)
		}
		return nil

	case StepPayment:
		if draft.BookingID == "" {
			return fmt.Errorf("%w: booking is not created", ErrGuardNotSatisfied)
		}
		if !draft.PaymentSucceed {
			return fmt.Errorf("%w: payment is not confirmed", ErrGuardNotSatisfied)
		}
		return nil

	case StepConfirmation:
		return nil

	default:
		return fmt.Errorf("%w: %q", ErrUnknownStep, step)
	}
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
