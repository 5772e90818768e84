package get_available_slots

import (
	"time"

	"github.com/toykraft/consult-booking-service/internal/domain"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	UserID      int64              // ID пользователя (для логирования, не влияет на результат)
	Date        time.Time          // Календарная дата (без времени)
	SessionType domain.SessionType // Тип сессии
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date        time.Time          // Дата, на которую запрашивались слоты
	SessionType domain.SessionType // Тип сессии
	DayStatus   domain.DayStatus   // Различает нерабочий день и полностью занятый
	Slots       []domain.Slot      // Список доступных слотов (по возрастанию start_time)
}
