package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/toykraft/consult-booking-service/internal/api/handlers"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// Auth проверяет заголовок X-User-ID и кладёт идентификатор пользователя
// в контекст запроса. Аутентификацию выполняет внешний gateway, сюда
// приходит уже проверенный идентификатор.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-User-ID")
		if raw == "" {
			handlers.RespondError(w, http.StatusUnauthorized, "отсутствует заголовок X-User-ID")
			return
		}

		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			handlers.RespondError(w, http.StatusUnauthorized, "некорректный заголовок X-User-ID")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromContext возвращает идентификатор пользователя из контекста
func UserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}
