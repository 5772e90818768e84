package update_schedule_config

import (
	"context"

	"github.com/toykraft/consult-booking-service/internal/service/schedule/models"
)

type ScheduleService interface {
	UpdateWorkingHours(ctx context.Context, req *models.UpdateWorkingHoursRequest) (*models.ScheduleResponse, error)
	UpdateRules(ctx context.Context, req *models.UpdateRulesRequest) (*models.ScheduleResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
