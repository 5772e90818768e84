package schedule

import "errors"

var (
	// ErrRulesNotFound возвращается, когда запись scheduling_rules отсутствует
	ErrRulesNotFound = errors.New("schedule.repository: scheduling rules not found")

	// ErrWorkingHoursNotFound возвращается, когда строка дня недели отсутствует
	ErrWorkingHoursNotFound = errors.New("schedule.repository: working hours not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("schedule.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("schedule.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("schedule.repository: failed to scan row")
)
