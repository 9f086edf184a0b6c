package port

// Fields - структурированные данные для лога.
type Fields map[string]interface{}

// LoggerPort - контракт логирования для ядра приложения.
type LoggerPort interface {
	Info(msg string, fields Fields)
	Warn(msg string, fields Fields)
	// Error записывает ошибку вместе с объектом error.
	Error(msg string, err error, fields Fields)
	Debug(msg string, fields Fields)

	// WithFields возвращает логгер с уже добавленными полями (use_case, trace_id и т.п.).
	WithFields(fields Fields) LoggerPort
}
