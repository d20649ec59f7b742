package util

import (
	"airunote/internal/model"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

var Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// SetupLogger : настраивает глобальный логгер по уровню и формату (json или console)
func SetupLogger(level string, format string, output io.Writer) {
	if output == nil {
		output = os.Stdout
	}
	if strings.EqualFold(format, "console") {
		output = zerolog.ConsoleWriter{Out: output}
	}

	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}

	Logger = zerolog.New(output).Level(parsed).With().Timestamp().Logger()
}

// LogError : логирует сбой и оборачивает его, errors.Is/As продолжают работать
func LogError(message string, err error) error {
	Logger.Error().Err(err).Msg(message)
	return fmt.Errorf("%s: %w", message, err)
}

// LogDomainError : бизнес-ошибка логируется как предупреждение с внутренним видом и возвращается как есть
func LogDomainError(component string, err error) error {
	Logger.Warn().Str("kind", string(model.KindOf(err))).Err(err).Msg(component)
	return err
}

func HandleError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Code    int    `json:"code"`
	}{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	json.NewEncoder(w).Encode(errorResponse)
}
