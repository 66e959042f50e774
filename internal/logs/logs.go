package logs

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New – logger do pliku (JSON, append), opcjonalnie z kopią na konsolę.
// Pusta ścieżka = tylko konsola (stderr).
func New(logFilePath string, withConsole bool) zerolog.Logger {
	// Format czasu
	zerolog.TimeFieldFormat = time.RFC3339

	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}

	var writer io.Writer = consoleWriter
	if logFilePath != "" {
		// Utwórz plik logów (append + tworzenie jeśli brak)
		logFile, err := os.OpenFile(logFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			log.Fatal().Err(err).Msg("Nie można otworzyć pliku log")
		}
		writer = logFile
		if withConsole {
			writer = zerolog.MultiLevelWriter(logFile, consoleWriter)
		}
	}

	// Logger z timestampem i info o miejscu wywołania
	logger := zerolog.New(writer).With().
		Timestamp().
		Caller().
		Logger()

	// Ustaw globalny logger
	log.Logger = logger

	return logger
}
