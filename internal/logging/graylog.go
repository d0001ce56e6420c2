package logging

import (
	"fmt"
	"log/slog"

	"github.com/Graylog2/go-gelf/gelf"
)

// GraylogHandler sends records to a Graylog GELF UDP input.
type GraylogHandler struct {
	slog.Handler
	writer *gelf.Writer
}

// NewGraylogHandler dials the GELF input at address. Each record becomes one
// GELF message whose short message is the text-formatted record.
func NewGraylogHandler(address, level string) (*GraylogHandler, error) {
	w, err := gelf.NewWriter(address)
	if err != nil {
		return nil, fmt.Errorf("failed to create graylog writer: %w", err)
	}
	w.Facility = "wheelsim"

	return &GraylogHandler{
		Handler: slog.NewTextHandler(w, handlerOptions(parseLevel(level))),
		writer:  w,
	}, nil
}

// Close closes the UDP connection.
func (h *GraylogHandler) Close() error {
	return h.writer.Close()
}
