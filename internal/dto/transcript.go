package dto

import (
	"io"
	"time"
)

// TranscriptRequest selects the export format.
type TranscriptRequest struct {
	Format string `json:"format"`
}

// TranscriptLink points at a stored transcript.
type TranscriptLink struct {
	URL       string    `json:"url"`
	Token     string    `json:"token"`
	Format    string    `json:"format"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TranscriptFile is a transcript opened for download. Callers must close Body.
type TranscriptFile struct {
	Name        string
	ContentType string
	Body        io.ReadCloser
}
