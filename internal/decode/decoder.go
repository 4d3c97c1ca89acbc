// Package decode turns raw device export files (GPX, TCX, FIT) into a
// canonical TrackSequence. Each wire format has one Decoder; the registry
// selects one by sniffing the file signature, falling back to the file
// extension.
package decode

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/openpace/activity-backend-go/internal/models"
)

// Decoder converts one wire format into a TrackSequence.
type Decoder interface {
	// Format returns the short format name (gpx, tcx, fit).
	Format() string

	// Sniff reports whether the raw bytes look like this format.
	Sniff(data []byte) bool

	// Decode parses the file. Returns *models.DecodeError for malformed
	// input and *models.ValidationError for structurally valid but
	// semantically unusable input.
	Decode(data []byte) (*models.TrackSequence, error)
}

// Config holds decoder tuning shared by all formats.
type Config struct {
	// MaxDroppedFraction is the largest fraction of unusable points
	// (out-of-order timestamps, unparseable samples) tolerated before the
	// whole file is rejected.
	MaxDroppedFraction float64
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{MaxDroppedFraction: 0.05}
}

// Registry selects a decoder for a file. Adding a format means adding one
// Decoder implementation here; the orchestrator's control flow is untouched.
type Registry struct {
	decoders []Decoder
}

// NewRegistry creates a registry with all supported formats.
func NewRegistry(cfg Config) *Registry {
	return &Registry{
		decoders: []Decoder{
			NewFITDecoder(cfg),
			NewTCXDecoder(cfg),
			NewGPXDecoder(cfg),
		},
	}
}

// Detect picks a decoder by signature sniffing, then by file extension.
// Unknown input yields a DecodeError.
func (r *Registry) Detect(filename string, data []byte) (Decoder, error) {
	for _, d := range r.decoders {
		if d.Sniff(data) {
			return d, nil
		}
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	for _, d := range r.decoders {
		if d.Format() == ext {
			return d, nil
		}
	}

	return nil, &models.DecodeError{Format: ext, Reason: "unrecognized file format"}
}

// xmlRootIs reports whether the document's first element has the given local
// name, skipping the XML declaration, comments and whitespace.
func xmlRootIs(data []byte, name string) bool {
	rest := data
	for {
		i := bytes.IndexByte(rest, '<')
		if i < 0 {
			return false
		}
		rest = rest[i+1:]
		if len(rest) == 0 {
			return false
		}
		switch rest[0] {
		case '?', '!':
			continue
		}
		// First real element.
		end := len(rest)
		for j, c := range rest {
			if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '>' || c == '/' {
				end = j
				break
			}
		}
		tag := string(rest[:end])
		if k := strings.IndexByte(tag, ':'); k >= 0 {
			tag = tag[k+1:]
		}
		return strings.EqualFold(tag, name)
	}
}
