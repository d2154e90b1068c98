// Package report provides output formatters for member listings and
// resolution dry runs in JSON and human-readable text formats.
package report

import (
	"encoding/json"
	"io"
)

// Version is the JSON output format version.
const Version = "0.1.0"

// JSONReport is the top-level JSON output structure. One of Listing and
// Resolution is set.
type JSONReport struct {
	Version    string      `json:"version"`
	Listing    *Listing    `json:"listing,omitempty"`
	Resolution *Resolution `json:"resolution,omitempty"`
}

// WriteListingJSON writes a member listing as formatted JSON.
func WriteListingJSON(w io.Writer, l *Listing) error {
	if l.Members == nil {
		l.Members = []Member{}
	}
	return writeJSON(w, JSONReport{Version: Version, Listing: l})
}

// WriteResolutionJSON writes a resolution outcome as formatted JSON.
func WriteResolutionJSON(w io.Writer, r *Resolution) error {
	return writeJSON(w, JSONReport{Version: Version, Resolution: r})
}

func writeJSON(w io.Writer, report JSONReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
