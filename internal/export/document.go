package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"MarkupBoard/internal/state"
)

// DocumentVersion is written into every data file.
const DocumentVersion = "1.0"

// dateLayout is ISO-8601 in UTC with millisecond precision.
const dateLayout = "2006-01-02T15:04:05.000Z07:00"

// MediaInfo identifies the media a document was authored on.
type MediaInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Document is the annotation data file. Annotations are stored unscaled
// and include hidden ones, so the file restores the full session.
type Document struct {
	Media       MediaInfo          `json:"media"`
	Annotations []state.Annotation `json:"annotations"`
	ExportDate  string             `json:"exportDate"`
	Version     string             `json:"version"`
	Display     *Dimensions        `json:"display,omitempty"`
}

// NewDocument builds a data file for the given session. A zero display is
// left out.
func NewDocument(media MediaInfo, annotations []state.Annotation, display Dimensions, now time.Time) Document {
	doc := Document{
		Media:       media,
		Annotations: annotations,
		ExportDate:  now.UTC().Format(dateLayout),
		Version:     DocumentVersion,
	}
	if doc.Annotations == nil {
		doc.Annotations = []state.Annotation{}
	}
	if !display.Empty() {
		d := display
		doc.Display = &d
	}
	return doc
}

// WriteDocument writes doc as indented JSON.
func WriteDocument(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("export: write document: %w", err)
	}
	return nil
}

// ReadDocument parses a data file written by WriteDocument or by the web
// annotator it replaces.
func ReadDocument(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("export: read document: %w", err)
	}
	if doc.Version == "" {
		doc.Version = DocumentVersion
	}
	return doc, nil
}

// Date parses ExportDate.
func (d Document) Date() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, d.ExportDate)
}
