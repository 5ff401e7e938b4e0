package annotation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/labelmesh/pkg/encoding"
	"github.com/Faultbox/labelmesh/pkg/math"
)

// Decode errors.
var (
	ErrMissingID          = errors.New("annotation has no GlobalId")
	ErrDuplicateID        = errors.New("duplicate annotation GlobalId")
	ErrMissingCoordinates = errors.New("annotation geometry has fewer than 2 coordinates")
	ErrInvalidBounds      = errors.New("annotation bounds have min greater than max")
	ErrMissingField       = errors.New("annotation field is missing or empty")
)

// record mirrors one element of the FME annotations.json array.
type record struct {
	GlobalID string   `json:"GlobalId"`
	Text     string   `json:"_text"`
	Rotation number   `json:"_rotation_ccw_degree"`
	Geometry geometry `json:"json_geometry"`
	MinX     number   `json:"_minx"`
	MinY     number   `json:"_miny"`
	MinZ     number   `json:"_minz"`
	MaxX     number   `json:"_maxx"`
	MaxY     number   `json:"_maxy"`
	MaxZ     number   `json:"_maxz"`
}

type geometry struct {
	Type        string   `json:"type"`
	Coordinates []number `json:"coordinates"`
}

// number accepts both JSON numbers and numeric strings; FME writes
// attribute values as strings unless the schema says otherwise.
// valid stays false for absent keys, null and empty strings.
type number struct {
	value float64
	valid bool
}

func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = number{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = number{}
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid numeric string %q", s)
		}
		*n = number{value: f, valid: true}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = number{value: f, valid: true}
	return nil
}

// Decode parses a UTF-8 JSON array of annotation records.
func Decode(data []byte) ([]Annotation, error) {
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing annotations: %w", err)
	}

	annotations := make([]Annotation, 0, len(records))
	seen := make(map[string]int, len(records))
	for i, rec := range records {
		a, err := rec.toAnnotation()
		if err != nil {
			return nil, fmt.Errorf("record %d (%q): %w", i, rec.GlobalID, err)
		}
		if prev, ok := seen[a.ID]; ok {
			return nil, fmt.Errorf("record %d (%q): %w (first seen at record %d)", i, a.ID, ErrDuplicateID, prev)
		}
		seen[a.ID] = i
		annotations = append(annotations, a)
	}
	return annotations, nil
}

// DecodeEncoded converts data from the named encoding before decoding.
func DecodeEncoded(data []byte, enc string) ([]Annotation, error) {
	utf8, err := encoding.ToUTF8(data, enc)
	if err != nil {
		return nil, err
	}
	return Decode(utf8)
}

// Load reads and decodes an annotations file.
func Load(path string, enc string) ([]Annotation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading annotations: %w", err)
	}
	return DecodeEncoded(data, enc)
}

func (r *record) toAnnotation() (Annotation, error) {
	if strings.TrimSpace(r.GlobalID) == "" {
		return Annotation{}, ErrMissingID
	}

	required := []struct {
		key string
		n   number
	}{
		{"_rotation_ccw_degree", r.Rotation},
		{"_minx", r.MinX},
		{"_miny", r.MinY},
		{"_maxx", r.MaxX},
		{"_maxy", r.MaxY},
	}
	for _, f := range required {
		if !f.n.valid {
			return Annotation{}, fmt.Errorf("%w: %s", ErrMissingField, f.key)
		}
	}

	bounds := math.Box{
		Min: math.Vec3{X: r.MinX.value, Y: r.MinY.value, Z: r.MinZ.value},
		Max: math.Vec3{X: r.MaxX.value, Y: r.MaxY.value, Z: r.MaxZ.value},
	}
	if bounds.Min.X > bounds.Max.X || bounds.Min.Y > bounds.Max.Y {
		return Annotation{}, ErrInvalidBounds
	}

	coords := r.Geometry.Coordinates
	if len(coords) < 2 || !coords[0].valid || !coords[1].valid {
		return Annotation{}, ErrMissingCoordinates
	}
	base := math.Vec3{X: coords[0].value, Y: coords[1].value, Z: bounds.Min.Z}
	if len(coords) > 2 && coords[2].valid {
		base.Z = coords[2].value
	}

	deg := r.Rotation.value
	return Annotation{
		ID:              r.GlobalID,
		Text:            r.Text,
		RotationDegrees: deg,
		Rotation:        ClassifyRotation(deg),
		Base:            base,
		Bounds:          bounds,
	}, nil
}
