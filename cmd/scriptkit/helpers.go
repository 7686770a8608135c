package main

import (
	"fmt"
	"strconv"
	"strings"

	"scriptkit/internal/mkv"
)

// parseIDList parses a comma-separated list of non-negative track IDs.
func parseIDList(value string) ([]int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid track ID %q", part)
		}
		if id < 0 {
			return nil, fmt.Errorf("invalid track ID %d", id)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no track IDs in %q", value)
	}
	return ids, nil
}

// parseTrackEditSpec parses a --track value of the form
// "ID:name=...,language=...,default=yes|no,forced=yes|no". Name values
// containing commas need their own --track flag per field.
func parseTrackEditSpec(spec string) (mkv.TrackEdit, error) {
	idPart, rest, ok := strings.Cut(spec, ":")
	if !ok || strings.TrimSpace(rest) == "" {
		return mkv.TrackEdit{}, fmt.Errorf("track spec %q: expected ID:field=value[,field=value...]", spec)
	}
	id, err := strconv.Atoi(strings.TrimSpace(idPart))
	if err != nil || id < 0 {
		return mkv.TrackEdit{}, fmt.Errorf("track spec %q: invalid track ID %q", spec, idPart)
	}

	edit := mkv.TrackEdit{Track: id}
	for _, field := range strings.Split(rest, ",") {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			return mkv.TrackEdit{}, fmt.Errorf("track spec %q: field %q is not key=value", spec, field)
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "name":
			v := value
			edit.Name = &v
		case "language":
			v := strings.TrimSpace(value)
			edit.Language = &v
		case "default":
			b, err := parseYesNo(value)
			if err != nil {
				return mkv.TrackEdit{}, fmt.Errorf("track spec %q: %w", spec, err)
			}
			edit.Default = &b
		case "forced":
			b, err := parseYesNo(value)
			if err != nil {
				return mkv.TrackEdit{}, fmt.Errorf("track spec %q: %w", spec, err)
			}
			edit.Forced = &b
		default:
			return mkv.TrackEdit{}, fmt.Errorf("track spec %q: unknown field %q", spec, key)
		}
	}
	return edit, nil
}

func parseYesNo(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "true", "1", "on":
		return true, nil
	case "no", "false", "0", "off":
		return false, nil
	}
	return false, fmt.Errorf("expected yes or no, got %q", value)
}
