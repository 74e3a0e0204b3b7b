package form

import (
	"fmt"

	"contentcms/internal/models"
)

// Decode converts a JSON form submission, decoded into plain maps and
// slices, into Values for the given fields. Absent and null fields are left
// out. Image fields accept null, an object with an "action" of keep, clear
// or store_new, or an image object with a "path".
func Decode(specs []FieldSpec, raw map[string]any) (Values, error) {
	values := make(Values, len(specs))
	for _, spec := range specs {
		v, ok := raw[spec.Name]
		if !ok || v == nil {
			continue
		}
		switch spec.Kind {
		case KindHTML, KindImageAltText, KindText, KindMetadata:
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s: expected a string, got %T", ErrInvalidValue, spec.Name, v)
			}
			values[spec.Name] = s
		case KindImage:
			img, err := decodeImage(spec.Name, v)
			if err != nil {
				return nil, err
			}
			values[spec.Name] = img
		case KindArray:
			list, ok := v.([]any)
			if !ok {
				return nil, fmt.Errorf("%w: %s: expected a list, got %T", ErrInvalidValue, spec.Name, v)
			}
			elements := make([]Values, 0, len(list))
			for i, item := range list {
				m, ok := item.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("%w: %s[%d]: expected an object, got %T", ErrInvalidValue, spec.Name, i, item)
				}
				ev, err := Decode(spec.Element, m)
				if err != nil {
					return nil, fmt.Errorf("%s[%d]: %w", spec.Name, i, err)
				}
				elements = append(elements, ev)
			}
			values[spec.Name] = elements
		default:
			return nil, fmt.Errorf("%w: %s: unknown field kind %q", ErrInvalidValue, spec.Name, spec.Kind)
		}
	}
	return values, nil
}

func decodeImage(key string, v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s: expected an object, got %T", ErrInvalidValue, key, v)
	}
	path, err := optionalString(key+".path", m["path"])
	if err != nil {
		return nil, err
	}
	client, err := optionalString(key+".client_file_name", m["client_file_name"])
	if err != nil {
		return nil, err
	}

	action, ok := m["action"]
	if !ok {
		img := models.NewImage(path, client)
		return &img, nil
	}
	name, err := optionalString(key+".action", action)
	if err != nil {
		return nil, err
	}
	switch a := UploadAction(name); a {
	case UploadKeep, UploadClear:
		return ImageUpload{Action: a}, nil
	case UploadStoreNew:
		return ImageUpload{Action: a, Image: models.NewImage(path, client)}, nil
	}
	return nil, fmt.Errorf("%w: %s: unknown upload action %q", ErrInvalidValue, key, name)
}

func optionalString(key string, v any) (string, error) {
	if v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s: expected a string, got %T", ErrInvalidValue, key, v)
	}
	return s, nil
}
