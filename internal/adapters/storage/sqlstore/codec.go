package sqlstore

import "encoding/json"

// Las listas chicas (workday, specialties, roles, ids) se guardan como JSON en una columna TEXT.

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeJSON(raw string, v any) error {
	if raw == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), v)
}
