package services

import "encoding/json"

// toMap and fromMap round-trip domain structs through the DataStore's
// map[string]any shape. The store is JSON-native (§4.1), so a marshal/
// unmarshal pair is the natural codec rather than a hand-rolled mapper.
func toMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func fromMap(raw any, out any) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
