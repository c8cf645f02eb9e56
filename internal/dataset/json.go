package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// ReadJSON reads an array of objects, or an object whose "data", "rows" or
// "records" field holds one. Columns appear in first-seen key order.
func ReadJSON(r io.Reader) (*Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	var items []json.RawMessage
	if len(raw) > 0 && raw[0] == '{' {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		for _, k := range []string{"data", "rows", "records"} {
			if v, ok := wrapper[k]; ok {
				raw = v
				break
			}
		}
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("parse json: expected an array of objects: %w", err)
	}

	d := &Dataset{HasHeader: true}
	index := map[string]int{}
	var records []map[string]string
	for i, item := range items {
		keys, values, err := decodeObject(item)
		if err != nil {
			return nil, fmt.Errorf("parse json: row %d: %w", i+1, err)
		}
		rec := make(map[string]string, len(keys))
		for j, k := range keys {
			if _, ok := index[k]; !ok {
				index[k] = len(d.Columns)
				d.Columns = append(d.Columns, k)
			}
			rec[k] = values[j]
		}
		records = append(records, rec)
	}
	for _, rec := range records {
		row := make([]string, len(d.Columns))
		for k, v := range rec {
			row[index[k]] = v
		}
		d.Rows = append(d.Rows, row)
	}
	return d, nil
}

// decodeObject returns the keys of a JSON object in document order with
// their values rendered as cell strings.
func decodeObject(raw json.RawMessage) ([]string, []string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected object")
	}
	var keys, values []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := tok.(string)
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		keys = append(keys, key)
		values = append(values, cellString(v))
	}
	return keys, values, nil
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	}
	b, _ := json.Marshal(v)
	return string(b)
}
