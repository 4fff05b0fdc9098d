package events

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Marshal encodes a record as a protobuf Struct so every transport shares one wire format.
func Marshal(r Record) ([]byte, error) {
	s, err := structpb.NewStruct(map[string]any{
		"path":   r.Path,
		"urgent": r.Urgent,
		"data":   map[string]any(r.Data),
	})
	if err != nil {
		return nil, fmt.Errorf("build record struct: %w", err)
	}
	b, err := proto.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	return b, nil
}

// Unmarshal decodes a record produced by Marshal. Numbers come back as float64;
// the DataMap getters handle that.
func Unmarshal(b []byte) (Record, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(b, &s); err != nil {
		return Record{}, fmt.Errorf("unmarshal record: %w", err)
	}
	m := s.AsMap()

	path, _ := m["path"].(string)
	if path == "" {
		return Record{}, fmt.Errorf("record has no path")
	}
	urgent, _ := m["urgent"].(bool)

	data := DataMap{}
	if raw, ok := m["data"].(map[string]any); ok {
		data = DataMap(raw)
	}
	return Record{Path: path, Data: data, Urgent: urgent}, nil
}
