package render

import (
	"bytes"
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Cell struct {
	Key   string
	Value interface{}
}

// Row is an ordered mapping from column name to scalar value.
type Row []Cell

func (r Row) Get(key string) (interface{}, bool) {
	for _, c := range r {
		if c.Key == key {
			return c.Value, true
		}
	}
	return nil, false
}

func (r Row) Keys() []string {
	keys := make([]string, len(r))
	for i, c := range r {
		keys[i] = c.Key
	}
	return keys
}

// Map drops ordering; used where a plain lookup table is needed (layout expressions).
func (r Row) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(r))
	for _, c := range r {
		m[c.Key] = c.Value
	}
	return m
}

func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(c.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(c.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r Row) MarshalBSONValue() (bsontype.Type, []byte, error) {
	d := make(bson.D, 0, len(r))
	for _, c := range r {
		d = append(d, bson.E{Key: c.Key, Value: c.Value})
	}
	return bson.MarshalValue(d)
}

func (r *Row) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var d bson.D
	if err := bson.UnmarshalValue(t, data, &d); err != nil {
		return err
	}
	row := make(Row, 0, len(d))
	for _, e := range d {
		row = append(row, Cell{Key: e.Key, Value: normalizeStored(e.Value)})
	}
	*r = row
	return nil
}

// normalizeStored maps driver-decoded scalars back to the types the engine produces.
func normalizeStored(v interface{}) interface{} {
	switch val := v.(type) {
	case primitive.DateTime:
		return val.Time().UTC()
	case int32:
		return int(val)
	case int64:
		return int(val)
	default:
		return val
	}
}
