package types

import (
	"encoding/json"
	"fmt"

	collcodec "cosmossdk.io/collections/codec"
)

// JSONValue returns a collections value codec that stores T as JSON, the
// encoding contract state is read back with by raw queries.
func JSONValue[T any]() collcodec.ValueCodec[T] {
	return jsonValue[T]{}
}

type jsonValue[T any] struct{}

func (jsonValue[T]) Encode(value T) ([]byte, error) {
	return json.Marshal(value)
}

func (jsonValue[T]) Decode(b []byte) (T, error) {
	var value T
	if err := json.Unmarshal(b, &value); err != nil {
		return value, fmt.Errorf("failed to decode %T: %w", value, err)
	}
	return value, nil
}

func (c jsonValue[T]) EncodeJSON(value T) ([]byte, error) {
	return c.Encode(value)
}

func (c jsonValue[T]) DecodeJSON(b []byte) (T, error) {
	return c.Decode(b)
}

func (c jsonValue[T]) Stringify(value T) string {
	bz, err := c.Encode(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(bz)
}

func (jsonValue[T]) ValueType() string {
	var value T
	return fmt.Sprintf("json/%T", value)
}
