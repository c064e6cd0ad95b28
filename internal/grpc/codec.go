package grpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// decodeStruct maps a JSON-shaped request message onto dest using the
// json tags of the evaluator record types.
func decodeStruct(in *structpb.Struct, dest any) error {
	if in == nil {
		return nil
	}
	raw, err := json.Marshal(in.AsMap())
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

// encodeStruct renders v through its json tags into a response message.
func encodeStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return structpb.NewStruct(m)
}
