package rpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/rivenwatch/internal/decode"
	"github.com/danielpatrickdp/rivenwatch/internal/query"
	"github.com/danielpatrickdp/rivenwatch/internal/riven"
)

// #region messages
// IdentityResponse carries a stock record's identity.
type IdentityResponse struct {
	ID        string `json:"id"`
	Canonical string `json:"canonical"`
}

// EncodeQueryResponse carries the encoded search parameters and query string.
type EncodeQueryResponse struct {
	Query   query.SearchQuery `json:"query"`
	Encoded string            `json:"encoded"`
}

// ProjectResponse is a graded riven with its display values across ranks and
// variants.
type ProjectResponse struct {
	Riven    riven.GradedRiven          `json:"riven"`
	Variants []decode.VariantProjection `json:"variants"`
}

// #endregion messages

// #region conversion
// toStruct converts any JSON-serializable value into a Struct.
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("message is not an object: %w", err)
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("build struct: %w", err)
	}
	return s, nil
}

// fromStruct decodes a Struct into v through its JSON form.
func fromStruct(s *structpb.Struct, v interface{}) error {
	data, err := json.Marshal(s.AsMap())
	if err != nil {
		return fmt.Errorf("marshal struct: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	return nil
}

// #endregion conversion
