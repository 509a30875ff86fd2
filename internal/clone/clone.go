//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package clone provides deep copies of stored values.
package clone

import (
	"encoding/json"
	"errors"
)

// Clone performs a deep copy of src through its JSON form.
// Values round-trip through their own MarshalJSON/UnmarshalJSON, so
// types with unexported fields and custom codecs copy faithfully.
func Clone[T any](src *T) (*T, error) {
	if src == nil {
		return nil, errors.New("nil input")
	}
	data, err := json.Marshal(src)
	if err != nil {
		return nil, err
	}
	var dst T
	if err := json.Unmarshal(data, &dst); err != nil {
		return nil, err
	}
	return &dst, nil
}
