package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// errorEntry is one element of the bridge's error envelope:
// {"error": {"type": 1, "address": "/lights", "description": "unauthorized user"}}
type errorEntry struct {
	Error *struct {
		Type        int    `json:"type"`
		Address     string `json:"address"`
		Description string `json:"description"`
	} `json:"error"`
}

func entryError(raw []byte) *BridgeAPIError {
	var e errorEntry
	if err := json.Unmarshal(raw, &e); err != nil || e.Error == nil {
		return nil
	}
	return &BridgeAPIError{
		Type:        e.Error.Type,
		Description: e.Error.Description,
		Address:     e.Error.Address,
	}
}

// bridgeError extracts the first bridge error from a response body. The
// bridge reports errors either as a list of entries or as a single entry.
func bridgeError(body []byte) (*BridgeAPIError, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("empty body")
	}
	if !json.Valid(trimmed) {
		return nil, errors.New("invalid JSON")
	}

	switch trimmed[0] {
	case '[':
		var entries []json.RawMessage
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if apiErr := entryError(entry); apiErr != nil {
				return apiErr, nil
			}
		}
	case '{':
		if apiErr := entryError(trimmed); apiErr != nil {
			return apiErr, nil
		}
	}
	return nil, nil
}

// decode turns a raw response into either a bridge error or a T
func decode[T any](endpoint string, status int, body []byte) (T, error) {
	var out T

	apiErr, err := bridgeError(body)
	if err != nil {
		return out, &MalformedResponseError{Endpoint: endpoint, Err: err}
	}
	if apiErr != nil {
		return out, apiErr
	}
	if status < 200 || status > 299 {
		return out, &MalformedResponseError{Endpoint: endpoint, Err: fmt.Errorf("unexpected status %d", status)}
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, &MalformedResponseError{Endpoint: endpoint, Err: err}
	}
	return out, nil
}
