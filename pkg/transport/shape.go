package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

// Shape declares how an endpoint module's successful responses are laid out.
type Shape int

const (
	// Enveloped bodies look like {success, data, message, errors}.
	Enveloped Shape = iota + 1
	// Bare bodies are the payload itself.
	Bare
)

func (s Shape) String() string {
	switch s {
	case Enveloped:
		return "enveloped"
	case Bare:
		return "bare"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

// Envelope is the wrapper some backend modules put around payloads.
type Envelope[T any] struct {
	Success *bool           `json:"success"`
	Data    T               `json:"data"`
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors,omitempty"`
}

// Decode resolves body according to shape. Empty bodies decode to the zero
// value. An envelope reporting success=false and an undecodable body are both
// returned as REQUEST_FAILED with status 502.
func Decode[T any](shape Shape, body []byte) (T, error) {
	var zero T
	if len(bytes.TrimSpace(body)) == 0 {
		return zero, nil
	}

	switch shape {
	case Enveloped:
		var env Envelope[T]
		if err := json.Unmarshal(body, &env); err != nil {
			return zero, appErrors.Wrap(err, appErrors.ErrRequestFailed.Code, http.StatusBadGateway, "malformed response")
		}
		if env.Success != nil && !*env.Success {
			return zero, rejected(NormalizeMessage(body))
		}
		return env.Data, nil
	case Bare:
		var out T
		if err := json.Unmarshal(body, &out); err != nil {
			return zero, appErrors.Wrap(err, appErrors.ErrRequestFailed.Code, http.StatusBadGateway, "malformed response")
		}
		return out, nil
	default:
		return zero, fmt.Errorf("transport: unknown response %s", shape)
	}
}

func rejected(message string) *appErrors.Error {
	err := appErrors.Clone(appErrors.ErrRequestFailed, message)
	err.Status = http.StatusBadGateway
	return err
}
