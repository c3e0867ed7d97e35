package api

import "encoding/json"

// MsgNoResponse is the exact connectivity message surfaced when a request was
// dispatched but no response arrived.
const MsgNoResponse = "No response from server. Check your connection."

// APIError is the single normalized failure shape produced by the client.
//
// Server failures (non-2xx) preserve the server's own error payload in Fields
// and annotate it with the numeric Status. Transport and client-side failures
// carry Success=false plus a message and no Status.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]interface{}
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message != "" {
		return e.Message
	}
	return "request failed"
}

// IsServerError reports whether the backend answered with a non-2xx status.
func (e *APIError) IsServerError() bool {
	return e != nil && e.Status != 0
}

// Payload reconstructs the rejection object: the server body annotated with
// "status" for server errors, or {success:false, message} otherwise.
func (e *APIError) Payload() map[string]interface{} {
	if e == nil {
		return nil
	}
	out := make(map[string]interface{}, len(e.Fields)+2)
	for k, v := range e.Fields {
		out[k] = v
	}
	if e.Status != 0 {
		out["status"] = e.Status
		return out
	}
	out["success"] = false
	out["message"] = e.Message
	return out
}

// MarshalJSON renders the same shape Payload describes.
func (e *APIError) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Payload())
}

func serverError(status int, body []byte) *APIError {
	fields := map[string]interface{}{}
	if len(body) > 0 {
		// A non-JSON error body is kept verbatim under "message".
		if err := json.Unmarshal(body, &fields); err != nil {
			fields = map[string]interface{}{"message": string(body)}
		}
	}
	message, _ := fields["message"].(string)
	return &APIError{Status: status, Message: message, Fields: fields}
}

func transportError() *APIError {
	return &APIError{Message: MsgNoResponse}
}

func requestError(err error) *APIError {
	message := "An unexpected error occurred."
	if err != nil && err.Error() != "" {
		message = err.Error()
	}
	return &APIError{Message: message}
}
