// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PhoneAuth Contributors

package api

// RequestOTPRequest is the body of POST /api/v1/auth.
type RequestOTPRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

// RequestOTPResponse is the success body of POST /api/v1/auth. UserID is nil
// when the server omitted it.
type RequestOTPResponse struct {
	Message string `json:"message,omitempty"`
	UserID  *int64 `json:"user_id,omitempty"`
}

// VerifyOTPRequest is the body of POST /api/v1/verify-otp.
type VerifyOTPRequest struct {
	OTP string `json:"otp"`
}

// User is the profile returned with a verified session.
type User struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

// VerifyOTPResponse is the success body of POST /api/v1/verify-otp.
type VerifyOTPResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

// errorBody is the optional structured error shape.
type errorBody struct {
	Message string `json:"message"`
}

// Kind tags the outcome of a call.
type Kind int

// Call outcomes.
const (
	KindOK Kind = iota
	KindServerError
	KindTransportError
)

// String returns the metric label for k.
func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindServerError:
		return "server_error"
	default:
		return "transport_error"
	}
}

// Result is the outcome of one backend call. Payload is set for KindOK,
// Message for KindServerError and Err for KindTransportError.
type Result[T any] struct {
	Kind    Kind
	Payload T
	Message string
	Err     error
}

// OK reports whether the call succeeded.
func (r Result[T]) OK() bool {
	return r.Kind == KindOK
}
