package serializer

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response
type Response struct {
	Code  int         `json:"code"`
	Data  interface{} `json:"data,omitempty"`
	Msg   string      `json:"msg"`
	Error string      `json:"error,omitempty"`
}

// FieldErrorResponse carries the rejected input field of a validation error.
type FieldErrorResponse struct {
	Response
	Field string `json:"field"`
}

// CheckLogin
func CheckLogin() Response {
	return Response{
		Code: http.StatusUnauthorized,
		Msg:  "please login first",
	}
}

// Err
func Err(errCode int, msg string, err error) Response {
	res := Response{
		Code: errCode,
		Msg:  msg,
	}
	// development mode, show error detail
	if err != nil && gin.Mode() != gin.ReleaseMode {
		res.Error = fmt.Sprintf("%+v", err)
	}
	return res
}

// DBErr
func DBErr(msg string, err error) Response {
	if msg == "" {
		msg = "database error"
	}
	return Err(http.StatusInternalServerError, msg, err)
}

// ParamErr
func ParamErr(msg string, err error) Response {
	if msg == "" {
		msg = "parameter error"
	}
	return Err(http.StatusBadRequest, msg, err)
}

// FieldErr
func FieldErr(field, msg string) FieldErrorResponse {
	return FieldErrorResponse{Response: Err(http.StatusBadRequest, msg, nil), Field: field}
}

// AuthErr
func AuthErr(msg string) Response {
	if msg == "" {
		msg = "authentication error"
	}
	return Err(http.StatusUnauthorized, msg, nil)
}

// ForbiddenErr
func ForbiddenErr(msg string) Response {
	if msg == "" {
		msg = "permission denied"
	}
	return Err(http.StatusForbidden, msg, nil)
}

// NotFoundErr
func NotFoundErr(msg string, err error) Response {
	if msg == "" {
		msg = "not found"
	}
	return Err(http.StatusNotFound, msg, err)
}

// ConflictErr
func ConflictErr(msg string, err error) Response {
	if msg == "" {
		msg = "conflict"
	}
	return Err(http.StatusConflict, msg, err)
}
