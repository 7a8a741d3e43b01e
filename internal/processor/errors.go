/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package processor

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/mpromonet/gin-postproc/internal/params"
)

// ResultCode classifies the outcome of a processor operation.
type ResultCode int

const (
	Ok ResultCode = iota
	Uninitialized
	InvalidParam
	MemoryError
	InvalidState
	Other
	OutOfRange
	InvalidParamSetError
)

var codeNames = [...]string{
	Ok:                   "ok",
	Uninitialized:        "uninitialized",
	InvalidParam:         "invalid_param",
	MemoryError:          "memory_error",
	InvalidState:         "invalid_state",
	Other:                "other",
	OutOfRange:           "out_of_range",
	InvalidParamSetError: "invalid_param_set_error",
}

func (c ResultCode) String() string {
	if c < 0 || int(c) >= len(codeNames) {
		return fmt.Sprintf("code(%d)", int(c))
	}
	return codeNames[c]
}

// Error carries the result code of a failed operation.
type Error struct {
	Code ResultCode
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op == "" && e.Err == nil:
		return "processor: " + e.Code.String()
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the code sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Op == "" && t.Err == nil && t.Code == e.Code
}

var (
	ErrUninitialized        = &Error{Code: Uninitialized}
	ErrInvalidParam         = &Error{Code: InvalidParam}
	ErrMemory               = &Error{Code: MemoryError}
	ErrInvalidState         = &Error{Code: InvalidState}
	ErrOther                = &Error{Code: Other}
	ErrOutOfRange           = &Error{Code: OutOfRange}
	ErrInvalidParamSetError = &Error{Code: InvalidParamSetError}
)

// CodeOf returns the result code carried by err. Errors not produced by
// this package map to Other.
func CodeOf(err error) ResultCode {
	if err == nil {
		return Ok
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Other
}

func codeOfStatus(st params.Status) ResultCode {
	switch st {
	case params.StatusOk:
		return Ok
	case params.StatusOutOfRange:
		return OutOfRange
	}
	return InvalidParam
}

// invalidArgument is the response code of a rejected configuration.
const invalidArgument = 3

type resInfo struct {
	ResID     string `json:"res_id"`
	Code      int    `json:"code"`
	DetailMsg string `json:"detail_msg"`
}

// errorDocument answers a configuration that could not be applied at all.
func errorDocument(resID, msg string) []byte {
	doc, _ := json.Marshal(struct {
		ResInfo resInfo `json:"res_info"`
	}{resInfo{ResID: resID, Code: invalidArgument, DetailMsg: msg}})
	return doc
}
