package likestests

import (
	"fmt"

	"github.com/stretchr/testify/assert"

	"github.com/vkqa/likes-contract-tests/vkapi"
)

// Outcome is the result of one API call: either a response or an error, never both.
type Outcome struct {
	Response interface{}
	Err      error
}

// Observe captures the results of a call, so that Observe(query.Execute(ctx)) works for any
// query.
func Observe(response interface{}, err error) Outcome {
	if err != nil {
		return Outcome{Err: err}
	}
	return Outcome{Response: response}
}

func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// Category is the error category, or CategoryUnknown for errors that did not come from the API.
func (o Outcome) Category() vkapi.Category {
	if apiErr, ok := vkapi.AsError(o.Err); ok {
		return apiErr.Category
	}
	return vkapi.CategoryUnknown
}

// Code is the API error code, or 0 for errors that did not come from the API.
func (o Outcome) Code() int {
	if apiErr, ok := vkapi.AsError(o.Err); ok {
		return apiErr.Code
	}
	return 0
}

func (o Outcome) String() string {
	if o.Err != nil {
		return fmt.Sprintf("%s error %d (%s)", o.Category(), o.Code(), o.Err)
	}
	return fmt.Sprintf("success %+v", o.Response)
}

// Expectation describes the outcome a call should have.
type Expectation interface {
	Verify(Outcome) error
	String() string
}

type responseExpectation struct {
	expected interface{}
}

// ExpectResponse expects the call to succeed with a response equal to the given value.
func ExpectResponse(expected interface{}) Expectation {
	return responseExpectation{expected: expected}
}

func (e responseExpectation) Verify(o Outcome) error {
	if !o.Succeeded() {
		return fmt.Errorf("expected success with %+v, but got %s", e.expected, o)
	}
	if !assert.ObjectsAreEqual(e.expected, o.Response) {
		return fmt.Errorf("expected response %+v, got %+v", e.expected, o.Response)
	}
	return nil
}

func (e responseExpectation) String() string {
	return fmt.Sprintf("success %+v", e.expected)
}

type successExpectation struct{}

// ExpectSuccess expects the call to succeed with any response.
func ExpectSuccess() Expectation {
	return successExpectation{}
}

func (successExpectation) Verify(o Outcome) error {
	if !o.Succeeded() {
		return fmt.Errorf("expected success, but got %s", o)
	}
	return nil
}

func (successExpectation) String() string { return "success" }

type failureExpectation struct {
	category vkapi.Category
	code     int
}

// ExpectFailure expects the call to fail with an API error of the given category and code.
func ExpectFailure(category vkapi.Category, code int) Expectation {
	return failureExpectation{category: category, code: code}
}

func (e failureExpectation) Verify(o Outcome) error {
	if o.Succeeded() {
		return fmt.Errorf("expected %s, but the call succeeded with %+v", e, o.Response)
	}
	if o.Category() != e.category || o.Code() != e.code {
		return fmt.Errorf("expected %s, got %s", e, o)
	}
	return nil
}

func (e failureExpectation) String() string {
	return fmt.Sprintf("%s error %d", e.category, e.code)
}
