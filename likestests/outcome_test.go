package likestests

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkqa/likes-contract-tests/vkapi"
)

func apiError(code int) error {
	return &vkapi.Error{Method: "likes.add", Code: code, Message: "nope", Category: vkapi.Classify(code)}
}

func TestObserve(t *testing.T) {
	ok := Observe(vkapi.AddResponse{Likes: 1}, nil)
	assert.True(t, ok.Succeeded())
	assert.Equal(t, vkapi.AddResponse{Likes: 1}, ok.Response)

	failed := Observe(vkapi.AddResponse{}, apiError(vkapi.CodeAccessDenied))
	assert.False(t, failed.Succeeded())
	assert.Nil(t, failed.Response)
	assert.Equal(t, vkapi.CategoryAccess, failed.Category())
	assert.Equal(t, vkapi.CodeAccessDenied, failed.Code())

	transport := Observe(nil, errors.New("connection refused"))
	assert.Equal(t, vkapi.CategoryUnknown, transport.Category())
	assert.Equal(t, 0, transport.Code())
}

func TestExpectResponse(t *testing.T) {
	e := ExpectResponse(vkapi.GetListResponse{Count: 1, Items: []int{42}})

	assert.NoError(t, e.Verify(Observe(vkapi.GetListResponse{Count: 1, Items: []int{42}}, nil)))
	assert.Error(t, e.Verify(Observe(vkapi.GetListResponse{Count: 2, Items: []int{42, 43}}, nil)))

	err := e.Verify(Observe(nil, apiError(vkapi.CodeParam)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "param error 100")
}

func TestExpectFailure(t *testing.T) {
	e := ExpectFailure(vkapi.CategoryPrivateProfile, vkapi.CodePrivateProfile)

	assert.NoError(t, e.Verify(Observe(nil, apiError(vkapi.CodePrivateProfile))))
	assert.Error(t, e.Verify(Observe(nil, apiError(vkapi.CodeAccessDenied))))
	assert.Error(t, e.Verify(Observe(nil, errors.New("timeout"))))

	err := e.Verify(Observe(vkapi.AddResponse{Likes: 1}, nil))
	require.Error(t, err)
	assert.Equal(t, "expected private profile error 30, but the call succeeded with {Likes:1}", err.Error())
}

func TestExpectSuccess(t *testing.T) {
	assert.NoError(t, ExpectSuccess().Verify(Observe(vkapi.DeleteResponse{Likes: 3}, nil)))
	assert.Error(t, ExpectSuccess().Verify(Observe(nil, apiError(vkapi.CodeAccessDenied))))
}
