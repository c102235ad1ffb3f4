package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{Validation("bad"), http.StatusBadRequest},
		{NotFound("missing"), http.StatusNotFound},
		{Conflict("dup"), http.StatusConflict},
		{Upstream(stderrors.New("timeout"), "ai failed"), http.StatusBadGateway},
		{Internal(stderrors.New("disk"), "boom"), http.StatusInternalServerError},
		{stderrors.New("plain"), http.StatusInternalServerError},
		{fmt.Errorf("ctx: %w", NotFound("user")), http.StatusNotFound},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), "%v", tc.err)
	}
}

func TestWrapKeepsKind(t *testing.T) {
	base := Validation("invalid id")
	wrapped := Wrap(base, "parse path")
	assert.Equal(t, KindValidation, wrapped.Kind)
	assert.Equal(t, "parse path: invalid id", wrapped.Error())
	assert.Equal(t, "parse path", Message(wrapped))
	assert.Nil(t, Wrap(nil, "noop"))
}

func TestIsAndCause(t *testing.T) {
	sentinel := stderrors.New("sentinel")
	err := Wrapf(Internal(sentinel, "storage"), "get user %d", 7)
	assert.True(t, Is(err, sentinel))
	assert.Equal(t, sentinel, Cause(err))
	assert.Equal(t, KindInternal, KindOf(err))
}

func TestWithContextCopies(t *testing.T) {
	base := NotFound("protocol")
	withType := base.WithContext("type", "fire")
	assert.Empty(t, base.Context)
	assert.Equal(t, []KeyValue{{Key: "type", Value: "fire"}}, withType.Context)
}

func TestFormatIncludesStack(t *testing.T) {
	err := New("oops")
	assert.Equal(t, "oops", fmt.Sprintf("%v", err))
	assert.Contains(t, fmt.Sprintf("%+v", err), "oops\n")
	assert.NotEmpty(t, GetStack(err))
}
