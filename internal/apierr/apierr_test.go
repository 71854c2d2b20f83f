package apierr

import (
	"errors"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestIsAuth(t *testing.T) {
	t.Parallel()

	auth := &AuthError{Platform: "synthesis", Err: errors.New("bad key")}
	assert.True(t, IsAuth(auth))
	assert.True(t, IsAuth(eris.Wrap(auth, "sync: login")), "wrapped auth errors still classify")
	assert.False(t, IsAuth(errors.New("timeout")))
	assert.False(t, IsAuth(nil))
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	nf := &NotFoundError{Resource: "capsule party 7"}
	assert.True(t, IsNotFound(nf))
	assert.True(t, IsNotFound(eris.Wrap(nf, "resolve")))
	assert.False(t, IsNotFound(&TransportError{Err: errors.New("reset")}))
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "capsule: authentication failed", (&AuthError{Platform: "capsule"}).Error())
	assert.Contains(t, (&AuthError{Platform: "capsule", Err: errors.New("401")}).Error(), "401")
	assert.Contains(t, (&TransportError{Err: errors.New("reset"), StatusCode: 502}).Error(), "502")
	assert.Contains(t, (&DecodeError{Err: errors.New("bad json")}).Error(), "decode failure")
	assert.Contains(t, (&NotFoundError{Resource: "capsule party 7"}).Error(), "not found")
}

func TestUnwrap(t *testing.T) {
	t.Parallel()

	inner := errors.New("connection reset")
	assert.ErrorIs(t, &TransportError{Err: inner}, inner)
	assert.ErrorIs(t, &DecodeError{Err: inner}, inner)
	assert.ErrorIs(t, &AuthError{Platform: "capsule", Err: inner}, inner)
}
