package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrorClassification(t *testing.T) {
	cfgErr := NewConfigErrorf("process type %s not supported", "form")
	fsErr := NewFileSystemError("write out.json", errors.New("disk full"))
	wrapped := fmt.Errorf("process a.png: %w", cfgErr)

	assert.Equal(t, codes.InvalidArgument, status.Code(cfgErr))
	assert.Equal(t, codes.InvalidArgument, status.Code(wrapped))
	assert.Equal(t, codes.Internal, status.Code(fsErr))
	assert.Equal(t, codes.Internal, status.Code(NewAppError(CodeRender, "draw", nil)))
	assert.Equal(t, codes.Unavailable, status.Code(NewAppError(CodeRemoteExtraction, "no data", nil)))

	assert.True(t, IsConfigError(wrapped))
	assert.False(t, IsConfigError(fsErr))
	assert.True(t, HasCode(fsErr, CodeFileSystem))
	assert.ErrorIs(t, cfgErr, ErrInvalidInput)
	assert.Contains(t, fsErr.Error(), "disk full")
}

func TestHasCodeFollowsCauses(t *testing.T) {
	inner := NewConfigError("bad", nil)
	outer := NewAppError(CodeInternal, "run", inner)
	assert.True(t, HasCode(outer, CodeConfiguration))
	assert.True(t, HasCode(outer, CodeInternal))
	assert.False(t, HasCode(outer, CodeRender))
	assert.False(t, HasCode(errors.New("plain"), CodeInternal))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 2, ExitCode(NewConfigErrorf("missing key")))
	assert.Equal(t, 1, ExitCode(NewFileSystemError("mkdir", errors.New("denied"))))
	assert.Equal(t, 1, ExitCode(errors.New("plain")))
}
