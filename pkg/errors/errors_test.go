package errors_test

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/willwade/tts-wrapper-go/pkg/errors"
)

func TestNew(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := pkgerrors.New("sdk", "New", cause)

	assert.Equal(t, "sdk", err.Component)
	assert.Equal(t, "New", err.Operation)
	assert.Nil(t, err.Details)
	assert.Equal(t, cause, err.Cause)
}

func TestError_BasicMessage(t *testing.T) {
	err := pkgerrors.New("config", "Load", fmt.Errorf("file not found"))

	assert.Equal(t, "[config] Load: file not found", err.Error())
}

func TestError_NoCause(t *testing.T) {
	assert.Equal(t, "[sdk] Close", pkgerrors.New("sdk", "Close", nil).Error())
}

func TestError_WithDetails(t *testing.T) {
	err := pkgerrors.New("config", "Load", fmt.Errorf("bad yaml")).
		WithDetails(map[string]any{"path": "tts.yaml", "line": 3})

	assert.Equal(t, "[config] Load (line=3, path=tts.yaml): bad yaml", err.Error())
}

func TestUnwrap(t *testing.T) {
	err := pkgerrors.New("config", "Load", fmt.Errorf("open tts.yaml: %w", fs.ErrNotExist))

	assert.ErrorIs(t, err, fs.ErrNotExist)

	var target *pkgerrors.ContextualError
	wrapped := fmt.Errorf("startup: %w", err)
	require.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "Load", target.Operation)
}
