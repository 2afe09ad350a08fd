package contentitem

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"not found", notFoundError(opGetData, "doc-1", nil), KindNotFound},
		{"no content", noContentError(opGetData, "doc-2"), KindNoContent},
		{"invalid", invalidRequestError(opSaveData, "doc-1", "bad", nil), KindInvalidRequest},
		{"wrapped", fmt.Errorf("handler: %w", internalError(opSaveData, "doc-1", "failed", cause)), KindInternal},
		{"foreign", cause, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestError_Messages(t *testing.T) {
	assert.Equal(t, "could not find a content item with id 'doc-1'", notFoundError(opGetData, "doc-1", nil).Error())
	assert.Equal(t, "no data available for content item doc-2", noContentError(opGetData, "doc-2").Error())
	assert.Equal(t, "content item with id 'doc-3' doesn't have content associated with it", missingStreamError(opGetData, "doc-3", nil).Error())

	cause := errors.New("timeout")
	err := internalError(opGetData, "doc-1", "error getting content item data", cause)
	assert.Equal(t, "error getting content item data doc-1: timeout", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestIsKind(t *testing.T) {
	assert.False(t, IsKind(nil, KindInternal))
	assert.True(t, IsKind(noContentError(opGetData, "x"), KindNoContent))
	assert.False(t, IsKind(noContentError(opGetData, "x"), KindNotFound))
}

func TestStorageError_Unwrap(t *testing.T) {
	err := &StorageError{Backend: "fs", Key: "k", Op: "download", Err: ErrObjectNotFound}
	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.Contains(t, err.Error(), "storage operation download failed for key k on backend fs")
}
