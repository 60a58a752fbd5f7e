package backends

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusError(t *testing.T) {
	err := Errorf("CopyTensorPatch", StatusInvalidDimension, "got %d values, wanted %d", 3, 4)
	wrapped := errors.Wrap(err, "updating alpha")
	assert.Equal(t, StatusInvalidDimension, StatusOf(wrapped))
	assert.Contains(t, wrapped.Error(), "CopyTensorPatch failed: status InvalidDimension (-13)")
	assert.Equal(t, StatusSuccess, StatusOf(nil))
	assert.Equal(t, StatusFailure, StatusOf(errors.New("other")))
	assert.Equal(t, "Status(-99)", Status(-99).String())
	assert.Equal(t, "ExternalSource", OpTypeExternalSource.String())
}

func TestNewWithConfig(t *testing.T) {
	var gotConfig string
	Register("fake_for_test", func(config string) Backend {
		gotConfig = config
		return nil
	})
	require.NotPanics(t, func() { _ = NewWithConfig("fake_for_test:some=config") })
	assert.Equal(t, "some=config", gotConfig)
	require.NotPanics(t, func() { _ = NewWithConfig("fake_for_test") })
	assert.Equal(t, "", gotConfig)
	require.Panics(t, func() { _ = NewWithConfig("unknown:") })
	assert.Contains(t, List(), "fake_for_test")
}
