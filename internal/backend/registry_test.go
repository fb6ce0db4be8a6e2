package backend

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	name string
}

func (b *fakeBackend) Name() string { return b.name }

func (b *fakeBackend) Complete(ctx context.Context, prompt string) (string, error) {
	return "ok", nil
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry(map[string]Backend{
		"model_a": &fakeBackend{name: "model_a"},
		"model_b": &fakeBackend{name: "model_b"},
	}, "model_a")
	require.NoError(t, err)
	return reg
}

func TestNewRegistryValidation(t *testing.T) {
	tests := []struct {
		name         string
		backends     map[string]Backend
		defaultModel string
		wantErr      string
	}{
		{
			name:         "no backends",
			backends:     map[string]Backend{},
			defaultModel: "model_a",
			wantErr:      "at least one backend is required",
		},
		{
			name:         "default not registered",
			backends:     map[string]Backend{"model_a": &fakeBackend{name: "model_a"}},
			defaultModel: "model_z",
			wantErr:      `default model "model_z" is not registered`,
		},
		{
			name:         "nil backend",
			backends:     map[string]Backend{"model_a": nil},
			defaultModel: "model_a",
			wantErr:      `backend for model "model_a" is nil`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.backends, tt.defaultModel)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRegistryGet(t *testing.T) {
	reg := newTestRegistry(t)

	be, err := reg.Get("model_b")
	require.NoError(t, err)
	assert.Equal(t, "model_b", be.Name())

	// empty name resolves to the default model
	be, err = reg.Get("")
	require.NoError(t, err)
	assert.Equal(t, "model_a", be.Name())

	_, err = reg.Get("model_z")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownModel))
}

func TestRegistryNames(t *testing.T) {
	reg := newTestRegistry(t)
	assert.Equal(t, []string{"model_a", "model_b"}, reg.Names())
	assert.Equal(t, "model_a", reg.DefaultModel())
}

func TestRegistryAllReturnsCopy(t *testing.T) {
	reg := newTestRegistry(t)

	all := reg.All()
	assert.Len(t, all, 2)

	delete(all, "model_a")
	_, err := reg.Get("model_a")
	assert.NoError(t, err)
}
