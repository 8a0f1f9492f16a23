package web_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/formkit/internal/web"
	"github.com/dmitrymomot/formkit/pkg/form"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("evicts the oldest form", func(t *testing.T) {
		t.Parallel()
		r := web.NewRegistry(2, nil)
		forms := []*form.Controller{form.New(nil), form.New(nil), form.New(nil)}
		ids := make([]string, len(forms))
		for i, c := range forms {
			id, err := r.Add(c)
			require.NoError(t, err)
			ids[i] = id
		}

		assert.Equal(t, 2, r.Len())
		assert.True(t, forms[0].Closed())
		_, err := r.Get(ids[0])
		assert.ErrorIs(t, err, web.ErrFormNotFound)

		got, err := r.Get(ids[2])
		require.NoError(t, err)
		assert.Same(t, forms[2], got)
	})

	t.Run("delete closes the form", func(t *testing.T) {
		t.Parallel()
		r := web.NewRegistry(10, nil)
		c := form.New(nil)
		id, err := r.Add(c)
		require.NoError(t, err)

		require.NoError(t, r.Delete(id))
		assert.True(t, c.Closed())
		assert.ErrorIs(t, r.Delete(id), web.ErrFormNotFound)
		_, err = r.Get("not-a-uuid")
		assert.ErrorIs(t, err, web.ErrFormNotFound)
	})

	t.Run("close all", func(t *testing.T) {
		t.Parallel()
		r := web.NewRegistry(10, nil)
		a, b := form.New(nil), form.New(nil)
		_, err := r.Add(a)
		require.NoError(t, err)
		_, err = r.Add(b)
		require.NoError(t, err)
		require.NoError(t, b.Close())

		require.NoError(t, r.Ready(context.Background()))
		require.NoError(t, r.CloseAll(context.Background()))
		assert.True(t, a.Closed())
		assert.Equal(t, 0, r.Len())
		assert.ErrorIs(t, r.Ready(context.Background()), web.ErrRegistryShut)

		_, err = r.Add(form.New(nil))
		assert.ErrorIs(t, err, web.ErrRegistryShut)
	})
}
