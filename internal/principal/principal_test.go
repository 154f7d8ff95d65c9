package principal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrincipalVariants(t *testing.T) {
	t.Run("tenant bound", func(t *testing.T) {
		p := TenantBound("acct-1")
		assert.Equal(t, KindTenantBound, p.Kind())

		id, ok := p.AccountID()
		assert.True(t, ok)
		assert.Equal(t, "acct-1", id)

		_, ok = p.UserID()
		assert.False(t, ok)
		assert.NoError(t, p.Validate())
	})

	t.Run("user bound", func(t *testing.T) {
		p := UserBound("u1")
		assert.Equal(t, KindUserBound, p.Kind())

		id, ok := p.UserID()
		assert.True(t, ok)
		assert.Equal(t, "u1", id)

		_, ok = p.AccountID()
		assert.False(t, ok)
		assert.NoError(t, p.Validate())
		assert.NotContains(t, p.String(), "u1")
	})
}

func TestPrincipalValidate(t *testing.T) {
	tests := []struct {
		name string
		p    Principal
	}{
		{name: "zero value", p: Principal{}},
		{name: "tenant bound without account", p: TenantBound("")},
		{name: "user bound without user", p: UserBound("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.p.Validate(), ErrInvalid)
		})
	}
}

func TestContextRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithPrincipal(context.Background(), UserBound("u1"))
	p, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, UserBound("u1"), p)

	ctx = WithPrincipal(context.Background(), Principal{})
	_, ok = FromContext(ctx)
	assert.False(t, ok, "zero principal is treated as absent")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "tenant_bound", KindTenantBound.String())
	assert.Equal(t, "user_bound", KindUserBound.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}
