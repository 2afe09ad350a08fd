package objectkey

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatGenerator(t *testing.T) {
	g := NewFlatGenerator()

	assert.Equal(t, "content-items/doc-1/data", g.GenerateKey("doc-1", nil))
	assert.Equal(t, "content-items/a%2Fb/data", g.GenerateKey("a/b", nil))
	assert.Equal(t, "content-items/%2E%2E/data", g.GenerateKey("..", nil))
	assert.Equal(t, "content-items/_/data", g.GenerateKey("", nil))
}

func TestShardedGenerator(t *testing.T) {
	g := NewShardedGenerator()

	key := g.GenerateKey("doc-1", nil)
	assert.Equal(t, key, g.GenerateKey("doc-1", nil), "keys must be stable")
	assert.NotEqual(t, key, g.GenerateKey("doc-2", nil))

	parts := strings.Split(key, "/")
	require.Len(t, parts, 4)
	assert.Equal(t, "items", parts[0])
	assert.Len(t, parts[1], 2)
	assert.Len(t, parts[2], 62)
	assert.Equal(t, "data", parts[3])

	// hostile ids never leak into the key
	assert.NotContains(t, g.GenerateKey("../../etc/passwd", nil), "..")
}

func TestShardedGenerator_CustomShardLength(t *testing.T) {
	g := &ShardedGenerator{ShardLength: 4}
	parts := strings.Split(g.GenerateKey("doc-1", nil), "/")
	require.Len(t, parts, 4)
	assert.Len(t, parts[1], 4)
}

func TestTenantAwareGenerator(t *testing.T) {
	g := NewTenantAwareGenerator(NewFlatGenerator())

	assert.Equal(t, "tenants/acme/content-items/doc-1/data", g.GenerateKey("doc-1", &KeyMetadata{TenantID: "acme"}))
	assert.Equal(t, "tenants/default/content-items/doc-1/data", g.GenerateKey("doc-1", nil))
}

func TestNew(t *testing.T) {
	tests := []struct {
		strategy string
		want     any
		wantErr  bool
	}{
		{"", &ShardedGenerator{}, false},
		{"sharded", &ShardedGenerator{}, false},
		{"FLAT", &FlatGenerator{}, false},
		{"tenant-flat", &TenantAwareGenerator{}, false},
		{"tenant-sharded", &TenantAwareGenerator{}, false},
		{"random", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			g, err := New(tt.strategy)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, g)
		})
	}
}
