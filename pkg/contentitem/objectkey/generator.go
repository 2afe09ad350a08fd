package objectkey

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

// Generator defines the interface for object key generation strategies.
// Keys depend only on the item id and metadata, so writing an item twice
// lands on the same key.
type Generator interface {
	// GenerateKey creates an object key for storage backends
	GenerateKey(itemID string, metadata *KeyMetadata) string
}

// KeyMetadata contains information that influences key generation
type KeyMetadata struct {
	TenantID string
}

// FlatGenerator stores every item under content-items/{id}/data.
type FlatGenerator struct{}

func NewFlatGenerator() *FlatGenerator {
	return &FlatGenerator{}
}

func (g *FlatGenerator) GenerateKey(itemID string, metadata *KeyMetadata) string {
	return fmt.Sprintf("content-items/%s/data", escapeComponent(itemID))
}

// ShardedGenerator provides Git-style sharding on a hash of the item id:
// items/ab/cd1234.../data
type ShardedGenerator struct {
	// ShardLength controls how many characters to use for sharding (default: 2)
	ShardLength int
}

func NewShardedGenerator() *ShardedGenerator {
	return &ShardedGenerator{
		ShardLength: 2,
	}
}

func (g *ShardedGenerator) GenerateKey(itemID string, metadata *KeyMetadata) string {
	sum := sha256.Sum256([]byte(itemID))
	digest := hex.EncodeToString(sum[:])

	shardLength := g.ShardLength
	if shardLength <= 0 || shardLength >= len(digest) {
		shardLength = 2
	}

	return fmt.Sprintf("items/%s/%s/data", digest[:shardLength], digest[shardLength:])
}

// TenantAwareGenerator prefixes keys of another generator with the tenant:
// tenants/{tenant}/...
type TenantAwareGenerator struct {
	BaseGenerator Generator
	DefaultTenant string
}

func NewTenantAwareGenerator(base Generator) *TenantAwareGenerator {
	return &TenantAwareGenerator{
		BaseGenerator: base,
		DefaultTenant: "default",
	}
}

func (g *TenantAwareGenerator) GenerateKey(itemID string, metadata *KeyMetadata) string {
	tenant := g.DefaultTenant
	if metadata != nil && metadata.TenantID != "" {
		tenant = metadata.TenantID
	}
	return fmt.Sprintf("tenants/%s/%s", escapeComponent(tenant), g.BaseGenerator.GenerateKey(itemID, metadata))
}

// New returns the generator for a strategy name: "flat", "sharded",
// "tenant-flat" or "tenant-sharded". An empty name selects "sharded".
func New(strategy string) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "flat":
		return NewFlatGenerator(), nil
	case "", "sharded":
		return NewShardedGenerator(), nil
	case "tenant-flat":
		return NewTenantAwareGenerator(NewFlatGenerator()), nil
	case "tenant-sharded":
		return NewTenantAwareGenerator(NewShardedGenerator()), nil
	default:
		return nil, fmt.Errorf("unknown object key strategy: %s", strategy)
	}
}

// escapeComponent makes s safe to use as a single path segment.
func escapeComponent(s string) string {
	escaped := url.PathEscape(s)
	if escaped == "" || escaped == "." || escaped == ".." {
		escaped = strings.ReplaceAll(escaped, ".", "%2E")
		if escaped == "" {
			escaped = "_"
		}
	}
	return escaped
}
