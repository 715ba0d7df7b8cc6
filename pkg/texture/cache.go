package texture

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/df07/go-texture-source/pkg/core"
)

var (
	// ErrTextureNotFound is returned when an (owner, index) pair names no loaded texture
	ErrTextureNotFound = errors.New("texture: texture not found")

	// ErrTexelOutOfRange is returned for texel coordinates outside the canvas
	ErrTexelOutOfRange = errors.New("texture: texel out of range")
)

// TexelCache serves decoded texels. Implementations must be safe for
// concurrent use and must return identical values for a texel for the whole
// lifetime of a render. FetchTexel may block while data is materialized.
type TexelCache interface {
	FetchTexel(owner core.UniqueID, textureIndex, ix, iy int) (core.Color4, error)
}

// TextureResolver maps an owner identity and texture index to a loaded texture
type TextureResolver interface {
	ResolveTexture(owner core.UniqueID, textureIndex int) (Texture, error)
}

// TileCacheConfig configures a TileCache
type TileCacheConfig struct {
	TilesPerShard int // LRU capacity of each of the 16 shards
}

// DefaultTileCacheConfig returns a configuration keeping up to 4096 tiles resident
func DefaultTileCacheConfig() TileCacheConfig {
	return TileCacheConfig{TilesPerShard: 256}
}

// CacheStats contains statistics about tile cache usage
type CacheStats struct {
	Hits      uint64  // Texel fetches served from a resident tile
	Misses    uint64  // Texel fetches that required a tile fill
	Evictions uint64  // Tiles dropped to stay within capacity
	Loads     uint64  // Tiles actually loaded from their texture
	Resident  int     // Tiles currently held
	HitRate   float64 // Hits / (Hits + Misses)
}

type textureKey struct {
	owner core.UniqueID
	index int
}

type tileKey struct {
	owner  core.UniqueID
	index  int
	tx, ty int
}

func (k tileKey) String() string {
	return fmt.Sprintf("%d/%d/%d/%d", k.owner, k.index, k.tx, k.ty)
}

// hashTileKey mixes the key fields with the splitmix64 finalizer
func hashTileKey(k tileKey) uint64 {
	h := uint64(k.owner)*0x9e3779b97f4a7c15 ^ uint64(k.index)<<48 ^ uint64(k.tx)<<24 ^ uint64(k.ty)
	h ^= h >> 30
	h *= 0xbf58476d1ce4e5b9
	h ^= h >> 27
	h *= 0x94d049bb133111eb
	h ^= h >> 31
	return h
}

// TileCache is a TexelCache that keeps recently used tiles of many textures
// resident in a sharded LRU. Concurrent misses on the same tile trigger a
// single load.
type TileCache struct {
	resolver TextureResolver
	tiles    *shardedLRU[tileKey, *Tile]
	textures sync.Map // textureKey -> Texture
	loads    singleflight.Group
	loaded   atomic.Uint64
}

// NewTileCache creates a tile cache resolving textures through resolver
func NewTileCache(resolver TextureResolver, config TileCacheConfig) *TileCache {
	if config.TilesPerShard <= 0 {
		config = DefaultTileCacheConfig()
	}
	return &TileCache{
		resolver: resolver,
		tiles:    newShardedLRU[tileKey, *Tile](config.TilesPerShard, hashTileKey),
	}
}

// FetchTexel returns the linear RGBA texel (ix, iy) of a texture
func (c *TileCache) FetchTexel(owner core.UniqueID, textureIndex, ix, iy int) (core.Color4, error) {
	tex, err := c.texture(owner, textureIndex)
	if err != nil {
		return core.Color4{}, err
	}

	props := tex.Properties()
	if ix < 0 || iy < 0 || ix >= props.Width || iy >= props.Height {
		return core.Color4{}, fmt.Errorf("%w: (%d, %d) in %dx%d texture %d", ErrTexelOutOfRange, ix, iy, props.Width, props.Height, textureIndex)
	}

	key := tileKey{owner: owner, index: textureIndex, tx: ix / props.TileWidth, ty: iy / props.TileHeight}
	tile, ok := c.tiles.Get(key)
	if !ok {
		if tile, err = c.fill(key, tex); err != nil {
			return core.Color4{}, err
		}
	}

	return tile.At(ix-key.tx*props.TileWidth, iy-key.ty*props.TileHeight), nil
}

// fill loads a missing tile; callers racing on the same key share one load
func (c *TileCache) fill(key tileKey, tex Texture) (*Tile, error) {
	v, err, _ := c.loads.Do(key.String(), func() (any, error) {
		if tile, ok := c.tiles.Peek(key); ok {
			return tile, nil
		}
		tile, err := tex.LoadTile(key.tx, key.ty)
		if err != nil {
			return nil, fmt.Errorf("loading tile (%d, %d) of texture %d: %w", key.tx, key.ty, key.index, err)
		}
		c.tiles.Set(key, tile)
		c.loaded.Add(1)
		core.Logger().Debug("texture tile loaded",
			"owner", uint64(key.owner), "texture", key.index,
			"tx", key.tx, "ty", key.ty, "bytes", tile.SizeBytes())
		return tile, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Tile), nil
}

func (c *TileCache) texture(owner core.UniqueID, index int) (Texture, error) {
	key := textureKey{owner: owner, index: index}
	if tex, ok := c.textures.Load(key); ok {
		return tex.(Texture), nil
	}
	tex, err := c.resolver.ResolveTexture(owner, index)
	if err != nil {
		return nil, err
	}
	c.textures.Store(key, tex)
	return tex, nil
}

// Stats returns current cache statistics
func (c *TileCache) Stats() CacheStats {
	hits := c.tiles.hits.Load()
	misses := c.tiles.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return CacheStats{
		Hits:      hits,
		Misses:    misses,
		Evictions: c.tiles.evictions.Load(),
		Loads:     c.loaded.Load(),
		Resident:  c.tiles.Len(),
		HitRate:   hitRate,
	}
}

// Clear drops every resident tile and resolved texture. It must not be called
// while a render is sampling through the cache.
func (c *TileCache) Clear() {
	c.tiles.Clear()
	c.textures.Clear()
}
