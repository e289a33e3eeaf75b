package kv

import (
	"strings"

	"cimapbench/cimap"
	"cimapbench/constants"
	"cimapbench/localidx"

	"github.com/alphadose/haxmap"
	lru "github.com/hashicorp/golang-lru/v2"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/zhangyunhao116/skipmap"
)

// registry is the fixed comparator roster, in report order.
var registry = []Factory{
	{
		Name:            "cimap",
		Description:     "case-insensitive ordered map, Unicode folding",
		CaseInsensitive: true,
		New: func() (Map, error) {
			return cimapAdapter{cimap.New[any](cimap.WithCapacity(constants.ComparatorCapacity))}, nil
		},
	},
	{
		Name:            "cimap-ascii",
		Description:     "case-insensitive ordered map, ASCII folding",
		CaseInsensitive: true,
		New: func() (Map, error) {
			return cimapAdapter{cimap.New[any](
				cimap.WithCapacity(constants.ComparatorCapacity),
				cimap.WithFolding(cimap.FoldASCII),
			)}, nil
		},
	},
	{
		Name:            "lowered",
		Description:     "builtin map keyed by strings.ToLower, loses display casing",
		CaseInsensitive: true,
		New: func() (Map, error) {
			return loweredAdapter(make(map[string]any, constants.ComparatorCapacity)), nil
		},
	},
	{
		Name:        "builtin",
		Description: "builtin map[string]any, case-sensitive baseline",
		New: func() (Map, error) {
			return builtinAdapter(make(map[string]any, constants.ComparatorCapacity)), nil
		},
	},
	{
		Name:        "robinhood",
		Description: "Robin Hood index behind cimap, case-sensitive",
		New: func() (Map, error) {
			return robinhoodAdapter{localidx.New[any](constants.ComparatorCapacity)}, nil
		},
	},
	{
		Name:        "xsync",
		Description: "puzpuzpuz/xsync Map, case-sensitive",
		New: func() (Map, error) {
			return xsyncAdapter{xsync.NewMap[string, any]()}, nil
		},
	},
	{
		Name:        "cmap",
		Description: "orcaman/concurrent-map sharded map, case-sensitive",
		New: func() (Map, error) {
			return cmapAdapter{cmap.New[any]()}, nil
		},
	},
	{
		Name:        "haxmap",
		Description: "alphadose/haxmap, case-sensitive",
		New: func() (Map, error) {
			return haxmapAdapter{haxmap.New[string, any](constants.ComparatorCapacity)}, nil
		},
	},
	{
		Name:        "skipmap",
		Description: "zhangyunhao116/skipmap ordered skip list, case-sensitive",
		New: func() (Map, error) {
			return skipmapAdapter{skipmap.New[string, any]()}, nil
		},
	},
	{
		Name:        "lru",
		Description: "hashicorp/golang-lru bounded cache, case-sensitive",
		New: func() (Map, error) {
			c, err := lru.New[string, any](constants.LRUSize)
			if err != nil {
				return nil, err
			}
			return lruAdapter{c}, nil
		},
	},
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// BUILT-IN COMPARATORS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

type cimapAdapter struct{ m *cimap.Map[any] }

func (a cimapAdapter) Put(key string, value any) (any, bool) { return a.m.Put(key, value) }
func (a cimapAdapter) Get(key string) (any, bool)            { return a.m.Get(key) }

// loweredAdapter folds with strings.ToLower on every call. The first casing
// is not kept.
type loweredAdapter map[string]any

func (a loweredAdapter) Put(key string, value any) (any, bool) {
	key = strings.ToLower(key)
	prev, ok := a[key]
	a[key] = value
	return prev, ok
}

func (a loweredAdapter) Get(key string) (any, bool) {
	v, ok := a[strings.ToLower(key)]
	return v, ok
}

type builtinAdapter map[string]any

func (a builtinAdapter) Put(key string, value any) (any, bool) {
	prev, ok := a[key]
	a[key] = value
	return prev, ok
}

func (a builtinAdapter) Get(key string) (any, bool) {
	v, ok := a[key]
	return v, ok
}

type robinhoodAdapter struct{ h *localidx.Hash[any] }

func (a robinhoodAdapter) Put(key string, value any) (any, bool) { return a.h.Put(key, value) }
func (a robinhoodAdapter) Get(key string) (any, bool)            { return a.h.Get(key) }

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// LIBRARY COMPARATORS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

type xsyncAdapter struct{ m *xsync.Map[string, any] }

func (a xsyncAdapter) Put(key string, value any) (any, bool) { return a.m.LoadAndStore(key, value) }
func (a xsyncAdapter) Get(key string) (any, bool)            { return a.m.Load(key) }

type cmapAdapter struct{ m cmap.ConcurrentMap[string, any] }

func (a cmapAdapter) Put(key string, value any) (any, bool) {
	prev, ok := a.m.Get(key)
	a.m.Set(key, value)
	return prev, ok
}

func (a cmapAdapter) Get(key string) (any, bool) { return a.m.Get(key) }

type haxmapAdapter struct{ m *haxmap.Map[string, any] }

func (a haxmapAdapter) Put(key string, value any) (any, bool) {
	prev, ok := a.m.Get(key)
	a.m.Set(key, value)
	return prev, ok
}

func (a haxmapAdapter) Get(key string) (any, bool) { return a.m.Get(key) }

type skipmapAdapter struct{ m *skipmap.OrderedMap[string, any] }

func (a skipmapAdapter) Put(key string, value any) (any, bool) {
	prev, ok := a.m.Load(key)
	a.m.Store(key, value)
	return prev, ok
}

func (a skipmapAdapter) Get(key string) (any, bool) { return a.m.Load(key) }

type lruAdapter struct{ c *lru.Cache[string, any] }

func (a lruAdapter) Put(key string, value any) (any, bool) {
	prev, ok := a.c.Peek(key)
	a.c.Add(key, value)
	return prev, ok
}

func (a lruAdapter) Get(key string) (any, bool) { return a.c.Get(key) }
