// Package redisadapter implements store.Adapter against a Redis or
// Redis-protocol-compatible server using go-redis.
package redisadapter

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/kvnav/kvnav/internal/store"
)

// scanBatchSize is the COUNT hint passed to each SCAN cursor pass. It is a
// hint only; Redis may return more or fewer keys per pass.
const scanBatchSize = 500

// Adapter wraps a *redis.Client to satisfy store.Adapter.
type Adapter struct {
	client *redis.Client
}

// Options configures a new Adapter.
type Options struct {
	Addr     string
	Password string
	DB       int
	UseTLS   bool
}

// New connects a redis.Client using opts. It does not probe connectivity;
// callers should issue a cheap call (e.g. Enumerate) and handle its error
// as a StartupFatal per spec §7.
func New(opts Options) *Adapter {
	redisOpts := &redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}
	if opts.UseTLS {
		redisOpts.TLSConfig = &tls.Config{} // rely on crypto/tls defaults; callers may extend.
	}
	return &Adapter{client: redis.NewClient(redisOpts)}
}

// NewFromURL connects using a redis:// or rediss:// URL, per spec §6.
func NewFromURL(url string) (*Adapter, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redisadapter: parse url: %w", err)
	}
	return &Adapter{client: redis.NewClient(opts)}, nil
}

var _ store.Adapter = (*Adapter)(nil)

// Enumerate pages through the keyspace with SCAN, never KEYS, per the
// adapter contract's ban on an unbounded enumerate-all primitive. A single
// call returns the complete union across cursor passes.
func (a *Adapter) Enumerate(ctx context.Context, pattern string) ([]store.KeyType, error) {
	var out []store.KeyType
	var cursor uint64
	for {
		var keys []string
		var err error
		keys, cursor, err = a.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return nil, fmt.Errorf("redisadapter: scan: %w", err)
		}
		for _, k := range keys {
			typ, err := a.ProbeType(ctx, store.Key(k))
			if err != nil {
				return nil, err
			}
			out = append(out, store.KeyType{Key: store.Key(k), Type: typ})
		}
		if cursor == 0 {
			break
		}
	}
	return out, nil
}

// ProbeType returns the data type stored at key.
func (a *Adapter) ProbeType(ctx context.Context, key store.Key) (store.DataType, error) {
	t, err := a.client.Type(ctx, key.String()).Result()
	if err != nil {
		return store.TypeUnknown, fmt.Errorf("redisadapter: type %q: %w", key, err)
	}
	return fromRedisType(t), nil
}

func fromRedisType(t string) store.DataType {
	switch t {
	case "string":
		return store.TypeString
	case "list":
		return store.TypeList
	case "set":
		return store.TypeSet
	case "zset":
		return store.TypeOrderedSet
	case "hash":
		return store.TypeHash
	case "stream":
		return store.TypeStream
	default:
		return store.TypeUnknown
	}
}

// Fetch returns the typed value stored at key.
func (a *Adapter) Fetch(ctx context.Context, key store.Key) (store.Value, error) {
	typ, err := a.ProbeType(ctx, key)
	if err != nil {
		return store.Value{}, err
	}

	switch typ {
	case store.TypeString:
		v, err := a.client.Get(ctx, key.String()).Bytes()
		if err != nil {
			return store.Value{}, fmt.Errorf("redisadapter: get %q: %w", key, err)
		}
		return store.Value{Type: store.TypeString, Str: v}, nil

	case store.TypeList:
		items, err := a.client.LRange(ctx, key.String(), 0, -1).Result()
		if err != nil {
			return store.Value{}, fmt.Errorf("redisadapter: lrange %q: %w", key, err)
		}
		return store.Value{Type: store.TypeList, List: toBytesSlice(items)}, nil

	case store.TypeSet:
		members, err := a.client.SMembers(ctx, key.String()).Result()
		if err != nil {
			return store.Value{}, fmt.Errorf("redisadapter: smembers %q: %w", key, err)
		}
		return store.Value{Type: store.TypeSet, Set: toBytesSlice(members)}, nil

	case store.TypeOrderedSet:
		zs, err := a.client.ZRangeWithScores(ctx, key.String(), 0, -1).Result()
		if err != nil {
			return store.Value{}, fmt.Errorf("redisadapter: zrange %q: %w", key, err)
		}
		members := make([]store.ScoredMember, 0, len(zs))
		for _, z := range zs {
			members = append(members, store.ScoredMember{Member: []byte(fmt.Sprint(z.Member)), Score: z.Score})
		}
		return store.Value{Type: store.TypeOrderedSet, OrderedSet: members}, nil

	case store.TypeHash:
		// HGetAll decodes into a map, which discards the reply's field
		// order; HGETALL's RESP array preserves it, so issue it via Do
		// and pair up the flat field/value sequence ourselves (spec §3:
		// Hash is an insertion-ordered sequence of (field, value)).
		raw, err := a.client.Do(ctx, "HGETALL", key.String()).Slice()
		if err != nil {
			return store.Value{}, fmt.Errorf("redisadapter: hgetall %q: %w", key, err)
		}
		fields := make([]store.HashField, 0, len(raw)/2)
		for i := 0; i+1 < len(raw); i += 2 {
			fields = append(fields, store.HashField{
				Field: []byte(fmt.Sprint(raw[i])),
				Value: []byte(fmt.Sprint(raw[i+1])),
			})
		}
		return store.Value{Type: store.TypeHash, Hash: fields}, nil

	case store.TypeStream:
		info, err := a.client.XInfoStream(ctx, key.String()).Result()
		if err != nil {
			return store.Value{}, fmt.Errorf("redisadapter: xinfo %q: %w", key, err)
		}
		return store.Value{Type: store.TypeStream, Stream: fmt.Sprintf("%d entries, last-id %s", info.Length, info.LastGeneratedID)}, nil

	default:
		return store.Value{Type: store.TypeUnknown}, nil
	}
}

func toBytesSlice(strs []string) [][]byte {
	out := make([][]byte, len(strs))
	for i, s := range strs {
		out[i] = []byte(s)
	}
	return out
}

// TTL returns the remaining time to live in seconds, with -1 meaning no
// expiry and -2 meaning the key is missing, matching the Redis TTL
// command's own contract.
func (a *Adapter) TTL(ctx context.Context, key store.Key) (int64, error) {
	d, err := a.client.TTL(ctx, key.String()).Result()
	if err != nil {
		return 0, fmt.Errorf("redisadapter: ttl %q: %w", key, err)
	}
	switch {
	case d == -1:
		return -1, nil // no expiry
	case d < 0:
		return -2, nil // key does not exist
	default:
		seconds := int64(d.Seconds())
		if seconds == 0 && d > 0 {
			seconds = 1
		}
		return seconds, nil
	}
}

// WriteString replaces the value at key, preserving its existing TTL.
func (a *Adapter) WriteString(ctx context.Context, key store.Key, value []byte) error {
	if err := a.client.Set(ctx, key.String(), value, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("redisadapter: set %q: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (a *Adapter) Delete(ctx context.Context, key store.Key) error {
	if err := a.client.Del(ctx, key.String()).Err(); err != nil {
		return fmt.Errorf("redisadapter: del %q: %w", key, err)
	}
	return nil
}
