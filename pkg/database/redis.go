package database

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds the connection settings for the redis backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TLS      bool
	Prefix   string
}

// RedisStore keeps each record as a hash "<prefix>:item:<pk>|<sk>" whose
// field values are JSON-encoded, plus a set "<prefix>:part:<pk>" listing the
// sort keys of a partition.
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
}

// transactScript checks every condition first and only then applies the ops,
// so a failed condition leaves no trace. KEYS come in pairs: item key, partition key.
var transactScript = redis.NewScript(`
	local ops = cjson.decode(ARGV[1])

	for i, op in ipairs(ops) do
		local key = KEYS[2 * i - 1]
		local exists = redis.call('EXISTS', key) == 1
		if op.must_exist and not exists then
			return {0, i - 1, 'missing', 'record does not exist'}
		end
		if op.expect_field ~= '' then
			local current = tonumber(redis.call('HGET', key, op.expect_field) or '0') or 0
			if current ~= op.expect_value then
				return {0, i - 1, 'stale', op.expect_field .. ' changed'}
			end
		end
		if op.kind == 'incr' then
			local cur = tonumber(redis.call('HGET', key, op.field) or '0') or 0
			local nxt = cur + op.delta
			if op.bounded then
				if nxt < op.min then
					return {0, i - 1, 'bounds', op.field .. ' below minimum'}
				end
				if op.max_field ~= '' then
					local ceiling = tonumber(redis.call('HGET', key, op.max_field) or '0') or 0
					if nxt > ceiling then
						return {0, i - 1, 'bounds', op.field .. ' above ' .. op.max_field}
					end
				end
			end
		end
	end

	for i, op in ipairs(ops) do
		local key = KEYS[2 * i - 1]
		local part = KEYS[2 * i]
		if op.kind == 'put' then
			redis.call('DEL', key)
			for field, value in pairs(op.attrs or {}) do
				redis.call('HSET', key, field, value)
			end
			redis.call('SADD', part, op.sk)
		elseif op.kind == 'delete' then
			redis.call('DEL', key)
			redis.call('SREM', part, op.sk)
		elseif op.kind == 'incr' then
			redis.call('HINCRBY', key, op.field, op.delta)
			if op.bump ~= '' then
				redis.call('HINCRBY', key, op.bump, 1)
			end
		end
	end

	return {1, -1, '', ''}
`)

// putScript replaces a hash atomically and registers it in its partition.
var putScript = redis.NewScript(`
	redis.call('DEL', KEYS[1])
	local attrs = cjson.decode(ARGV[2])
	for field, value in pairs(attrs) do
		redis.call('HSET', KEYS[1], field, value)
	end
	redis.call('SADD', KEYS[2], ARGV[1])
	return 1
`)

// incrementScript refuses to create a record that does not exist yet.
var incrementScript = redis.NewScript(`
	if redis.call('EXISTS', KEYS[1]) == 0 then
		return redis.error_reply('NOTFOUND')
	end
	return redis.call('HINCRBY', KEYS[1], ARGV[1], ARGV[2])
`)

type redisOp struct {
	Kind        OpKind            `json:"kind"`
	SK          string            `json:"sk"`
	Attrs       map[string]string `json:"attrs,omitempty"`
	Field       string            `json:"field,omitempty"`
	Delta       int64             `json:"delta"`
	Bounded     bool              `json:"bounded"`
	Min         int64             `json:"min"`
	MaxField    string            `json:"max_field"`
	MustExist   bool              `json:"must_exist"`
	ExpectField string            `json:"expect_field"`
	ExpectValue int64             `json:"expect_value"`
	Bump        string            `json:"bump"`
}

// InitRedis connects and pings with a short timeout.
func InitRedis(ctx context.Context, config RedisConfig) (*RedisStore, error) {
	var tlsConf *tls.Config
	if config.TLS {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client := redis.NewClient(&redis.Options{
		Addr:      config.Addr,
		Password:  config.Password,
		DB:        config.DB,
		TLSConfig: tlsConf,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", config.Addr, err)
	}

	return NewRedisStore(client, config.Prefix), nil
}

func NewRedisStore(rdb redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "hotel"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) itemKey(key Key) string {
	return s.prefix + ":item:" + key.String()
}

func (s *RedisStore) partKey(pk string) string {
	return s.prefix + ":part:" + pk
}

func (s *RedisStore) Get(ctx context.Context, key Key) (*Item, error) {
	fields, err := s.rdb.HGetAll(ctx, s.itemKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	attrs, err := decodeFields(fields)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &Item{PK: key.PK, SK: key.SK, Attrs: attrs}, nil
}

func (s *RedisStore) Put(ctx context.Context, item Item) error {
	fields, err := encodeFields(item.Attrs)
	if err != nil {
		return fmt.Errorf("encode %s: %w", item.Key(), err)
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode %s: %w", item.Key(), err)
	}

	keys := []string{s.itemKey(item.Key()), s.partKey(item.PK)}
	if err := putScript.Run(ctx, s.rdb, keys, item.SK, string(payload)).Err(); err != nil {
		return fmt.Errorf("put %s: %w", item.Key(), err)
	}
	return nil
}

func (s *RedisStore) Query(ctx context.Context, pk string) ([]Item, error) {
	sks, err := s.rdb.SMembers(ctx, s.partKey(pk)).Result()
	if err != nil {
		return nil, fmt.Errorf("query partition %s: %w", pk, err)
	}
	sort.Strings(sks)

	pipe := s.rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(sks))
	for i, sk := range sks {
		cmds[i] = pipe.HGetAll(ctx, s.itemKey(Key{PK: pk, SK: sk}))
	}
	if len(sks) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("query partition %s: %w", pk, err)
		}
	}

	items := make([]Item, 0, len(sks))
	for i, cmd := range cmds {
		fields := cmd.Val()
		// index entry left behind by an expired or foreign delete
		if len(fields) == 0 {
			continue
		}
		attrs, err := decodeFields(fields)
		if err != nil {
			return nil, fmt.Errorf("decode %s|%s: %w", pk, sks[i], err)
		}
		items = append(items, Item{PK: pk, SK: sks[i], Attrs: attrs})
	}
	return items, nil
}

func (s *RedisStore) Increment(ctx context.Context, key Key, field string, delta int64) (int64, error) {
	next, err := incrementScript.Run(ctx, s.rdb, []string{s.itemKey(key)}, field, delta).Int64()
	if err != nil {
		if strings.Contains(err.Error(), "NOTFOUND") {
			return 0, fmt.Errorf("increment %s: %w", key, ErrNotFound)
		}
		return 0, fmt.Errorf("increment %s.%s: %w", key, field, err)
	}
	return next, nil
}

func (s *RedisStore) Delete(ctx context.Context, key Key) error {
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, s.itemKey(key))
	pipe.SRem(ctx, s.partKey(key.PK), key.SK)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Transact(ctx context.Context, ops []Op) error {
	if len(ops) == 0 {
		return nil
	}

	keys := make([]string, 0, len(ops)*2)
	encoded := make([]redisOp, 0, len(ops))
	for _, op := range ops {
		rop := redisOp{
			Kind:      op.Kind,
			SK:        op.Key.SK,
			Field:     op.Field,
			Delta:     op.Delta,
			MustExist: op.MustExist,
			Bump:      op.Bump,
		}
		if op.Expect != nil {
			rop.ExpectField = op.Expect.Field
			rop.ExpectValue = op.Expect.Value
		}
		if op.Kind == OpPut {
			fields, err := encodeFields(op.Item.Attrs)
			if err != nil {
				return fmt.Errorf("encode %s: %w", op.Item.Key(), err)
			}
			rop.Attrs = fields
			rop.SK = op.Item.SK
		}
		if op.Bounds != nil {
			rop.Bounded = true
			rop.Min = op.Bounds.Min
			rop.MaxField = op.Bounds.MaxField
		}
		encoded = append(encoded, rop)
		keys = append(keys, s.itemKey(op.Key), s.partKey(op.Key.PK))
	}

	payload, err := json.Marshal(encoded)
	if err != nil {
		return fmt.Errorf("encode transaction: %w", err)
	}

	res, err := transactScript.Run(ctx, s.rdb, keys, string(payload)).Slice()
	if err != nil {
		return fmt.Errorf("run transaction: %w", err)
	}
	if len(res) != 4 {
		return fmt.Errorf("run transaction: unexpected script result %v", res)
	}

	if ok, _ := res[0].(int64); ok == 1 {
		return nil
	}

	idx, _ := res[1].(int64)
	kind, _ := res[2].(string)
	reason, _ := res[3].(string)
	if idx < 0 || int(idx) >= len(ops) {
		return errors.New("run transaction: condition failed at unknown op")
	}
	return &ConditionError{Index: int(idx), Key: ops[idx].Key, Kind: ConditionKind(kind), Reason: reason}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Close() {
	_ = s.rdb.Close()
}

// Integers are stored bare so HINCRBY can operate on them.
func encodeFields(attrs map[string]any) (map[string]string, error) {
	fields := make(map[string]string, len(attrs))
	for name, value := range attrs {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		fields[name] = string(raw)
	}
	return fields, nil
}

func decodeFields(fields map[string]string) (map[string]any, error) {
	attrs := make(map[string]any, len(fields))
	for name, raw := range fields {
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		attrs[name] = value
	}
	return attrs, nil
}
