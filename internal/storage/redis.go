package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/eugenenazirov/pincode-shipping/internal/calculator"
	"github.com/eugenenazirov/pincode-shipping/internal/shipping"
)

// DefaultRedisKeyPrefix namespaces the rate keys when no prefix is configured.
const DefaultRedisKeyPrefix = "shipping:rates"

// ErrNoRedisRates is returned when Redis holds no carrier list under the prefix.
var ErrNoRedisRates = errors.New("no carrier rates found in redis")

// RedisLoader reads a carrier rate table from Redis. The carrier order is the
// list stored at "<prefix>:carriers"; each carrier's rates live in a hash at
// "<prefix>:carrier:<name>" keyed by level.
type RedisLoader struct {
	client redis.Cmdable
	prefix string
}

// NewRedisLoader creates a loader reading keys under prefix.
func NewRedisLoader(client redis.Cmdable, prefix string) *RedisLoader {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultRedisKeyPrefix
	}
	return &RedisLoader{client: client, prefix: prefix}
}

// LoadRateTable fetches the carrier list and every carrier's rates.
func (l *RedisLoader) LoadRateTable(ctx context.Context) (shipping.RateTable, error) {
	names, err := l.client.LRange(ctx, l.carriersKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read carrier list: %w", err)
	}
	if len(names) == 0 {
		return nil, ErrNoRedisRates
	}

	table := make(shipping.RateTable, 0, len(names))
	for _, name := range names {
		fields, err := l.client.HGetAll(ctx, l.carrierKey(name)).Result()
		if err != nil {
			return nil, fmt.Errorf("read rates for %s: %w", name, err)
		}
		carrier, err := parseCarrierRates(name, fields)
		if err != nil {
			return nil, err
		}
		table = append(table, carrier)
	}
	return table, nil
}

func (l *RedisLoader) carriersKey() string {
	return l.prefix + ":carriers"
}

func (l *RedisLoader) carrierKey(name string) string {
	return l.prefix + ":carrier:" + name
}

func parseCarrierRates(name string, fields map[string]string) (shipping.CarrierRates, error) {
	if strings.TrimSpace(name) == "" {
		return shipping.CarrierRates{}, fmt.Errorf("%w: empty carrier name", calculator.ErrInvalidRateTable)
	}

	rates := make(map[shipping.Level]float64, len(fields))
	for field, raw := range fields {
		level, err := shipping.ParseLevel(strings.ToLower(strings.TrimSpace(field)))
		if err != nil {
			return shipping.CarrierRates{}, fmt.Errorf("carrier %s: %w", name, err)
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return shipping.CarrierRates{}, fmt.Errorf("carrier %s: invalid %s rate %q", name, level, raw)
		}
		rates[level] = rate
	}
	return shipping.CarrierRates{Name: name, Rates: rates}, nil
}
