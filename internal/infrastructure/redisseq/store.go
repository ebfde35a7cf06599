// Package redisseq implementa el contador de números de cotización sobre Redis (INCR atómico).
package redisseq

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jhoicas/surblend-api/internal/domain"
	"github.com/jhoicas/surblend-api/internal/domain/quote"
	"github.com/jhoicas/surblend-api/internal/domain/repository"
)

var _ repository.QuoteSequenceStore = (*Store)(nil)

// KeyPrefix prefijo de las claves por período (quote_seq:YYYYMM).
const KeyPrefix = "quote_seq:"

// KeyTTL vida de la clave de un período desde que se siembra; cubre el mes completo
// y los reintentos que cruzan el cambio de mes.
const KeyTTL = 62 * 24 * time.Hour

// Config conexión a Redis.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// commands lo que el store usa de redis.Cmdable.
type commands interface {
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// Store contador por período. INCR es atómico en el servidor: no hay dos llamadas que
// reciban el mismo valor, aunque vengan de procesos distintos.
//
// Si la clave no existe (período nuevo, FLUSHDB o evicción) se siembra con SETNX desde la
// mayor secuencia persistida antes de incrementar. Varios procesos pueden sembrar a la
// vez: gana el primero y todos incrementan sobre el mismo valor.
type Store struct {
	client commands
	floor  repository.QuoteSequenceFloor
}

// New construye el store sobre un cliente existente. floor puede ser nil (arranca en 0).
func New(client redis.Cmdable, floor repository.QuoteSequenceFloor) *Store {
	return &Store{client: client, floor: floor}
}

// NewClient abre el cliente y verifica la conexión.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// Key clave Redis del período.
func Key(p quote.Period) string {
	return KeyPrefix + p.String()
}

// Next reserva el siguiente número del período.
func (s *Store) Next(ctx context.Context, period quote.Period) (int64, error) {
	key := Key(period)
	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return 0, classify("redis exists "+key, err)
	}
	if exists == 0 {
		if err := s.seed(ctx, period); err != nil {
			return 0, err
		}
	}
	seq, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, classify("redis incr "+key, err)
	}
	return seq, nil
}

func (s *Store) seed(ctx context.Context, period quote.Period) error {
	var start int64
	if s.floor != nil {
		v, err := s.floor.MaxSequence(ctx, period)
		if err != nil {
			return &domain.RetryableError{Op: "sembrar " + Key(period), Err: err}
		}
		start = v
	}
	if err := s.client.SetNX(ctx, Key(period), start, KeyTTL).Err(); err != nil {
		return classify("redis setnx "+Key(period), err)
	}
	return nil
}

// classify timeouts y errores de red son reintentables; el resto no.
func classify(op string, err error) error {
	if isTransient(err) {
		return &domain.RetryableError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return false
}
