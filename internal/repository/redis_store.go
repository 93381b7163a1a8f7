package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/estado"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrTransicionNoEncontrada means the pending transition expired, was
// cancelled or never existed.
var ErrTransicionNoEncontrada = errors.New("repository: transicion pendiente no encontrada")

// ── Pending transitions ──────────────────────────────────────────────────────

// TransicionPendiente is a transition whose legality was checked and that
// waits for its capture data.
type TransicionPendiente struct {
	Token       string        `json:"token"`
	PropuestaID uuid.UUID     `json:"propuesta_id"`
	UsuarioID   uuid.UUID     `json:"usuario_id"`
	De          estado.Estado `json:"de"`
	A           estado.Estado `json:"a"`
	Creada      time.Time     `json:"creada"`
	Expira      time.Time     `json:"expira"`
}

type TransicionStore interface {
	Guardar(ctx context.Context, t *TransicionPendiente, ttl time.Duration) error
	Obtener(ctx context.Context, token string) (*TransicionPendiente, error)
	Eliminar(ctx context.Context, token string) error
}

type transicionStore struct{ rdb *redis.Client }

func NewTransicionStore(rdb *redis.Client) TransicionStore { return &transicionStore{rdb: rdb} }

func claveTransicion(token string) string { return "transicion:" + token }

func (s *transicionStore) Guardar(ctx context.Context, t *TransicionPendiente, ttl time.Duration) error {
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, claveTransicion(t.Token), b, ttl).Err()
}

func (s *transicionStore) Obtener(ctx context.Context, token string) (*TransicionPendiente, error) {
	b, err := s.rdb.Get(ctx, claveTransicion(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrTransicionNoEncontrada
	}
	if err != nil {
		return nil, err
	}
	var t TransicionPendiente
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("transicion %s corrupta: %w", token, err)
	}
	return &t, nil
}

func (s *transicionStore) Eliminar(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, claveTransicion(token)).Err()
}

// ── Token revocation ─────────────────────────────────────────────────────────

// RevocacionStore is the denylist of signed-out token ids. Entries live as
// long as the token would have.
type RevocacionStore interface {
	Revocar(ctx context.Context, jti string, ttl time.Duration) error
	Revocado(ctx context.Context, jti string) (bool, error)
}

type revocacionStore struct{ rdb *redis.Client }

func NewRevocacionStore(rdb *redis.Client) RevocacionStore { return &revocacionStore{rdb: rdb} }

func (s *revocacionStore) Revocar(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, "revocado:"+jti, 1, ttl).Err()
}

func (s *revocacionStore) Revocado(ctx context.Context, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, "revocado:"+jti).Result()
	return n > 0, err
}

// ── User preferences ─────────────────────────────────────────────────────────

type PreferenciasStore interface {
	Obtener(ctx context.Context, usuarioID uuid.UUID) (map[string]string, error)
	Guardar(ctx context.Context, usuarioID uuid.UUID, valores map[string]string) error
}

type preferenciasStore struct{ rdb *redis.Client }

func NewPreferenciasStore(rdb *redis.Client) PreferenciasStore { return &preferenciasStore{rdb: rdb} }

func (s *preferenciasStore) Obtener(ctx context.Context, usuarioID uuid.UUID) (map[string]string, error) {
	return s.rdb.HGetAll(ctx, "preferencias:"+usuarioID.String()).Result()
}

func (s *preferenciasStore) Guardar(ctx context.Context, usuarioID uuid.UUID, valores map[string]string) error {
	if len(valores) == 0 {
		return nil
	}
	return s.rdb.HSet(ctx, "preferencias:"+usuarioID.String(), valores).Err()
}

// ── Cache and locks ──────────────────────────────────────────────────────────

// Cache is a byte-valued cache. A miss is (nil, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Locker hands out short-lived exclusive locks. Adquirir returns false when
// somebody else holds the key.
type Locker interface {
	Adquirir(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Liberar(ctx context.Context, key string) error
}

type redisKV struct{ rdb *redis.Client }

func NewRedisCache(rdb *redis.Client) Cache   { return &redisKV{rdb: rdb} }
func NewRedisLocker(rdb *redis.Client) Locker { return &redisKV{rdb: rdb} }

func (s *redisKV) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return b, err
}

func (s *redisKV) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, val, ttl).Err()
}

func (s *redisKV) Del(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

func (s *redisKV) Adquirir(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, "lock:"+key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
}

func (s *redisKV) Liberar(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, "lock:"+key).Err()
}
