package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const purgeInterval = 5 * time.Minute

// ventana tracks the requests of one client IP within a fixed window.
type ventana struct {
	mu    sync.Mutex
	count int
	fin   time.Time
}

// Limitador is a per-IP fixed-window counter.
type Limitador struct {
	nombre  string
	limit   int
	window  time.Duration
	mensaje string

	mu   sync.Mutex
	ips  map[string]*ventana
	now  func() time.Time
	once sync.Once
}

func NewLimitador(nombre string, limit int, window time.Duration, mensaje string) *Limitador {
	return &Limitador{
		nombre:  nombre,
		limit:   limit,
		window:  window,
		mensaje: mensaje,
		ips:     make(map[string]*ventana),
		now:     time.Now,
	}
}

// LoginRateLimiter limits sign-in and sign-up attempts to 20 per minute per IP.
func LoginRateLimiter() *Limitador {
	return NewLimitador("login", 20, time.Minute, "demasiados_intentos")
}

// APIRateLimiter is the general limiter; limit <= 0 means 300 per minute.
func APIRateLimiter(limit int) *Limitador {
	if limit <= 0 {
		limit = 300
	}
	return NewLimitador("api", limit, time.Minute, "demasiadas_solicitudes")
}

// Middleware returns the gin handler enforcing the limit.
func (l *Limitador) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, fin := l.permitir(c.ClientIP())
		if !ok {
			c.Header("Retry-After", fin.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.T(GetIdioma(c), l.mensaje))
			return
		}
		c.Next()
	}
}

func (l *Limitador) permitir(ip string) (bool, time.Time) {
	l.mu.Lock()
	v, ok := l.ips[ip]
	if !ok {
		v = &ventana{}
		l.ips[ip] = v
	}
	l.mu.Unlock()

	v.mu.Lock()
	defer v.mu.Unlock()
	now := l.now()
	if now.After(v.fin) {
		v.count = 0
		v.fin = now.Add(l.window)
	}
	v.count++
	return v.count <= l.limit, v.fin
}

// StartPurge removes expired windows every few minutes until ctx ends, so
// IPs that never return do not accumulate.
func (l *Limitador) StartPurge(ctx context.Context) {
	l.once.Do(func() {
		go func() {
			ticker := time.NewTicker(purgeInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if n := l.purgar(); n > 0 {
						log.Debug().Str("limiter", l.nombre).Int("purged", n).Msg("rate limiter entries purged")
					}
				}
			}
		}()
	})
}

func (l *Limitador) purgar() int {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for ip, v := range l.ips {
		v.mu.Lock()
		if now.After(v.fin) {
			delete(l.ips, ip)
			n++
		}
		v.mu.Unlock()
	}
	return n
}
