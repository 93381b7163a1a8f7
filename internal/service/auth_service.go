package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/config"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/dto"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/eventos"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/model"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/repository"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/rol"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	tokenAccess  = "access"
	tokenRefresh = "refresh"
)

// Sesion is an authenticated identity as carried by an access token.
type Sesion struct {
	UsuarioID uuid.UUID
	Email     string
	Nombre    string
	SesionID  string // jti
	Expira    time.Time
}

type claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Nombre string `json:"nombre"`
	Tipo   string `json:"typ"`
	jwt.RegisteredClaims
}

// AuthService is the identity provider: it issues and checks sessions and
// publishes sign-in/sign-out events.
type AuthService interface {
	SignIn(ctx context.Context, req dto.SignInRequest) (*dto.SesionResponse, error)
	SignUp(ctx context.Context, req dto.SignUpRequest) (*dto.SesionResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.SesionResponse, error)
	SignOut(ctx context.Context, s *Sesion) error
	// GetSession validates an access token. Any failure, including a
	// revocation check that does not answer within SESSION_CHECK_TIMEOUT,
	// yields ErrNoAutenticado.
	GetSession(ctx context.Context, token string) (*Sesion, error)
	CurrentUser(ctx context.Context, id uuid.UUID) (*dto.UsuarioResponse, error)
	Suscribir(usuarioID uuid.UUID) *eventos.Suscripcion

	ListarUsuarios(ctx context.Context) ([]dto.UsuarioResponse, error)
	AsignarRol(ctx context.Context, id uuid.UUID, r string) (*dto.UsuarioResponse, error)
}

type usuarioCacheado struct {
	u      model.Usuario
	expira time.Time
}

type authService struct {
	repo      repository.UsuarioRepository
	revocados repository.RevocacionStore
	roles     *rol.Resolver
	hub       *eventos.Hub
	cfg       *config.Config
	now       func() time.Time

	mu       sync.RWMutex
	usuarios map[uuid.UUID]usuarioCacheado
}

func NewAuthService(repo repository.UsuarioRepository, revocados repository.RevocacionStore, roles *rol.Resolver, hub *eventos.Hub, cfg *config.Config) AuthService {
	return &authService{
		repo:      repo,
		revocados: revocados,
		roles:     roles,
		hub:       hub,
		cfg:       cfg,
		now:       time.Now,
		usuarios:  make(map[uuid.UUID]usuarioCacheado),
	}
}

func (s *authService) SignIn(ctx context.Context, req dto.SignInRequest) (*dto.SesionResponse, error) {
	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, ErrCredenciales
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrCredenciales
	}
	return s.emitir(ctx, user)
}

func (s *authService) SignUp(ctx context.Context, req dto.SignUpRequest) (*dto.SesionResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, ErrUsuarioExistente
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, err
	}
	user := &model.Usuario{
		ID:           uuid.New(),
		Email:        email,
		Nombre:       strings.TrimSpace(req.Nombre),
		PasswordHash: string(hash),
		Activo:       true,
	}
	if err := s.repo.Create(ctx, user, string(rol.Comercial)); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsuarioExistente
		}
		return nil, err
	}
	log.Info().Str("usuario_id", user.ID.String()).Msg("usuario registrado")
	return s.emitir(ctx, user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.SesionResponse, error) {
	c, err := s.parse(refreshToken, tokenRefresh)
	if err != nil {
		return nil, ErrNoAutenticado
	}
	if s.revocado(ctx, c.ID) {
		return nil, ErrNoAutenticado
	}
	uid, err := uuid.Parse(c.UserID)
	if err != nil {
		return nil, ErrNoAutenticado
	}
	user, err := s.repo.FindByID(ctx, uid)
	if err != nil || !user.Activo {
		return nil, ErrNoAutenticado
	}
	return s.emitir(ctx, user)
}

func (s *authService) SignOut(ctx context.Context, ses *Sesion) error {
	if ses == nil {
		return ErrNoAutenticado
	}
	if err := s.revocados.Revocar(ctx, ses.SesionID, ses.Expira.Sub(s.now())); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.usuarios, ses.UsuarioID)
	s.mu.Unlock()
	s.hub.Publicar(eventos.Evento{Tipo: eventos.SignedOut, UsuarioID: ses.UsuarioID, SesionID: ses.SesionID})
	return nil
}

func (s *authService) GetSession(ctx context.Context, token string) (*Sesion, error) {
	c, err := s.parse(token, tokenAccess)
	if err != nil {
		return nil, ErrNoAutenticado
	}
	uid, err := uuid.Parse(c.UserID)
	if err != nil {
		return nil, ErrNoAutenticado
	}
	if s.revocado(ctx, c.ID) {
		return nil, ErrNoAutenticado
	}
	ses := &Sesion{UsuarioID: uid, Email: c.Email, Nombre: c.Nombre, SesionID: c.ID}
	if c.ExpiresAt != nil {
		ses.Expira = c.ExpiresAt.Time
	}
	return ses, nil
}

// revocado treats a store that errors or does not answer in time as
// "revoked": an unverifiable session is an unauthenticated one.
func (s *authService) revocado(ctx context.Context, jti string) bool {
	timeout := s.cfg.SessionCheckTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type res struct {
		ok  bool
		err error
	}
	ch := make(chan res, 1)
	go func() {
		ok, err := s.revocados.Revocado(ctx, jti)
		ch <- res{ok, err}
	}()
	select {
	case r := <-ch:
		if r.err != nil {
			log.Warn().Err(r.err).Msg("auth: revocation check failed")
			return true
		}
		return r.ok
	case <-ctx.Done():
		log.Warn().Dur("timeout", timeout).Msg("auth: revocation check timed out")
		return true
	}
}

func (s *authService) CurrentUser(ctx context.Context, id uuid.UUID) (*dto.UsuarioResponse, error) {
	s.mu.RLock()
	c, ok := s.usuarios[id]
	s.mu.RUnlock()

	var u model.Usuario
	if ok && s.now().Before(c.expira) {
		u = c.u
	} else {
		found, err := s.repo.FindByID(ctx, id)
		if err != nil || !found.Activo {
			return nil, ErrNoAutenticado
		}
		u = *found
		s.mu.Lock()
		s.usuarios[id] = usuarioCacheado{u: u, expira: s.now().Add(s.ttlUsuarios())}
		s.mu.Unlock()
	}
	resp := toUsuarioResponse(&u, s.roles.Obtener(ctx, id))
	return &resp, nil
}

func (s *authService) ttlUsuarios() time.Duration {
	if s.cfg.RoleCacheTTL > 0 {
		return s.cfg.RoleCacheTTL
	}
	return 5 * time.Minute
}

func (s *authService) Suscribir(usuarioID uuid.UUID) *eventos.Suscripcion {
	return s.hub.Suscribir(usuarioID)
}

func (s *authService) ListarUsuarios(ctx context.Context) ([]dto.UsuarioResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	raw, err := s.repo.Roles(ctx, ids)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UsuarioResponse, len(users))
	for i := range users {
		resp[i] = toUsuarioResponse(&users[i], rol.Normalizar(raw[users[i].ID]))
	}
	return resp, nil
}

func (s *authService) AsignarRol(ctx context.Context, id uuid.UUID, r string) (*dto.UsuarioResponse, error) {
	if !rol.Valido(r) {
		return nil, ErrRolInvalido
	}
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUsuarioNoEncontrado
	}
	if err != nil {
		return nil, err
	}
	if err := s.repo.AsignarRol(ctx, id, r); err != nil {
		return nil, err
	}
	s.roles.Invalidar(id)
	log.Info().Str("usuario_id", id.String()).Str("rol", r).Msg("rol asignado")
	resp := toUsuarioResponse(user, rol.Rol(r))
	return &resp, nil
}

func (s *authService) emitir(ctx context.Context, user *model.Usuario) (*dto.SesionResponse, error) {
	jti := uuid.NewString()
	access, err := s.firmar(user, jti, tokenAccess, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refresh, err := s.firmar(user, uuid.NewString(), tokenRefresh, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	s.hub.Publicar(eventos.Evento{Tipo: eventos.SignedIn, UsuarioID: user.ID, SesionID: jti})

	return &dto.SesionResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         toUsuarioResponse(user, s.roles.Obtener(ctx, user.ID)),
	}, nil
}

func (s *authService) firmar(user *model.Usuario, jti, tipo string, d time.Duration) (string, error) {
	now := s.now()
	c := claims{
		UserID: user.ID.String(),
		Email:  user.Email,
		Nombre: user.Nombre,
		Tipo:   tipo,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(s.cfg.JWTSecret))
}

func (s *authService) parse(token, tipo string) (*claims, error) {
	c := &claims{}
	t, err := jwt.ParseWithClaims(token, c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !t.Valid {
		return nil, ErrNoAutenticado
	}
	if c.Tipo != tipo {
		return nil, ErrNoAutenticado
	}
	return c, nil
}

func toUsuarioResponse(u *model.Usuario, r rol.Rol) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:     u.ID.String(),
		Email:  u.Email,
		Nombre: u.Nombre,
		Rol:    string(r),
		Activo: u.Activo,
	}
}
