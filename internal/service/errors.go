package service

import "errors"

// Sentinel errors. Handlers map them to HTTP status and a localized message;
// anything else is a 500.
var (
	ErrNoAutenticado         = errors.New("no autenticado")
	ErrCredenciales          = errors.New("credenciales invalidas")
	ErrUsuarioExistente      = errors.New("usuario existente")
	ErrPermisos              = errors.New("permisos insuficientes")
	ErrPropuestaNoEncontrada = errors.New("propuesta no encontrada")
	ErrArticuloNoEncontrado  = errors.New("articulo no encontrado")
	ErrTransicionAjena       = errors.New("transicion de otra propuesta o usuario")
	ErrSinAlerta             = errors.New("la propuesta no tiene alerta")
	ErrYaNotificada          = errors.New("alerta ya notificada")
	ErrNotificacionEnCurso   = errors.New("notificacion en curso")
	ErrNotificacionFallida   = errors.New("notificacion no enviada")
	ErrRolInvalido           = errors.New("rol invalido")
	ErrArchivoInvalido       = errors.New("archivo invalido")
	ErrNumeroEncomendaVacio  = errors.New("numero de encomenda vacio")
	ErrUsuarioNoEncontrado   = errors.New("usuario no encontrado")
	ErrProductoExistente     = errors.New("producto existente")
	ErrProveedorExistente    = errors.New("proveedor existente")
)
