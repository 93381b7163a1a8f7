// Package alerta decides whether a proposal is overdue for a follow-up.
// Evaluation works on calendar days and has no side effects; sending the
// notification is the service's job.
package alerta

import (
	"time"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/estado"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/i18n"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/model"
)

// Tipo is the alert kind; it is also the webhook's tipo_alerta value.
type Tipo string

const (
	Tipo15Dias         Tipo = "15_dias"
	TipoFollowUpFuturo Tipo = "follow_up_futuro"
)

// DiasSinRespuesta is the silence period after sending that raises an alert.
const DiasSinRespuesta = 15

// Resultado of an evaluation. Referencia is the date the alert counts from.
type Resultado struct {
	Alerta     bool
	Tipo       Tipo
	Dias       int
	Referencia time.Time
}

var elegibles = map[estado.Estado]bool{
	estado.PropuestaEnviada:        true,
	estado.FollowUp:                true,
	estado.AguardaAprovacaoDossier: true,
	estado.AguardaPagamento:        true,
}

// Elegible reports whether proposals in e are ever alerted on.
func Elegible(e estado.Estado) bool { return elegibles[e] }

// Elegibles returns the alert-eligible statuses.
func Elegibles() []estado.Estado {
	out := make([]estado.Estado, 0, len(elegibles))
	for _, e := range estado.Todos() {
		if elegibles[e] {
			out = append(out, e)
		}
	}
	return out
}

// Evaluar computes the alert of p on day hoy.
//
// Any follow-up with a future date on or after hoy silences the proposal.
// In follow_up the alert fires when the latest planned date has passed; a
// follow_up proposal with no planned date is not alerted. In the other
// eligible states it fires DiasSinRespuesta days after sending, counted from
// creation when the send date was never recorded.
func Evaluar(p *model.Propuesta, fus []model.FollowUp, hoy time.Time) Resultado {
	if p == nil || !Elegible(p.Estado) {
		return Resultado{}
	}
	dia := Dia(hoy)

	var ultima *time.Time
	for _, fu := range fus {
		if fu.FechaFuturoFollowUp == nil {
			continue
		}
		f := Dia(*fu.FechaFuturoFollowUp)
		if !f.Before(dia) {
			return Resultado{}
		}
		if ultima == nil || f.After(*ultima) {
			ultima = &f
		}
	}

	if p.Estado == estado.FollowUp {
		if ultima == nil {
			return Resultado{}
		}
		return Resultado{Alerta: true, Tipo: TipoFollowUpFuturo, Dias: dias(*ultima, dia), Referencia: *ultima}
	}

	envio := p.CreatedAt
	if p.FechaEnvioPropuesta != nil {
		envio = *p.FechaEnvioPropuesta
	}
	d := dias(Dia(envio), dia)
	if d >= DiasSinRespuesta {
		return Resultado{Alerta: true, Tipo: Tipo15Dias, Dias: d, Referencia: Dia(envio)}
	}
	return Resultado{}
}

// Dia truncates t to its calendar date, as seen in t's own location.
func Dia(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dias(desde, hasta time.Time) int {
	return int(hasta.Sub(desde).Hours() / 24)
}

// Enviada returns the idempotency flag of tipo on p (nil when not sent).
func Enviada(p *model.Propuesta, tipo Tipo) *time.Time {
	switch tipo {
	case Tipo15Dias:
		return p.Webhook15dSentAt
	case TipoFollowUpFuturo:
		return p.WebhookFutureFUSentAt
	}
	return nil
}

// Columna is the proposal column holding the flag of tipo.
func Columna(tipo Tipo) string {
	if tipo == TipoFollowUpFuturo {
		return "webhook_future_fu_sent_at"
	}
	return "webhook_15d_sent_at"
}

// Motivo renders r for the user.
func Motivo(lang i18n.Idioma, r Resultado) string {
	switch {
	case !r.Alerta:
		return ""
	case r.Tipo == TipoFollowUpFuturo:
		return i18n.T(lang, "alerta_follow_up_vencido", r.Referencia.Format("2006-01-02"))
	default:
		return i18n.T(lang, "alerta_15_dias", r.Dias)
	}
}
