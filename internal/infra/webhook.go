package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrWebhookRechazado means the receiver answered but did not confirm with
// {"ok": true}. The alert flag must stay unset so the alert is retried.
var ErrWebhookRechazado = errors.New("webhook: respuesta sin ok=true")

// AlertaPayload is the body posted to the alert webhook.
type AlertaPayload struct {
	NumeroPropuesta   int    `json:"numero_propuesta"`
	NombreCliente     string `json:"nombre_cliente"`
	NombreComercial   string `json:"nombre_comercial"`
	NombreResponsable string `json:"nombre_responsable"`
	TipoAlerta        string `json:"tipo_alerta"`
}

type webhookRespuesta struct {
	OK bool `json:"ok"`
}

// WebhookClient posts alert notifications to the configured automation URL
// through a circuit breaker, so a dead receiver fails fast.
type WebhookClient struct {
	url        string
	httpClient *http.Client
	cb         *CircuitBreaker
}

func NewWebhookClient(url string, cb *CircuitBreaker) *WebhookClient {
	if cb == nil {
		cb = NewCircuitBreaker(DefaultCBConfig())
	}
	return &WebhookClient{
		url:        url,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cb:         cb,
	}
}

// Configurado reports whether a webhook URL was set.
func (c *WebhookClient) Configurado() bool { return c != nil && c.url != "" }

// Breaker exposes the breaker for health reporting.
func (c *WebhookClient) Breaker() *CircuitBreaker { return c.cb }

// Enviar posts payload and succeeds only on a 2xx answer carrying ok=true.
func (c *WebhookClient) Enviar(ctx context.Context, payload AlertaPayload) error {
	if !c.Configurado() {
		return errors.New("webhook: ALERT_WEBHOOK_URL no configurada")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("webhook: marshal payload: %w", err)
	}

	return c.cb.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("webhook: create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("webhook: receiver unreachable: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("webhook: receiver returned %d", resp.StatusCode)
		}

		var r webhookRespuesta
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&r); err != nil {
			return fmt.Errorf("webhook: decode response: %w", err)
		}
		if !r.OK {
			return ErrWebhookRechazado
		}
		return nil
	})
}
