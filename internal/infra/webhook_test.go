package infra

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookEnviarPostsPayload(t *testing.T) {
	var got AlertaPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewWebhookClient(srv.URL, nil)
	err := c.Enviar(context.Background(), AlertaPayload{
		NumeroPropuesta: 42, NombreCliente: "Hotel Sol", NombreComercial: "Ana",
		NombreResponsable: "Rui", TipoAlerta: "15_dias",
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got.NumeroPropuesta)
	assert.Equal(t, "15_dias", got.TipoAlerta)
}

func TestWebhookWithoutOKIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false}`))
	}))
	defer srv.Close()

	err := NewWebhookClient(srv.URL, nil).Enviar(context.Background(), AlertaPayload{})
	assert.ErrorIs(t, err, ErrWebhookRechazado)
}

func TestWebhookNon2xxFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWebhookClient(srv.URL, nil).Enviar(context.Background(), AlertaPayload{})
	assert.Error(t, err)
}

func TestWebhookNotConfigured(t *testing.T) {
	c := NewWebhookClient("", nil)
	assert.False(t, c.Configurado())
	assert.Error(t, c.Enviar(context.Background(), AlertaPayload{}))
}
