package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"acaradar-web/internal/pkg/logger"
	internalWS "acaradar-web/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressHandlerRejectsBadRequests(t *testing.T) {
	app := fiber.New()
	NewProgressHandler(internalWS.NewHub(nil, logger.NewNopLogger()), logger.NewNopLogger()).RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ws/research_interest/not-a-uuid", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/ws/research_interest/6f1c1f0e-8a55-4a57-9a55-1b2f3c4d5e6f", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}
