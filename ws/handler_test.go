package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drosell271/aiquiz-manager/utils"
)

func newWSServer() *httptest.Server {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws/files/:id", HandleFileWebSocket)
	r.GET("/ws/status", HandleGlobalWebSocket)
	return httptest.NewServer(r)
}

func wsURL(server *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + path
}

func readJSON(t *testing.T, conn *websocket.Conn, v interface{}) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(msg, v))
}

func TestFileWebSocket_RequiresToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-test")
	server := newWSServer()
	defer server.Close()

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(server, "/ws/files/abc"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL(server, "/ws/files/abc?token=basura"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestFileWebSocket_ReceivesStatusUpdates(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-test")
	server := newWSServer()
	defer server.Close()

	token, err := utils.GenerateToken("uid", "ana@upm.es", "professor")
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, "/ws/files/fichero-1?token="+token), nil)
	require.NoError(t, err)
	defer conn.Close()

	var hello struct {
		Type   string `json:"type"`
		FileID string `json:"file_id"`
	}
	readJSON(t, conn, &hello)
	assert.Equal(t, "connected", hello.Type)
	assert.Equal(t, "fichero-1", hello.FileID)

	SendFileStatus("fichero-1", "indexing", "")

	var update FileStatusUpdate
	readJSON(t, conn, &update)
	assert.Equal(t, "fichero-1", update.FileID)
	assert.Equal(t, "indexing", update.Status)
}

func TestGlobalWebSocket_ReceivesAllFiles(t *testing.T) {
	t.Setenv("JWT_SECRET", "secreto-de-test")
	server := newWSServer()
	defer server.Close()

	token, err := utils.GenerateToken("uid", "ana@upm.es", "professor")
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, "/ws/status?token="+token), nil)
	require.NoError(t, err)
	defer conn.Close()

	var hello struct {
		Type string `json:"type"`
	}
	readJSON(t, conn, &hello)
	require.Equal(t, "connected", hello.Type)

	// El canal global recibe los cambios de cualquier fichero
	SendFileStatus("otro-fichero", "error", "formato no soportado")

	var update FileStatusUpdate
	readJSON(t, conn, &update)
	assert.Equal(t, "otro-fichero", update.FileID)
	assert.Equal(t, "error", update.Status)
	assert.Equal(t, "formato no soportado", update.Error)
}
