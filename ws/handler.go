package ws

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/drosell271/aiquiz-manager/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: restringir orígenes en producción
	},
}

func sendJSON(conn *websocket.Conn, data interface{}) {
	msg, err := json.Marshal(data)
	if err != nil {
		log.Println("Error en marshal JSON:", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		log.Println("Error enviando mensaje:", err)
	}
}

// HandleFileWebSocket transmite el estado de procesado de un fichero.
// El token de sesión viaja en la query porque el handshake de WebSocket no
// admite cabeceras personalizadas desde el navegador.
func HandleFileWebSocket(c *gin.Context) {
	fileID := c.Param("id")
	token := c.Query("token")

	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Falta el token"})
		return
	}
	if _, err := utils.VerifyToken(token); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Token inválido o expirado"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("Fallo en el upgrade de WebSocket:", err)
		return
	}
	H.Register(fileID, conn)

	sendJSON(conn, gin.H{"type": "connected", "file_id": fileID})
}

// HandleGlobalWebSocket transmite los cambios de estado de todos los ficheros.
func HandleGlobalWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Falta el token"})
		return
	}
	if _, err := utils.VerifyToken(token); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Token inválido o expirado"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("Fallo en el upgrade de WebSocket:", err)
		return
	}
	H.RegisterGlobal(conn)

	sendJSON(conn, gin.H{"type": "connected"})
}
