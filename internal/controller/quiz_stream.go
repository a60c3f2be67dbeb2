package controller

import (
	"edu_portal_backend/internal/quiz"
	"edu_portal_backend/pkg/logger"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsMessage 上行为 answer/next/prev 命令，下行为 snapshot/error
type wsMessage struct {
	Type  string      `json:"type"`
	Index int         `json:"index,omitempty"`
	Data  interface{} `json:"data,omitempty"`
}

// Stream godoc
// @Summary 测验实时推送
// @Description WebSocket：每次状态变化（包括每秒倒计时）推送快照，也可发送 answer/next/prev 命令
// @Tags 测验
// @Security BearerAuth
// @Param token query string false "JWT（浏览器无法设置请求头时使用）"
// @Router /api/quiz/run/ws [get]
func (c *QuizController) Stream(ctx *gin.Context) {
	claims := currentUser(ctx)
	if claims == nil {
		return
	}

	updates, unsubscribe, err := c.Quizzes.Subscribe(claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		unsubscribe()
		logger.Log.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	replies := make(chan wsMessage, 4)
	if snap, err := c.Quizzes.Current(claims.UserID); err == nil {
		replies <- wsMessage{Type: "snapshot", Data: snap}
	}

	go writePump(conn, updates, replies)
	c.readPump(conn, claims.UserID, replies)
	unsubscribe()
}

func (c *QuizController) readPump(conn *websocket.Conn, userID string, replies chan<- wsMessage) {
	defer conn.Close()

	limiter := rate.NewLimiter(rate.Limit(10), 20)
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error { conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Warn("WebSocket unexpected close", zap.String("user_id", userID), zap.Error(err))
			}
			return
		}
		if !limiter.Allow() {
			continue
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		// 成功的命令会通过订阅通道推送新快照
		switch msg.Type {
		case "answer":
			_, err = c.Quizzes.SelectAnswer(userID, msg.Index)
		case "next":
			_, err = c.Quizzes.Next(userID)
		case "prev":
			_, err = c.Quizzes.Prev(userID)
		default:
			continue
		}
		if err != nil {
			select {
			case replies <- wsMessage{Type: "error", Data: err.Error()}:
			default:
			}
		}
	}
}

func writePump(conn *websocket.Conn, updates <-chan quiz.Snapshot, replies <-chan wsMessage) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case snap, ok := <-updates:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "quiz closed"))
				return
			}
			if err := conn.WriteJSON(wsMessage{Type: "snapshot", Data: snap}); err != nil {
				return
			}
		case msg := <-replies:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
