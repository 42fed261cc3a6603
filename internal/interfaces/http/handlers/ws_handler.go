package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"barberq.backend/internal/domain/entities"
	domainerrors "barberq.backend/internal/domain/errors"
	"barberq.backend/internal/infrastructure/realtime"
	"barberq.backend/internal/interfaces/http/middleware"
	"barberq.backend/internal/interfaces/http/response"
	"barberq.backend/internal/usecases"
	"barberq.backend/pkg/jwt"
	"barberq.backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsMaxMessage = 4096
)

// WSHandler upgrades turn and chat sockets
type WSHandler struct {
	merchantUsecase *usecases.MerchantUsecase
	chatUsecase     *usecases.ChatUsecase
	jwtService      *jwt.JWTService
	hub             *realtime.Hub
	upgrader        websocket.Upgrader
}

// NewWSHandler creates a new socket handler
func NewWSHandler(
	merchantUsecase *usecases.MerchantUsecase,
	chatUsecase *usecases.ChatUsecase,
	jwtService *jwt.JWTService,
	hub *realtime.Hub,
) *WSHandler {
	return &WSHandler{
		merchantUsecase: merchantUsecase,
		chatUsecase:     chatUsecase,
		jwtService:      jwtService,
		hub:             hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type chatFrame struct {
	Message string `json:"message"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// Barbershop streams turn updates of one barbershop
// GET /ws/barbershop/:id
func (h *WSHandler) Barbershop(c *gin.Context) {
	merchantID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	status, err := h.merchantUsecase.GetTurnStatus(c.Request.Context(), merchantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	// subscribe first so no update raised during the handshake is missed
	sub := h.hub.Subscribe(entities.MerchantTopic(merchantID))
	defer sub.Close()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn(c.Request.Context(), "Barbershop socket upgrade failed", zap.Error(err))
		return
	}
	sc := newSocket(conn)
	defer sc.close()
	h.logConnected(c.Request.Context(), sub)

	if err := sc.writeJSON(entities.TurnStatusPayload{
		Type:                  entities.PayloadTurnStatus,
		CurrentTurnNumber:     status.CurrentTurnNumber,
		FinishedBookingsCount: status.FinishedBookingsCount,
	}); err != nil {
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sc.readLoop(func([]byte) {})
	}()
	sc.relay(sub, done)
}

// Chat streams and accepts messages of one booking
// GET /ws/chat/:booking_id
func (h *WSHandler) Chat(c *gin.Context) {
	bookingID, ok := uuidParam(c, "booking_id")
	if !ok {
		return
	}
	userID, err := h.authenticate(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	ctx := c.Request.Context()
	if _, err := h.chatUsecase.Authorize(ctx, bookingID, userID); err != nil {
		response.Error(c, err)
		return
	}

	sub := h.hub.Subscribe(entities.ChatTopic(bookingID))
	defer sub.Close()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn(ctx, "Chat socket upgrade failed", zap.Error(err))
		return
	}
	sc := newSocket(conn)
	defer sc.close()
	h.logConnected(c.Request.Context(), sub)

	// the request context ends with the handler, inbound sends outlive it
	sendCtx := context.WithoutCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		sc.readLoop(func(raw []byte) {
			var frame chatFrame
			if err := json.Unmarshal(raw, &frame); err != nil {
				_ = sc.writeJSON(errorFrame{Type: "error", Error: "invalid message frame"})
				return
			}
			if _, err := h.chatUsecase.SendMessage(sendCtx, bookingID, userID, frame.Message); err != nil {
				_ = sc.writeJSON(errorFrame{Type: "error", Error: domainerrors.FromError(err).Message})
			}
		})
	}()
	sc.relay(sub, done)
}

func (h *WSHandler) authenticate(c *gin.Context) (uuid.UUID, error) {
	token, err := middleware.TokenFromRequest(c)
	if err != nil {
		return uuid.Nil, domainerrors.Unauthorized("Authorization token is required")
	}
	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return uuid.Nil, domainerrors.Unauthorized("Token has expired")
		}
		return uuid.Nil, domainerrors.Unauthorized("Invalid token")
	}
	return claims.UserID, nil
}

// socket serialises writes; gorilla connections allow one concurrent writer
type socket struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func newSocket(conn *websocket.Conn) *socket {
	conn.SetReadLimit(wsMaxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	return &socket{conn: conn}
}

func (s *socket) write(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return s.conn.WriteMessage(messageType, data)
}

func (s *socket) writeJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.write(websocket.TextMessage, data)
}

// readLoop hands every inbound text frame to handle until the peer goes away
func (s *socket) readLoop(handle func([]byte)) {
	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType == websocket.TextMessage {
			handle(data)
		}
	}
}

func (h *WSHandler) logConnected(ctx context.Context, sub *realtime.Subscription) {
	logger.Debug(ctx, "Socket connected",
		zap.String("topic", sub.Topic()),
		zap.Int("subscribers", h.hub.SubscriberCount(sub.Topic())),
	)
}

// relay forwards subscription frames and keeps the peer alive with pings
func (s *socket) relay(sub *realtime.Subscription, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case frame, ok := <-sub.C():
			if !ok {
				return
			}
			if err := s.write(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			if err := s.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *socket) close() {
	s.mu.Lock()
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(wsWriteWait))
	s.mu.Unlock()
	_ = s.conn.Close()
}
