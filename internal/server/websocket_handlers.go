package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MeKo-Tech/docoutline/internal/outline"
	"github.com/MeKo-Tech/docoutline/internal/output"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
)

// Response types and statuses sent over WebSocket.
const (
	wsTypeOutline = "outline_response"
	wsTypeError   = "error"

	wsStatusProcessing = "processing"
	wsStatusCompleted  = "completed"
	wsStatusError      = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketOutlineRequest is a text-frame request. Binary frames carry a
// raw PDF instead and need no envelope.
type WebSocketOutlineRequest struct {
	Type     string `json:"type"` // "outline"
	Filename string `json:"filename,omitempty"`
	Data     []byte `json:"data,omitempty"`
	Format   string `json:"format,omitempty"`
}

// WebSocketConnWriter is an interface for writing WebSocket messages.
type WebSocketConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// WebSocketOutlineResponse is sent for every request. Result holds the
// structure for JSON requests and the encoded document otherwise.
type WebSocketOutlineResponse struct {
	Type      string `json:"type"`
	Status    string `json:"status"` // "processing", "completed", "error"
	Result    any    `json:"result,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorType string `json:"error_type,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// outlineWebSocketHandler upgrades the connection and serves outline
// requests until the client goes away.
func (s *Server) outlineWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	if s.rateLimiter != nil {
		if err := s.rateLimiter.CheckRateLimit(getClientIP(r), 0); err != nil {
			s.handleRateLimitError(w, err)
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)
	s.handleWebSocketConnection(r.Context(), conn)
}

func (s *Server) handleWebSocketConnection(ctx context.Context, conn *websocket.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
					return
				}
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			return
		}
		websocketMessagesTotal.WithLabelValues("received").Inc()
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		switch messageType {
		case websocket.BinaryMessage:
			s.processWebSocketDocument(ctx, conn, WebSocketOutlineRequest{Type: "outline", Data: data})
		case websocket.TextMessage:
			s.handleWebSocketMessage(ctx, conn, data)
		}
	}
}

func (s *Server) handleWebSocketMessage(ctx context.Context, conn WebSocketConnWriter, data []byte) {
	var req WebSocketOutlineRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendWebSocketError(conn, "", "invalid_request", fmt.Sprintf("Failed to parse request: %v", err))
		return
	}
	if req.Type != "outline" {
		s.sendWebSocketError(conn, "", "invalid_request", "Unsupported request type: "+req.Type)
		return
	}
	s.processWebSocketDocument(ctx, conn, req)
}

// processWebSocketDocument runs one extraction and reports it in two
// messages: "processing" then "completed" or "error".
func (s *Server) processWebSocketDocument(ctx context.Context, conn WebSocketConnWriter, req WebSocketOutlineRequest) {
	requestID := uuid.NewString()

	if len(req.Data) == 0 {
		s.sendWebSocketError(conn, requestID, "invalid_request", "No document data provided")
		return
	}
	if int64(len(req.Data)) > s.maxUploadMB*1024*1024 {
		s.sendWebSocketError(conn, requestID, "invalid_request", "File too large")
		return
	}
	format, err := output.ParseFormat(req.Format)
	if err != nil {
		s.sendWebSocketError(conn, requestID, "invalid_request", err.Error())
		return
	}
	filename := req.Filename
	if filename == "" {
		filename = "upload.pdf"
	}

	s.sendWebSocketResponse(conn, WebSocketOutlineResponse{
		Type:      wsTypeOutline,
		Status:    wsStatusProcessing,
		RequestID: requestID,
	})

	uploadSizeBytes.Observe(float64(len(req.Data)))
	st, err := s.extractUpload(ctx, filename, bytes.NewReader(req.Data), sourceWebSocket)
	if err != nil {
		errType := "processing_error"
		if errors.Is(err, errUnsupportedUpload) {
			errType = "unsupported_format"
		}
		s.sendWebSocketError(conn, requestID, errType, err.Error())
		return
	}

	if outline.IsErrorStructure(st) {
		s.sendWebSocketResponse(conn, WebSocketOutlineResponse{
			Type:      wsTypeOutline,
			Status:    wsStatusError,
			Result:    st,
			Error:     st.Title,
			ErrorType: "extraction_error",
			RequestID: requestID,
		})
		return
	}

	var result any = st
	if format != output.FormatJSON {
		encoded, err := output.Marshal(st, format)
		if err != nil {
			s.sendWebSocketError(conn, requestID, "processing_error", err.Error())
			return
		}
		result = string(encoded)
	}

	s.sendWebSocketResponse(conn, WebSocketOutlineResponse{
		Type:      wsTypeOutline,
		Status:    wsStatusCompleted,
		Result:    result,
		RequestID: requestID,
	})
}

// sendWebSocketResponse sends a response message over WebSocket.
func (s *Server) sendWebSocketResponse(conn WebSocketConnWriter, response WebSocketOutlineResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		slog.Error("Failed to marshal WebSocket response", "error", err)
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("Failed to send WebSocket message", "error", err)
		return
	}

	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

// sendWebSocketError sends an error message over WebSocket.
func (s *Server) sendWebSocketError(conn WebSocketConnWriter, requestID, errorType, message string) {
	s.sendWebSocketResponse(conn, WebSocketOutlineResponse{
		Type:      wsTypeError,
		Status:    wsStatusError,
		Error:     message,
		ErrorType: errorType,
		RequestID: requestID,
	})
}
