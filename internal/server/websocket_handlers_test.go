package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingConn captures messages written by the WebSocket handlers.
type recordingConn struct {
	messages []WebSocketOutlineResponse
	err      error
}

func (c *recordingConn) WriteMessage(_ int, data []byte) error {
	if c.err != nil {
		return c.err
	}
	var resp WebSocketOutlineResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return err
	}
	c.messages = append(c.messages, resp)
	return nil
}

func dialOutline(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readResponse(t *testing.T, conn *websocket.Conn) WebSocketOutlineResponse {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(10*time.Second)))
	var resp WebSocketOutlineResponse
	require.NoError(t, conn.ReadJSON(&resp))
	return resp
}

func TestWebSocket_BinaryDocument(t *testing.T) {
	conn := dialOutline(t, newTestServer(t))
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, planPDF()))

	processing := readResponse(t, conn)
	assert.Equal(t, wsTypeOutline, processing.Type)
	assert.Equal(t, wsStatusProcessing, processing.Status)
	_, err := uuid.Parse(processing.RequestID)
	require.NoError(t, err)

	done := readResponse(t, conn)
	assert.Equal(t, wsStatusCompleted, done.Status)
	assert.Equal(t, processing.RequestID, done.RequestID)

	result, ok := done.Result.(map[string]any)
	require.True(t, ok, "result should be a structure object")
	assert.Equal(t, "Project Plan", result["title"])
	assert.Len(t, result["outline"], 2)
}

func TestWebSocket_TextRequestWithFormat(t *testing.T) {
	conn := dialOutline(t, newTestServer(t))
	require.NoError(t, conn.WriteJSON(WebSocketOutlineRequest{
		Type:     "outline",
		Filename: "plan.pdf",
		Data:     planPDF(),
		Format:   "text",
	}))

	assert.Equal(t, wsStatusProcessing, readResponse(t, conn).Status)
	done := readResponse(t, conn)
	require.Equal(t, wsStatusCompleted, done.Status)
	text, ok := done.Result.(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(text, "Project Plan\n"))
}

func TestWebSocket_ConnectionSurvivesErrors(t *testing.T) {
	conn := dialOutline(t, newTestServer(t))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{")))
	bad := readResponse(t, conn)
	assert.Equal(t, wsTypeError, bad.Type)
	assert.Equal(t, "invalid_request", bad.ErrorType)

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte("not a pdf")))
	assert.Equal(t, wsStatusProcessing, readResponse(t, conn).Status)
	failed := readResponse(t, conn)
	assert.Equal(t, wsStatusError, failed.Status)
	assert.Equal(t, "extraction_error", failed.ErrorType)
	assert.True(t, strings.HasPrefix(failed.Error, "Error: "))
	assert.NotContains(t, failed.Error, "upload-")
}

func TestHandleWebSocketMessage(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		payload string
		errType string
		message string
	}{
		{"unknown type", `{"type":"image"}`, "invalid_request", "Unsupported request type: image"},
		{"no data", `{"type":"outline"}`, "invalid_request", "No document data provided"},
		{"bad format", `{"type":"outline","data":"eA==","format":"csv"}`, "invalid_request", "unsupported output format: csv"},
		{"unsupported file", `{"type":"outline","filename":"a.docx","data":"eA=="}`, "unsupported_format", "unsupported document type: .docx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &recordingConn{}
			s.handleWebSocketMessage(ctx, conn, []byte(tt.payload))
			require.NotEmpty(t, conn.messages)
			last := conn.messages[len(conn.messages)-1]
			assert.Equal(t, wsStatusError, last.Status)
			assert.Equal(t, tt.errType, last.ErrorType)
			assert.Equal(t, tt.message, last.Error)
		})
	}
}

func TestSendWebSocketResponse_WriteFailure(t *testing.T) {
	s := newTestServer(t)
	conn := &recordingConn{err: errors.New("closed")}
	s.sendWebSocketError(conn, "", "invalid_request", "boom")
	assert.Empty(t, conn.messages)
}
