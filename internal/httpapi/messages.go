package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/adil-khursheed/mysterymessage/internal/model"
	"github.com/adil-khursheed/mysterymessage/internal/session"
	"github.com/adil-khursheed/mysterymessage/internal/store"
)

const (
	minContentLen = 10
	maxContentLen = 300
)

type messagesResponse struct {
	Success  bool            `json:"success"`
	Messages []model.Message `json:"messages"`
}

type sendMessageRequest struct {
	Username string `json:"username"`
	Content  string `json:"content"`
}

func (s *Server) handleGetMessages(w http.ResponseWriter, r *http.Request, id session.Identity) {
	msgs, err := s.store.ListMessages(r.Context(), id.AccountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.metrics.RecordMessage("list", "not_found")
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		s.logger.Error(r.Context(), "list messages failed", "account_id", id.AccountID, "error", err)
		s.metrics.RecordMessage("list", "error")
		writeError(w, http.StatusInternalServerError, "Failed to get the messages")
		return
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	s.metrics.RecordMessage("list", "ok")
	writeJSON(w, http.StatusOK, messagesResponse{Success: true, Messages: msgs})
}

func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request, id session.Identity) {
	messageID := strings.TrimSpace(r.PathValue("messageId"))
	if messageID == "" {
		writeError(w, http.StatusNotFound, "Message not found or already deleted")
		return
	}

	err := s.store.DeleteMessage(r.Context(), id.AccountID, messageID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.metrics.RecordMessage("delete", "not_found")
			writeError(w, http.StatusNotFound, "Message not found or already deleted")
			return
		}
		s.logger.Error(r.Context(), "delete message failed", "account_id", id.AccountID, "message_id", messageID, "error", err)
		s.metrics.RecordMessage("delete", "error")
		writeError(w, http.StatusInternalServerError, "Error deleting message")
		return
	}

	s.metrics.RecordMessage("delete", "ok")
	s.bus.Publish(EventMessageDeleted, id.AccountID)
	writeOK(w, http.StatusOK, "Message deleted successfully!")
}

// handleSendMessage accepts anonymous messages; the sender's identity is only
// used for rate limiting and never stored.
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request, _ session.Identity) {
	var req sendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		writeError(w, http.StatusBadRequest, "Username is required")
		return
	}
	content := strings.TrimSpace(req.Content)
	switch n := utf8.RuneCountInString(content); {
	case n < minContentLen:
		writeError(w, http.StatusBadRequest, "Content must be at least 10 characters")
		return
	case n > maxContentLen:
		writeError(w, http.StatusBadRequest, "Content must not be longer than 300 characters")
		return
	}

	acc, err := s.store.GetAccountByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		s.logger.Error(r.Context(), "lookup recipient failed", "username", username, "error", err)
		writeError(w, http.StatusInternalServerError, "Error sending message")
		return
	}

	if _, err := s.store.AddMessage(r.Context(), acc.ID, content); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		s.logger.Error(r.Context(), "add message failed", "account_id", acc.ID, "error", err)
		s.metrics.RecordMessage("send", "error")
		writeError(w, http.StatusInternalServerError, "Error sending message")
		return
	}

	s.metrics.RecordMessage("send", "ok")
	s.bus.Publish(EventMessageReceived, acc.ID)
	writeOK(w, http.StatusCreated, "Message sent successfully")
}
