package lark

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/garyjia/order-intake/internal/application/port"
	"go.uber.org/zap"
)

const msgTypeText = "text"

type messageAPI interface {
	SendMessage(ctx context.Context, receiveIDType, receiveID, msgType, content string) (string, error)
}

// Messenger delivers in-app notifications as Lark text messages
type Messenger struct {
	api           messageAPI
	receiveIDType string
	logger        *zap.Logger
}

// NewMessenger creates a new Lark message sender
func NewMessenger(client *SDKClient, logger *zap.Logger) *Messenger {
	return &Messenger{
		api:           client,
		receiveIDType: client.ReceiveIDType(),
		logger:        logger,
	}
}

// SendText sends text to the Lark user receiveID
func (m *Messenger) SendText(ctx context.Context, receiveID, text string) error {
	if receiveID == "" {
		return errors.New("receiveID cannot be empty")
	}
	if text == "" {
		return errors.New("text cannot be empty")
	}

	content, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	messageID, err := m.api.SendMessage(ctx, m.receiveIDType, receiveID, msgTypeText, string(content))
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	m.logger.Info("Message sent",
		zap.String("message_id", messageID),
		zap.String("receive_id", receiveID))
	return nil
}

// LogSender writes messages to the log. It stands in for Messenger when
// Lark is not configured.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a new LogSender
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// SendText logs the message
func (s *LogSender) SendText(ctx context.Context, receiveID, text string) error {
	s.logger.Info("Chat delivery disabled, message logged",
		zap.String("receive_id", receiveID),
		zap.String("text", text))
	return nil
}

// Verify interface compliance
var (
	_ messageAPI         = (*SDKClient)(nil)
	_ port.MessageSender = (*Messenger)(nil)
	_ port.MessageSender = (*LogSender)(nil)
)
