package lark

import (
	"context"
	"fmt"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"
)

// Receive id types accepted by the IM API
const (
	ReceiveIDOpenID  = "open_id"
	ReceiveIDUserID  = "user_id"
	ReceiveIDEmail   = "email"
	ReceiveIDUnionID = "union_id"
)

// Config holds Lark app credentials
type Config struct {
	AppID     string
	AppSecret string
	// ReceiveIDType says how notification user ids map to Lark users
	ReceiveIDType string
}

// APIError is a response the IM API answered with a non-zero code
type APIError struct {
	Code int
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("lark api error %d: %s", e.Code, e.Msg)
}

// SDKClient owns the Lark SDK client and the receive id type used for
// every message it creates.
type SDKClient struct {
	client        *lark.Client
	receiveIDType string
	logger        *zap.Logger
}

// NewSDKClient builds a client with tenant token caching enabled
func NewSDKClient(cfg Config, logger *zap.Logger) *SDKClient {
	receiveIDType := cfg.ReceiveIDType
	if receiveIDType == "" {
		receiveIDType = ReceiveIDUserID
	}

	return &SDKClient{
		client: lark.NewClient(cfg.AppID, cfg.AppSecret,
			lark.WithLogLevel(larkcore.LogLevelWarn),
			lark.WithEnableTokenCache(true),
		),
		receiveIDType: receiveIDType,
		logger:        logger,
	}
}

// GetClient returns the underlying Lark SDK client
func (c *SDKClient) GetClient() *lark.Client {
	return c.client
}

// ReceiveIDType returns the configured receive id type
func (c *SDKClient) ReceiveIDType() string {
	return c.receiveIDType
}

// SendMessage creates one IM message and returns its message id. A response
// with a non-zero code comes back as *APIError.
func (c *SDKClient) SendMessage(ctx context.Context, receiveIDType, receiveID, msgType, content string) (string, error) {
	body := larkim.NewCreateMessageReqBodyBuilder().
		ReceiveId(receiveID).
		MsgType(msgType).
		Content(content).
		Build()

	resp, err := c.client.Im.Message.Create(ctx, larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(receiveIDType).
		Body(body).
		Build())
	if err != nil {
		return "", fmt.Errorf("failed to call lark im api: %w", err)
	}
	if !resp.Success() {
		c.logger.Warn("Lark rejected message",
			zap.String("receive_id", receiveID),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return "", &APIError{Code: resp.Code, Msg: resp.Msg}
	}

	if resp.Data == nil || resp.Data.MessageId == nil {
		return "", nil
	}
	return *resp.Data.MessageId, nil
}
