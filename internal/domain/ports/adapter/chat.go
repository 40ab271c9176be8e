// File: internal/domain/ports/adapter/chat.go
package adapter

import "context"

// ChatBotAdapter is the outbound messaging surface of the chat platform.
type ChatBotAdapter interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}
