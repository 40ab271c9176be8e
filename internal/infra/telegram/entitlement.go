package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-buyer-verification/internal/domain"
	"telegram-buyer-verification/internal/domain/ports/adapter"
)

// BuyerChatEntitlements materializes the buyer role as membership of a
// private Telegram chat. Granting means minting a single-use invite link and
// delivering it to the user in a direct message.
type BuyerChatEntitlements struct {
	bot      *tgbotapi.BotAPI
	chat     adapter.ChatBotAdapter
	chatID   int64
	roleName string
	log      *zerolog.Logger
}

var _ adapter.EntitlementAdapter = (*BuyerChatEntitlements)(nil)

func NewBuyerChatEntitlements(bot *tgbotapi.BotAPI, chat adapter.ChatBotAdapter, chatID int64, roleName string, logger *zerolog.Logger) *BuyerChatEntitlements {
	return &BuyerChatEntitlements{
		bot:      bot,
		chat:     chat,
		chatID:   chatID,
		roleName: roleName,
		log:      logger,
	}
}

// ResolveRole confirms the buyers chat exists and the bot can see it.
func (e *BuyerChatEntitlements) ResolveRole(_ context.Context) (*adapter.Role, error) {
	if e.chatID == 0 {
		return nil, fmt.Errorf("buyers chat not configured: %w", domain.ErrRoleNotFound)
	}
	chat, err := e.bot.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: e.chatID},
	})
	if err != nil {
		return nil, fmt.Errorf("buyers chat %d not reachable: %w", e.chatID, domain.ErrRoleNotFound)
	}
	return &adapter.Role{ChatID: chat.ID, Name: e.roleName}, nil
}

// HasRole reports whether the user already holds membership of the buyers chat.
func (e *BuyerChatEntitlements) HasRole(_ context.Context, userID int64, role *adapter.Role) (bool, error) {
	member, err := e.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: role.ChatID, UserID: userID},
	})
	if err != nil {
		// Telegram answers "user not found" for users it has never seen in
		// the chat; that is a plain negative, not a failure.
		if strings.Contains(strings.ToLower(err.Error()), "user not found") {
			return false, nil
		}
		return false, err
	}
	switch member.Status {
	case "creator", "administrator", "member", "restricted":
		return true, nil
	}
	return false, nil
}

// GrantRole mints a one-member invite link to the buyers chat and sends it to
// the user in a direct message.
func (e *BuyerChatEntitlements) GrantRole(ctx context.Context, userID int64, role *adapter.Role) error {
	resp, err := e.bot.Request(tgbotapi.CreateChatInviteLinkConfig{
		ChatConfig:  tgbotapi.ChatConfig{ChatID: role.ChatID},
		MemberLimit: 1,
		Name:        fmt.Sprintf("buyer-%d", userID),
	})
	if err != nil {
		return fmt.Errorf("create invite link: %w", err)
	}
	var link tgbotapi.ChatInviteLink
	if err := json.Unmarshal(resp.Result, &link); err != nil {
		return fmt.Errorf("decode invite link: %w", err)
	}
	if err := e.chat.SendMessage(ctx, userID, link.InviteLink); err != nil {
		return fmt.Errorf("deliver invite link: %w", err)
	}
	e.log.Info().Int64("tg_id", userID).Int64("chat_id", role.ChatID).Msg("buyer invite delivered")
	return nil
}
