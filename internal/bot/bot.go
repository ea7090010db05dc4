// Package bot is the Telegram transport: it long-polls group chats for
// inbound messages, applies the chat whitelist and sender rules, and
// hands each surviving message to the pipeline in its own goroutine. It
// also implements the direct-message send side used for replies.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"quote_bot/internal/engine"
	"quote_bot/internal/model"
	"quote_bot/internal/runtimecfg"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Processor runs the per-message pipeline.
type Processor interface {
	Process(ctx context.Context, msg model.RawMessage)
}

// ChatAllowlist serves the whitelisted chat IDs for an account.
type ChatAllowlist interface {
	AllowedChats(account string) map[int64]bool
}

// Bot listens for inbound messages and sends direct-message replies.
type Bot struct {
	api     telegramAPI
	proc    Processor
	chats   ChatAllowlist
	account string
	primary bool
	log     *slog.Logger
}

// New creates a Bot with the given Telegram token. The processor is
// attached separately because it needs the Bot as its reply sender.
func New(token string, chats ChatAllowlist, account string, primary bool, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	return &Bot{
		api:     api,
		chats:   chats,
		account: account,
		primary: primary,
		log:     log,
	}, nil
}

// SetProcessor attaches the message pipeline. Must be called before Run.
func (b *Bot) SetProcessor(p Processor) {
	b.proc = p
}

// Run starts the long-polling loop, blocking until ctx is cancelled.
// Each accepted message is processed in its own goroutine so one slow
// send never stalls the others.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			msg := update.Message
			go b.handleMessage(ctx, msg)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, m *tgbotapi.Message) {
	// Channel posts and anonymous admins have no addressable sender.
	if m.From == nil || m.IsCommand() {
		return
	}

	isGroup := m.Chat.IsGroup() || m.Chat.IsSuperGroup()
	if isGroup {
		allowed := b.chats.AllowedChats(b.account)
		if len(allowed) > 0 && !allowed[runtimecfg.NormalizeChatID(m.Chat.ID)] {
			return
		}
	}

	// Secondary accounts observe without replying or recording.
	if !b.primary {
		b.log.Debug("secondary account, message observed only", "chat_id", m.Chat.ID)
		return
	}

	b.proc.Process(ctx, model.RawMessage{
		SenderID:    m.From.ID,
		Text:        m.Text,
		ChatID:      m.Chat.ID,
		IsPrivate:   m.Chat.IsPrivate(),
		IsGroup:     isGroup,
		SenderIsBot: m.From.IsBot,
		Origin:      originName(m.Chat),
		Time:        time.Unix(int64(m.Date), 0).UTC(),
	})
}

func originName(chat *tgbotapi.Chat) string {
	switch {
	case chat == nil:
		return ""
	case chat.UserName != "":
		return "@" + chat.UserName
	case chat.Title != "":
		return chat.Title
	}
	return strconv.FormatInt(chat.ID, 10)
}

// SendDirect implements the pipeline's reply sender. Privacy-restricted
// recipients surface as engine.ErrPrivacy so the pipeline records the
// outcome without retrying.
func (b *Bot) SendDirect(ctx context.Context, userID int64, text string) error {
	msg := tgbotapi.NewMessage(userID, text)
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		if isPrivacyError(err) {
			return engine.ErrPrivacy
		}
		return fmt.Errorf("send direct message: %w", err)
	}
	return nil
}

func isPrivacyError(err error) bool {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 403 || strings.Contains(apiErr.Message, "Forbidden")
	}
	return strings.Contains(err.Error(), "Forbidden")
}
