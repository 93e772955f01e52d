package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// messageLimit is the longest text Telegram accepts in a single message.
const messageLimit = 4096

// Button is one inline keyboard option.
type Button struct {
	Label string
	Data  string
}

// Messenger abstracts the Telegram sends so flows and command handlers are
// testable with a recording stub. Send methods return the id of the last
// message delivered; texts over the Telegram limit are split into consecutive
// messages, preferring newline boundaries.
type Messenger interface {
	Send(chatID int64, text string) (int, error)
	SendMarkdown(chatID int64, text string) (int, error)
	// SendOptions delivers Markdown text with an inline keyboard attached to
	// the last message.
	SendOptions(chatID int64, text string, rows [][]Button) (int, error)
	// Edit replaces the text of a previously sent message, dropping any
	// keyboard it carried.
	Edit(chatID int64, messageID int, text string) error
	EditMarkdown(chatID int64, messageID int, text string) error
	Delete(chatID int64, messageID int) error
	AnswerCallback(callbackID string) error
}

type TelegramMessenger struct {
	api *tgbotapi.BotAPI
}

func NewTelegramMessenger(api *tgbotapi.BotAPI) *TelegramMessenger {
	return &TelegramMessenger{api: api}
}

func (m *TelegramMessenger) Send(chatID int64, text string) (int, error) {
	return m.send(chatID, text, "", nil)
}

func (m *TelegramMessenger) SendMarkdown(chatID int64, text string) (int, error) {
	return m.send(chatID, text, tgbotapi.ModeMarkdown, nil)
}

func (m *TelegramMessenger) SendOptions(chatID int64, text string, rows [][]Button) (int, error) {
	markup := inlineMarkup(rows)
	return m.send(chatID, text, tgbotapi.ModeMarkdown, &markup)
}

func (m *TelegramMessenger) send(chatID int64, text string, parseMode string, markup *tgbotapi.InlineKeyboardMarkup) (int, error) {
	parts := splitMessage(text, messageLimit)
	var lastID int
	for i, part := range parts {
		msg := tgbotapi.NewMessage(chatID, part)
		msg.ParseMode = parseMode
		if markup != nil && i == len(parts)-1 {
			msg.ReplyMarkup = *markup
		}
		sent, err := m.api.Send(msg)
		if err != nil {
			return 0, fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
		}
		lastID = sent.MessageID
	}
	return lastID, nil
}

func (m *TelegramMessenger) Edit(chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if _, err := m.api.Send(edit); err != nil {
		return fmt.Errorf("failed to edit message %d in chat %d: %w", messageID, chatID, err)
	}
	return nil
}

func (m *TelegramMessenger) EditMarkdown(chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := m.api.Send(edit); err != nil {
		return fmt.Errorf("failed to edit message %d in chat %d: %w", messageID, chatID, err)
	}
	return nil
}

func (m *TelegramMessenger) Delete(chatID int64, messageID int) error {
	if _, err := m.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("failed to delete message %d in chat %d: %w", messageID, chatID, err)
	}
	return nil
}

func (m *TelegramMessenger) AnswerCallback(callbackID string) error {
	if _, err := m.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		return fmt.Errorf("failed to answer callback query %s: %w", callbackID, err)
	}
	return nil
}

func inlineMarkup(rows [][]Button) tgbotapi.InlineKeyboardMarkup {
	keyboard := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, button := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(button.Label, button.Data))
		}
		keyboard = append(keyboard, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// splitMessage cuts text into chunks of at most limit runes. Cuts happen at
// the last newline inside the window when there is one.
func splitMessage(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var parts []string
	for len(runes) > limit {
		cut := limit
		for i := limit; i > 0; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		part := string(runes[:cut])
		runes = runes[cut:]
		for len(part) > 0 && part[len(part)-1] == '\n' {
			part = part[:len(part)-1]
		}
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}
