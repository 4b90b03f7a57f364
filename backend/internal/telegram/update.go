package telegram

import (
	"strconv"
	"strings"
)

// SecretTokenHeader traz o secret configurado no setWebhook.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// Update é a parte do update do webhook que o serviço lê.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// Command devolve o comando da mensagem sem a barra inicial nem o sufixo
// "@botname", ou "" quando o texto não é comando.
func (m *Message) Command() string {
	if m == nil || !strings.HasPrefix(m.Text, "/") {
		return ""
	}
	cmd := strings.Fields(m.Text)[0][1:]
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	return cmd
}

// FromChat indica se a mensagem veio do chat chatID.
func (m *Message) FromChat(chatID string) bool {
	return m != nil && strconv.FormatInt(m.Chat.ID, 10) == strings.TrimSpace(chatID)
}
