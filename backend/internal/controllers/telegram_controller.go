package controllers

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/laerciomonteiro/escutasegura/backend/internal/services"
	"github.com/laerciomonteiro/escutasegura/backend/internal/telegram"
)

const statsCommand = "stats"

// TelegramController recebe os updates do bot e responde aos comandos
// administrativos.
type TelegramController struct {
	stats  services.StatsService
	chatID string
	secret string
	logger *zap.Logger
}

// NewTelegramController só responde a comandos enviados em chatID. Um secret
// não vazio precisa bater com o header X-Telegram-Bot-Api-Secret-Token.
func NewTelegramController(stats services.StatsService, chatID, secret string, logger *zap.Logger) *TelegramController {
	return &TelegramController{stats: stats, chatID: chatID, secret: secret, logger: logger.Named("telegram-webhook")}
}

func (ctr *TelegramController) Register(g *echo.Group) {
	g.POST("/telegram/webhook", ctr.Webhook)
}

// Webhook trata POST /telegram/webhook. Updates ignorados também recebem 200
// para que o Telegram não os reenvie.
func (ctr *TelegramController) Webhook(c echo.Context) error {
	if ctr.secret != "" {
		got := c.Request().Header.Get(telegram.SecretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(ctr.secret)) != 1 {
			return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Não autorizado"})
		}
	}

	var u telegram.Update
	if err := c.Bind(&u); err != nil || u.Message == nil || u.Message.Text == "" {
		return c.JSON(http.StatusOK, map[string]string{"message": "Requisição ignorada"})
	}

	if u.Message.Command() == statsCommand && u.Message.FromChat(ctr.chatID) {
		if err := ctr.stats.Report(c.Request().Context()); err != nil {
			ctr.logger.Error("Falha ao responder /stats", zap.Error(err))
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "OK"})
}
