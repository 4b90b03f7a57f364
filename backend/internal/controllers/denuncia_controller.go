package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/laerciomonteiro/escutasegura/backend/internal/config"
	"github.com/laerciomonteiro/escutasegura/backend/internal/models"
	"github.com/laerciomonteiro/escutasegura/backend/internal/services"
	"github.com/laerciomonteiro/escutasegura/backend/internal/telegram"
)

// Mensagens devolvidas ao formulário. Detalhes internos nunca são expostos.
const (
	msgEnviada          = "Denúncia enviada via Telegram com sucesso"
	msgDadosInvalidos   = "Dados inválidos"
	msgConfigAusente    = "Configuração ausente"
	msgFalhaEnvio       = "Falha ao enviar a denúncia. Tente novamente mais tarde."
	msgErroInterno      = "Erro interno do servidor"
	msgFormatoInvalido  = "Formato da requisição inválido"
	msgCorpoMuitoGrande = "Requisição muito grande"
)

// DenunciaResponse é o corpo JSON de toda resposta de /denuncia.
type DenunciaResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	ID      string             `json:"id,omitempty"`
	Errors  models.FieldErrors `json:"errors,omitempty"`
}

// DenunciaController agrupa as rotas de envio de denúncias.
type DenunciaController struct {
	svc    services.DenunciaService
	parser submissionParser
	logger *zap.Logger
}

// NewDenunciaController recebe o serviço do pipeline e os limites de anexos.
func NewDenunciaController(svc services.DenunciaService, limits config.LimitsConfig, logger *zap.Logger) *DenunciaController {
	return &DenunciaController{
		svc:    svc,
		parser: submissionParser{limits: limits},
		logger: logger.Named("denuncia-controller"),
	}
}

// Register associa as rotas HTTP de denúncias a este controller. Middleware
// extra (rate limit) vale só para a rota de envio.
func (ctr *DenunciaController) Register(g *echo.Group, m ...echo.MiddlewareFunc) {
	g.POST("/denuncia", ctr.CreateDenuncia, m...)
}

// CreateDenuncia trata POST /denuncia com corpo JSON ou multipart/form-data.
func (ctr *DenunciaController) CreateDenuncia(c echo.Context) error {
	sub, err := ctr.parser.parse(c.Request())
	if err != nil {
		return ctr.parseFailure(c, err)
	}

	res, err := ctr.svc.Submit(c.Request().Context(), sub)
	if err == nil {
		return c.JSON(http.StatusOK, DenunciaResponse{Success: true, Message: msgEnviada, ID: res.ID})
	}

	var (
		verr *services.ValidationError
		cerr *services.ConfigurationError
		derr *telegram.DeliveryError
	)
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, DenunciaResponse{Message: msgDadosInvalidos, Errors: verr.Fields})
	case errors.As(err, &cerr):
		ctr.logger.Error("Canal de notificação não configurado", zap.Strings("missing", cerr.Missing))
		return c.JSON(http.StatusInternalServerError, DenunciaResponse{Message: msgConfigAusente})
	case errors.As(err, &derr):
		return c.JSON(http.StatusBadGateway, DenunciaResponse{Message: msgFalhaEnvio})
	default:
		ctr.logger.Error("Falha inesperada no pipeline", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, DenunciaResponse{Message: msgErroInterno})
	}
}

func (ctr *DenunciaController) parseFailure(c echo.Context, err error) error {
	var aerr *attachmentError
	switch {
	case errors.As(err, &aerr):
		return c.JSON(http.StatusBadRequest, DenunciaResponse{
			Message: msgDadosInvalidos,
			Errors:  models.FieldErrors{attachmentField: aerr.msg},
		})
	case isBodyTooLarge(err):
		return c.JSON(http.StatusRequestEntityTooLarge, DenunciaResponse{Message: msgCorpoMuitoGrande})
	case errors.Is(err, errUnsupportedMedia):
		return c.JSON(http.StatusUnsupportedMediaType, DenunciaResponse{Message: msgFormatoInvalido})
	default:
		ctr.logger.Debug("Corpo da denúncia malformado", zap.Error(err))
		return c.JSON(http.StatusBadRequest, DenunciaResponse{Message: msgFormatoInvalido})
	}
}
