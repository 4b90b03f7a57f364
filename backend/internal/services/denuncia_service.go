package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/laerciomonteiro/escutasegura/backend/internal/models"
	"github.com/laerciomonteiro/escutasegura/backend/internal/telegram"
)

// PipelineState é a etapa em que uma submissão parou.
type PipelineState string

const (
	StateReceived      PipelineState = "received"
	StateValidated     PipelineState = "validated"
	StateSanitized     PipelineState = "sanitized"
	StatePersisted     PipelineState = "persisted"
	StatePersistFailed PipelineState = "persist_failed"
	StateComplete      PipelineState = "complete"
	StateNotifyFailed  PipelineState = "notify_failed"
	StateRejected      PipelineState = "rejected"
	StateConfigMissing PipelineState = "config_missing"
)

const defaultStoreTimeout = 5 * time.Second

// PersistOutcome é o resultado da gravação do resumo. Uma falha nunca
// interrompe o pipeline; só dispara o alerta de armazenamento.
type PersistOutcome struct {
	Persisted bool
	Err       error
}

// SubmissionResult descreve até onde a submissão chegou.
type SubmissionResult struct {
	ID      string
	State   PipelineState
	Persist PersistOutcome
}

// SummaryStore persiste o registro durável mínimo de uma denúncia.
type SummaryStore interface {
	Store(ctx context.Context, s models.PersistedSummary) error
}

// Notifier entrega mensagens no canal do operador.
type Notifier interface {
	Deliver(ctx context.Context, ch telegram.Channel, n telegram.Notification) error
	SendText(ctx context.Context, ch telegram.Channel, text string) error
}

// Mirror recebe uma cópia em texto simples de cada denúncia entregue.
type Mirror interface {
	Send(ctx context.Context, subject, body string) error
}

// DenunciaService define as operações de negócio relacionadas a denúncias.
type DenunciaService interface {
	// Submit valida, sanitiza, persiste e entrega uma submissão. O erro
	// devolvido é *ValidationError, *ConfigurationError ou
	// *telegram.DeliveryError; o resultado nunca é nil.
	Submit(ctx context.Context, s *models.Submission) (*SubmissionResult, error)
}

// denunciaService é a implementação concreta de DenunciaService.
type denunciaService struct {
	store        SummaryStore
	notifier     Notifier
	formatter    *telegram.Formatter
	channel      telegram.Channel
	mirror       Mirror
	sanitizer    Sanitizer
	storeTimeout time.Duration
	now          func() time.Time
	newID        func(time.Time) string
	logger       *zap.Logger
}

// Option personaliza um DenunciaService.
type Option func(*denunciaService)

// WithClock substitui time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *denunciaService) { s.now = now }
}

// WithIDGenerator substitui GenerateAnonymousID.
func WithIDGenerator(gen func(time.Time) string) Option {
	return func(s *denunciaService) { s.newID = gen }
}

// WithStoreTimeout limita o tempo da gravação do resumo.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *denunciaService) {
		if d > 0 {
			s.storeTimeout = d
		}
	}
}

// WithMirror ativa a cópia por e-mail.
func WithMirror(m Mirror) Option {
	return func(s *denunciaService) { s.mirror = m }
}

// NewDenunciaService monta o pipeline com suas dependências.
func NewDenunciaService(
	store SummaryStore,
	notifier Notifier,
	formatter *telegram.Formatter,
	channel telegram.Channel,
	logger *zap.Logger,
	opts ...Option,
) DenunciaService {
	s := &denunciaService{
		store:        store,
		notifier:     notifier,
		formatter:    formatter,
		channel:      channel,
		storeTimeout: defaultStoreTimeout,
		now:          time.Now,
		newID:        GenerateAnonymousID,
		logger:       logger.Named("denuncia"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *denunciaService) Submit(ctx context.Context, sub *models.Submission) (*SubmissionResult, error) {
	res := &SubmissionResult{State: StateReceived}
	defer func() { pipelineTotal.WithLabelValues(string(res.State)).Inc() }()

	validated, fieldErrs := ValidateSubmission(sub)
	if len(fieldErrs) > 0 {
		res.State = StateRejected
		return res, &ValidationError{Fields: fieldErrs}
	}
	res.State = StateValidated

	d := s.sanitizer.Sanitize(*validated)
	d.CreatedAt = s.now().UTC()
	d.ID = s.newID(d.CreatedAt)
	res.ID = d.ID
	res.State = StateSanitized

	labels, err := models.ResolveLabels(&d)
	if err != nil {
		return res, fmt.Errorf("resolve labels: %w", err)
	}

	res.Persist = s.persist(ctx, &d)
	if res.Persist.Persisted {
		res.State = StatePersisted
	} else {
		res.State = StatePersistFailed
	}

	if !s.channel.Configured() {
		res.State = StateConfigMissing
		return res, &ConfigurationError{Missing: s.missingCredentials()}
	}

	log := s.logger.With(zap.String("id", d.ID), zap.Int("attachments", len(sub.Attachments)))

	n := telegram.Notification{
		ReportID: d.ID,
		Text:     s.formatter.FormatDenuncia(&d, labels),
		Caption:  s.formatter.FormatCaption(&d, labels),
		Photos:   sub.Attachments,
	}
	deliverErr := s.notifier.Deliver(ctx, s.channel, n)

	// o alerta nunca precede a notificação principal
	if !res.Persist.Persisted {
		if err := s.notifier.SendText(ctx, s.channel, s.formatter.FormatStorageAlert(d.ID)); err != nil {
			log.Error("Falha ao enviar alerta de armazenamento", zap.Error(err))
		}
	}

	if s.mirror != nil {
		go s.sendMirror(context.WithoutCancel(ctx), &d, labels)
	}

	if deliverErr != nil {
		res.State = StateNotifyFailed
		log.Error("Falha ao entregar denúncia", zap.Error(deliverErr))
		return res, deliverErr
	}

	res.State = StateComplete
	log.Info("Denúncia entregue", zap.Bool("persisted", res.Persist.Persisted))
	return res, nil
}

func (s *denunciaService) persist(ctx context.Context, d *models.Denuncia) PersistOutcome {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := s.store.Store(ctx, d.Summary()); err != nil {
		storeFailuresTotal.Inc()
		s.logger.Warn("Falha ao persistir resumo da denúncia", zap.String("id", d.ID), zap.Error(err))
		return PersistOutcome{Err: err}
	}
	return PersistOutcome{Persisted: true}
}

func (s *denunciaService) missingCredentials() []string {
	var missing []string
	if s.channel.Token == "" {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	if s.channel.ChatID == "" {
		missing = append(missing, "TELEGRAM_CHAT_ID")
	}
	return missing
}

func (s *denunciaService) sendMirror(ctx context.Context, d *models.Denuncia, labels models.Labels) {
	subject := fmt.Sprintf("Nova denúncia anônima %s (%s)", d.ID, labels.Urgencia)
	if err := s.mirror.Send(ctx, subject, PlainText(d, labels)); err != nil {
		mirrorFailuresTotal.Inc()
		s.logger.Warn("Falha ao enviar cópia por e-mail", zap.String("id", d.ID), zap.Error(err))
	}
}
