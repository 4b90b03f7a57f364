package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/laerciomonteiro/escutasegura/backend/internal/config"
	"github.com/laerciomonteiro/escutasegura/backend/internal/models"
)

const (
	maxJSONBody   = 1 << 20
	maxFieldBytes = 64 << 10
	sniffLen      = 512

	attachmentField = "imagens"
)

var (
	errUnsupportedMedia = errors.New("tipo de conteúdo não suportado")
	errMalformedBody    = errors.New("corpo da requisição inválido")
)

// imageParts são os nomes de campo aceitos para imagens, com ou sem "[]".
var imageParts = map[string]bool{
	"imagens": true, "imagem": true, "fotos": true, "photos": true, "images": true, "files": true,
}

var booleanFields = map[string]bool{"testemunhas": true, "evidencias": true}

// attachmentError é devolvido ao cliente como erro do campo "imagens".
type attachmentError struct{ msg string }

func (e *attachmentError) Error() string { return e.msg }

// submissionParser transforma o corpo da requisição em models.Submission.
// Só confere tipos e limites de anexos; regras de campo ficam no validador.
type submissionParser struct {
	limits config.LimitsConfig
}

func (p submissionParser) parse(r *http.Request) (*models.Submission, error) {
	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, errUnsupportedMedia
	}
	switch mediaType {
	case "application/json":
		return p.parseJSON(http.MaxBytesReader(nil, r.Body, maxJSONBody))
	case "multipart/form-data":
		if params["boundary"] == "" {
			return nil, errMalformedBody
		}
		limit := int64(p.limits.MaxAttachments)*p.limits.MaxAttachmentBytes + maxJSONBody
		body := http.MaxBytesReader(nil, r.Body, limit)
		return p.parseMultipart(r.Context(), multipart.NewReader(body, params["boundary"]))
	}
	return nil, errUnsupportedMedia
}

func (p submissionParser) parseJSON(body io.Reader) (*models.Submission, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", errMalformedBody, err)
	}
	s := &models.Submission{}
	for _, field := range models.SubmissionFields {
		v, ok := raw[field]
		if !ok || string(v) == "null" {
			continue
		}
		if booleanFields[field] {
			var b bool
			if err := json.Unmarshal(v, &b); err != nil {
				s.MarkInvalidType(field)
				continue
			}
			setBool(s, field, b)
			continue
		}
		var str string
		if err := json.Unmarshal(v, &str); err != nil {
			s.MarkInvalidType(field)
			continue
		}
		setString(s, field, str)
	}
	return s, nil
}

func (p submissionParser) parseMultipart(ctx context.Context, mr *multipart.Reader) (*models.Submission, error) {
	s := &models.Submission{}
	var raw []models.Attachment

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errMalformedBody, err)
		}

		name := strings.TrimSuffix(part.FormName(), "[]")
		switch {
		case imageParts[name]:
			a, err := p.readAttachment(part, len(raw))
			part.Close()
			if err != nil {
				return nil, err
			}
			if a != nil {
				raw = append(raw, *a)
			}
		case isSubmissionField(name):
			v, err := io.ReadAll(io.LimitReader(part, maxFieldBytes+1))
			part.Close()
			if err != nil {
				return nil, fmt.Errorf("%w: %w", errMalformedBody, err)
			}
			if len(v) > maxFieldBytes {
				s.MarkInvalidType(name)
				continue
			}
			setFormValue(s, name, string(v))
		default:
			part.Close()
		}
	}

	atts, err := prepareAttachments(ctx, raw)
	if err != nil {
		return nil, err
	}
	s.Attachments = atts
	return s, nil
}

func (p submissionParser) readAttachment(part *multipart.Part, count int) (*models.Attachment, error) {
	data, err := io.ReadAll(io.LimitReader(part, p.limits.MaxAttachmentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errMalformedBody, err)
	}
	if len(data) == 0 {
		// input de arquivo vazio no formulário
		return nil, nil
	}
	if count >= p.limits.MaxAttachments {
		return nil, &attachmentError{fmt.Sprintf("Envie no máximo %d imagens", p.limits.MaxAttachments)}
	}
	if int64(len(data)) > p.limits.MaxAttachmentBytes {
		return nil, &attachmentError{fmt.Sprintf("Cada imagem deve ter no máximo %d MB", p.limits.MaxAttachmentBytes>>20)}
	}
	return &models.Attachment{
		Filename:    part.FileName(),
		ContentType: part.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// prepareAttachments detecta o tipo de cada anexo em paralelo e rejeita o
// que não for imagem. A ordem é preservada.
func prepareAttachments(ctx context.Context, raw []models.Attachment) ([]models.Attachment, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]models.Attachment, len(raw))
	g, _ := errgroup.WithContext(ctx)
	for i, a := range raw {
		g.Go(func() error {
			head := a.Data
			if len(head) > sniffLen {
				head = head[:sniffLen]
			}
			ct := http.DetectContentType(head)
			if !strings.HasPrefix(ct, "image/") {
				return &attachmentError{"Apenas imagens são permitidas"}
			}
			a.ContentType = ct
			if a.Filename == "" {
				a.Filename = fmt.Sprintf("imagem-%d", i+1)
			}
			out[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func isSubmissionField(name string) bool {
	for _, f := range models.SubmissionFields {
		if f == name {
			return true
		}
	}
	return false
}

func setFormValue(s *models.Submission, field, v string) {
	if !booleanFields[field] {
		setString(s, field, v)
		return
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "":
		return
	case "on", "sim":
		setBool(s, field, true)
	case "nao", "não":
		setBool(s, field, false)
	default:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			s.MarkInvalidType(field)
			return
		}
		setBool(s, field, b)
	}
}

func setString(s *models.Submission, field, v string) {
	switch field {
	case "tipo":
		s.Tipo = v
	case "descricao":
		s.Descricao = v
	case "urgencia":
		s.Urgencia = v
	case "local":
		s.Local = &v
	case "data":
		s.Data = &v
	case "contato":
		s.Contato = &v
	}
}

func setBool(s *models.Submission, field string, b bool) {
	switch field {
	case "testemunhas":
		s.Testemunhas = &b
	case "evidencias":
		s.Evidencias = &b
	}
}

// isBodyTooLarge indica se err veio do http.MaxBytesReader.
func isBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
