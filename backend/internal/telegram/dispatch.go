package telegram

import (
	"context"

	"github.com/laerciomonteiro/escutasegura/backend/internal/models"
)

// Notification reúne o necessário para entregar uma denúncia.
type Notification struct {
	ReportID string
	// Text é enviado sempre que não houver exatamente uma foto.
	Text string
	// Caption substitui Text quando a denúncia traz uma única foto.
	Caption string
	Photos  []models.Attachment
}

// Deliver envia n conforme o número de fotos:
//   - sem fotos: só o texto;
//   - uma foto: a foto com legenda n.Caption;
//   - mais: o texto e depois um media group com legendas "Photo i (ID: id)".
//
// As chamadas são sequenciais e a primeira falha é devolvida como está.
func (c *Client) Deliver(ctx context.Context, ch Channel, n Notification) error {
	switch len(n.Photos) {
	case 0:
		return c.SendText(ctx, ch, n.Text)
	case 1:
		caption := n.Caption
		if caption == "" {
			caption = n.Text
		}
		return c.SendPhoto(ctx, ch, caption, n.Photos[0])
	}

	if err := c.SendText(ctx, ch, n.Text); err != nil {
		return err
	}
	captions := make([]string, len(n.Photos))
	for i := range n.Photos {
		captions[i] = PhotoCaption(i+1, n.ReportID)
	}
	return c.SendMediaGroup(ctx, ch, captions, n.Photos)
}
