package models

import "fmt"

// TipoDenuncia é o conjunto fechado de categorias de denúncia.
type TipoDenuncia string

const (
	TipoPorte    TipoDenuncia = "porte"
	TipoTrafico  TipoDenuncia = "trafico"
	TipoAmeaca   TipoDenuncia = "ameaca"
	TipoDisparos TipoDenuncia = "disparos"
	TipoOutros   TipoDenuncia = "outros"
)

// Tipos lista as categorias na ordem de exibição.
var Tipos = []TipoDenuncia{TipoPorte, TipoTrafico, TipoAmeaca, TipoDisparos, TipoOutros}

// ParseTipo devolve a categoria de s, ou false quando s não pertence ao conjunto.
func ParseTipo(s string) (TipoDenuncia, bool) {
	switch t := TipoDenuncia(s); t {
	case TipoPorte, TipoTrafico, TipoAmeaca, TipoDisparos, TipoOutros:
		return t, true
	}
	return "", false
}

// Label devolve o nome legível da categoria.
func (t TipoDenuncia) Label() (string, error) {
	switch t {
	case TipoPorte:
		return "Porte ilegal de arma", nil
	case TipoTrafico:
		return "Tráfico de drogas", nil
	case TipoAmeaca:
		return "Ameaças de facção", nil
	case TipoDisparos:
		return "Disparos de arma de fogo", nil
	case TipoOutros:
		return "Outros", nil
	}
	return "", fmt.Errorf("tipo de denúncia desconhecido: %q", string(t))
}

// Urgencia é o conjunto fechado de níveis de urgência.
type Urgencia string

const (
	UrgenciaBaixa Urgencia = "baixa"
	UrgenciaMedia Urgencia = "media"
	UrgenciaAlta  Urgencia = "alta"
)

// Urgencias lista os níveis do mais ao menos urgente.
var Urgencias = []Urgencia{UrgenciaAlta, UrgenciaMedia, UrgenciaBaixa}

// ParseUrgencia devolve a urgência de s, ou false quando s não pertence ao conjunto.
func ParseUrgencia(s string) (Urgencia, bool) {
	switch u := Urgencia(s); u {
	case UrgenciaBaixa, UrgenciaMedia, UrgenciaAlta:
		return u, true
	}
	return "", false
}

// Label devolve o rótulo de exibição do nível de urgência.
func (u Urgencia) Label() (string, error) {
	switch u {
	case UrgenciaBaixa:
		return "BAIXA URGÊNCIA", nil
	case UrgenciaMedia:
		return "MÉDIA URGÊNCIA", nil
	case UrgenciaAlta:
		return "ALTA URGÊNCIA", nil
	}
	return "", fmt.Errorf("nível de urgência desconhecido: %q", string(u))
}

// Labels guarda os rótulos resolvidos de uma denúncia.
type Labels struct {
	Tipo     string
	Urgencia string
}

// ResolveLabels busca os dois rótulos e falha em variante desconhecida.
func ResolveLabels(d *Denuncia) (Labels, error) {
	tipo, err := d.Tipo.Label()
	if err != nil {
		return Labels{}, err
	}
	urg, err := d.Urgencia.Label()
	if err != nil {
		return Labels{}, err
	}
	return Labels{Tipo: tipo, Urgencia: urg}, nil
}
