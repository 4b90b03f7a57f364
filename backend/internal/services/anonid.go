package services

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const (
	idSuffixLen = 6
	base36      = "0123456789abcdefghijklmnopqrstuvwxyz"
)

var base36Len = big.NewInt(int64(len(base36)))

// GenerateAnonymousID devolve o identificador público de uma denúncia: o
// timestamp em milissegundos na base 36 seguido de um sufixo aleatório curto,
// em maiúsculas. Colisões não são verificadas; dois IDs no mesmo milissegundo
// dividem o prefixo e dependem só do sufixo.
func GenerateAnonymousID(now time.Time) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 36))
	for range idSuffixLen {
		n, err := rand.Int(rand.Reader, base36Len)
		if err != nil {
			// crypto/rand só falha se o SO não fornecer entropia.
			panic(err)
		}
		b.WriteByte(base36[n.Int64()])
	}
	return strings.ToUpper(b.String())
}
