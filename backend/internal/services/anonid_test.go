package services

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var idPattern = regexp.MustCompile(`^[0-9A-Z]+$`)

func TestGenerateAnonymousID_Format(t *testing.T) {
	now := time.Date(2025, 6, 2, 13, 5, 0, 0, time.UTC)

	id := GenerateAnonymousID(now)

	prefix := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	assert.True(t, strings.HasPrefix(id, prefix))
	assert.Len(t, id, len(prefix)+idSuffixLen)
	assert.Regexp(t, idPattern, id)
}

func TestGenerateAnonymousID_Unique(t *testing.T) {
	const n = 10000
	start := time.Now()
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		// dez IDs por milissegundo, bem acima do ritmo real de denúncias
		id := GenerateAnonymousID(start.Add(time.Duration(i/10) * time.Millisecond))
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}
