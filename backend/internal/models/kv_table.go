package models

// HashField é uma linha da tabela que emula um hash chave/campo/valor
// nos backends SQL.
type HashField struct {
	Key   string `gorm:"column:hash_key;primaryKey;size:191" json:"hash_key"`
	Field string `gorm:"column:field;primaryKey;size:191" json:"field"`
	Value string `gorm:"column:value;type:text;not null" json:"value"`
}

func (HashField) TableName() string {
	return "kv_hash_fields"
}

// SortedSetMember é uma linha do índice ordenado por score.
type SortedSetMember struct {
	SetKey string  `gorm:"column:set_key;primaryKey;size:191;index:idx_set_score,priority:1" json:"set_key"`
	Member string  `gorm:"column:member;primaryKey;size:191" json:"member"`
	Score  float64 `gorm:"column:score;not null;index:idx_set_score,priority:2" json:"score"`
}

func (SortedSetMember) TableName() string {
	return "kv_sorted_set_members"
}
