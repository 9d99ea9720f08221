package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecord(t *testing.T) {
	p := RecordParser{}

	node, ok := p.Parse("f&~&12&~&en-US:Widget|ko-KR:위젯", 0, "")
	require.True(t, ok)
	assert.Equal(t, KindFolder, node.Kind)
	assert.Equal(t, "12", node.BackendID)
	assert.Equal(t, "f_12", node.UniqueID)
	assert.Equal(t, "Widget", node.DisplayName)

	node, ok = p.Parse("p&~&7&~&ko-KR:위젯", 2, "")
	require.True(t, ok)
	assert.Equal(t, KindProject, node.Kind)
	assert.Equal(t, "p_7", node.UniqueID)
	assert.Equal(t, "위젯", node.DisplayName)
	assert.Equal(t, 2, node.Depth)

	node, ok = p.Parse("c&~&99&~&xx-XX:Foo", 1, KindTool)
	require.True(t, ok)
	assert.Equal(t, KindTool, node.Kind)
	assert.Equal(t, "part_99", node.UniqueID)
	assert.Equal(t, "Foo", node.DisplayName)

	node, ok = p.Parse("x&~&3&~&Bare", 0, "")
	require.True(t, ok)
	assert.Equal(t, KindPart, node.Kind)
	assert.Equal(t, "Bare", node.DisplayName)
}

func TestParseRecordTooFewSegments(t *testing.T) {
	p := RecordParser{}
	for _, raw := range []string{"", "f", "f&~&12", "f|12|name"} {
		_, ok := p.Parse(raw, 0, "")
		assert.False(t, ok, raw)
	}
}

func TestResolveDisplayName(t *testing.T) {
	tests := []struct {
		name string
		blob string
		want string
	}{
		{"prefers en-US", "ko-KR:위젯|en-US:Widget", "Widget"},
		{"falls back to ko-KR", "de-DE:Teil|ko-KR:부품", "부품"},
		{"first entry text", "de-DE:Teil|fr-FR:Pièce", "Teil"},
		{"no colon", "Plain name", "Plain name"},
		{"only first colon splits", "en-US:Ratio 1:2", "Ratio 1:2"},
		{"leading colon uses whole entry", "en-US::odd", "en-US::odd"},
		{"leading colon on ko-KR", "ko-KR::x|zz", "ko-KR::x"},
		{"leading colon in fallback", "de-DE::Teil", ""},
		{"empty preferred text", "en-US:", "en-US:"},
		{"empty fallback text", "de-DE:", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveDisplayName(tt.blob, DefaultNameLocales...))
		})
	}
}

func TestNewRecordParserPutsLocaleFirst(t *testing.T) {
	p := NewRecordParser("ko-KR")
	assert.Equal(t, []string{"ko-KR", "en-US"}, p.Locales)

	node, ok := p.Parse("f&~&1&~&en-US:Widget|ko-KR:위젯", 0, "")
	require.True(t, ok)
	assert.Equal(t, "위젯", node.DisplayName)

	assert.Equal(t, []string{"de-DE", "en-US", "ko-KR"}, NewRecordParser("de-DE").Locales)
	assert.Equal(t, DefaultNameLocales, NewRecordParser("").Locales)
}

func TestParseAllSkipsMalformed(t *testing.T) {
	nodes := RecordParser{}.ParseAll([]string{
		"f&~&1&~&en-US:A",
		"broken",
		"p&~&2&~&en-US:B",
	}, 1, KindPart, nil)
	require.Len(t, nodes, 2)
	assert.Equal(t, "f_1", nodes[0].UniqueID)
	assert.Equal(t, "p_2", nodes[1].UniqueID)
}
