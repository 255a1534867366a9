package handler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeComment(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantContent string
		wantOK      bool
	}{
		{name: "普通评论", raw: "  很好看  ", wantContent: "很好看", wantOK: true},
		{name: "空内容", raw: "", wantOK: false},
		{name: "纯空白", raw: "   \n\t ", wantOK: false},
		{name: "1000个英文字符", raw: strings.Repeat("a", 1000), wantContent: strings.Repeat("a", 1000), wantOK: true},
		{name: "1001个英文字符", raw: strings.Repeat("a", 1001), wantOK: false},
		// 400 个汉字是 1200 字节，但只有 400 个字符，必须放行
		{name: "400个汉字", raw: strings.Repeat("评", 400), wantContent: strings.Repeat("评", 400), wantOK: true},
		{name: "1000个汉字", raw: strings.Repeat("评", 1000), wantContent: strings.Repeat("评", 1000), wantOK: true},
		{name: "1001个汉字", raw: strings.Repeat("评", 1001), wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, ok := normalizeComment(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantContent, content)
			}
		})
	}
}
