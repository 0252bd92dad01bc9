package auth

import (
	"strings"

	"github.com/dmitrijs2005/lessonbook/internal/common"
)

// ExtractBearer strips an optional "Bearer " scheme from an authorization
// value. The scheme is matched case-insensitively; a bare token is returned
// as is. A scheme without a token yields "".
func ExtractBearer(header string) string {
	header = strings.TrimSpace(header)
	if strings.EqualFold(header, common.BearerScheme) {
		return ""
	}
	prefix := common.BearerScheme + " "
	if len(header) >= len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return header
}
