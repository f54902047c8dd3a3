package respond

import (
	"regexp"
)

// 具体的なパターンから順に適用する
var (
	anthropicKeyPattern = regexp.MustCompile(`sk-ant-[a-zA-Z0-9-_]+`)
	// マスク済み (sk-****) には再マッチしない
	openaiKeyPattern = regexp.MustCompile(`sk-[a-zA-Z0-9]{10,}`)
	// Google API キー (Gemini)
	googleKeyPattern = regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`)
	// Gemini REST は ?key=... で渡すので URL ごとエラーに出ることがある
	keyParamPattern = regexp.MustCompile(`([?&]key=)[^&\s"']+`)
	bearerPattern   = regexp.MustCompile(`(?i)(bearer\s+)[A-Za-z0-9._~+/=-]+`)
)

// SanitizeError は機密情報をマスクしたエラーメッセージを返す
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	msg = anthropicKeyPattern.ReplaceAllString(msg, "sk-ant-****")
	msg = openaiKeyPattern.ReplaceAllString(msg, "sk-****")
	msg = keyParamPattern.ReplaceAllString(msg, "${1}****")
	msg = googleKeyPattern.ReplaceAllString(msg, "AIza****")
	msg = bearerPattern.ReplaceAllString(msg, "${1}****")
	return msg
}
