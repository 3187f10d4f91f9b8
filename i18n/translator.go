package i18n

// Translator retrieves localized messages for Diagnostic codes.
// data provides optional metadata to embed in the message (for example,
// "expected").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_type":
			return "型が不正です"
		case "arity_mismatch":
			return "要素数が一致しません"
		case "parse_error":
			return "解析エラー"
		case "depth_exceeded":
			return "ネストが深すぎます"
		case "union_mismatch":
			return "どの候補型にも一致しません"
		case "truncated":
			return "打ち切られました"
		case "required":
			return "必須フィールドが不足しています"
		case "unknown_field":
			return "未知のフィールドです"
		case "immutable":
			return "変更できません"
		case "arg_count":
			return "引数の数が不正です"
		}
	default: // "en"
		switch code {
		case "invalid_type":
			return "invalid type"
		case "arity_mismatch":
			return "arity mismatch"
		case "parse_error":
			return "parse error"
		case "depth_exceeded":
			return "descriptor nesting too deep"
		case "union_mismatch":
			return "no union alternative matched"
		case "truncated":
			return "truncated"
		case "required":
			return "required field missing"
		case "unknown_field":
			return "unknown field"
		case "immutable":
			return "record is immutable"
		case "arg_count":
			return "wrong number of arguments"
		}
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
