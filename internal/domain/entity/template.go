package entity

// TemplateType distinguishes reward copy from warning copy.
type TemplateType string

const (
	TemplateTypeReward  TemplateType = "reward"
	TemplateTypeWarning TemplateType = "warning"
)

// MessageTemplate is read-only reference data: localized copy keyed by
// (type, threshold bucket). Thresholds are {1, 7, 30} for rewards and
// {1, 3, 5, 7, 30} for warnings.
type MessageTemplate struct {
	ID            int64
	Type          TemplateType
	ThresholdDays int32

	TextEnglish    string
	TextArabic     string
	MessageEnglish string
	MessageArabic  string
}

// Text returns the verse/quote field for the given language.
func (t *MessageTemplate) Text(language string) string {
	if language == LanguageEnglish {
		return t.TextEnglish
	}
	return t.TextArabic
}

// Message returns the explanatory field for the given language.
func (t *MessageTemplate) Message(language string) string {
	if language == LanguageEnglish {
		return t.MessageEnglish
	}
	return t.MessageArabic
}
