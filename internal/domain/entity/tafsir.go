package entity

// TafsirResult is the structured answer from the verse identification and
// explanation lookup: which ayah the input matched and its tafsir.
type TafsirResult struct {
	SurahName   string
	SurahNumber int
	AyahNumber  int
	ArabicText  string
	Tafsir      string
	Confidence  float64
}
