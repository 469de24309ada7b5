package youtube

import "strings"

var regionLanguages = map[string]string{
	"JP": "ja", "KR": "ko", "CN": "zh-Hans", "TH": "th", "VN": "vi",
	"SG": "en", "ID": "id", "AE": "ar", "TR": "tr", "SA": "ar",
	"MA": "ar", "FR": "fr", "IT": "it", "ES": "es", "GB": "en",
	"CZ": "cs", "NL": "nl", "US": "en", "MX": "es", "BR": "pt",
	"ZA": "en", "KE": "en", "AU": "en",
}

// LanguageForRegion maps a region code onto the relevanceLanguage sent with searches.
func LanguageForRegion(regionCode string) string {
	if lang, ok := regionLanguages[strings.ToUpper(regionCode)]; ok {
		return lang
	}
	return "en"
}
