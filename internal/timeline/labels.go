package timeline

import (
	"fmt"
	"strings"
)

// Supported display locales.
const (
	LocaleEnglish = "en"
	LocaleChinese = "zh"
)

// Labels holds the localized text used by exports and renderers.
type Labels struct {
	Locale    string
	CSVHeader []string
	severity  map[Severity]string
	dateFmt   [3]string // year only, year+month, year+month+day
}

var labelsByLocale = map[string]Labels{
	LocaleEnglish: {
		Locale:    LocaleEnglish,
		CSVHeader: []string{"Timeline", "Year", "Title", "Severity", "Tags", "Description"},
		severity: map[Severity]string{
			SeverityLow:      "Low",
			SeverityMedium:   "Medium",
			SeverityHigh:     "High",
			SeverityCritical: "Critical",
		},
		dateFmt: [3]string{"'%02d", "'%02d-%02d", "'%02d-%02d-%02d"},
	},
	LocaleChinese: {
		Locale:    LocaleChinese,
		CSVHeader: []string{"时间线名称", "年份", "事件标题", "事件程度", "标签", "描述"},
		severity: map[Severity]string{
			SeverityLow:      "低",
			SeverityMedium:   "中",
			SeverityHigh:     "高",
			SeverityCritical: "关键",
		},
		dateFmt: [3]string{"%d年", "%d年%d月", "%d年%d月%d日"},
	},
}

// Locales lists the supported locale codes.
func Locales() []string {
	return []string{LocaleEnglish, LocaleChinese}
}

// LabelsFor returns the labels for a locale, falling back to English.
func LabelsFor(locale string) Labels {
	if l, ok := labelsByLocale[strings.ToLower(locale)]; ok {
		return l
	}
	return labelsByLocale[LocaleEnglish]
}

// Severity returns the localized severity name. Unknown values read as medium.
func (l Labels) Severity(s Severity) string {
	if name, ok := l.severity[s]; ok {
		return name
	}
	return l.severity[SeverityMedium]
}

// EventDate formats an event date using the two-digit year shown on the scale.
func (l Labels) EventDate(e *Event) string {
	short := e.Year % 100
	switch {
	case e.Month != nil && e.Day != nil:
		return fmt.Sprintf(l.dateFmt[2], short, *e.Month, *e.Day)
	case e.Month != nil:
		return fmt.Sprintf(l.dateFmt[1], short, *e.Month)
	default:
		return fmt.Sprintf(l.dateFmt[0], short)
	}
}
