package reporting

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vfg2006/commerce-insights-api/internal/domain"
)

// Meses em espanhol aceitos no padrão "mes de <nome>". "setiembre" é a
// grafia alternativa comum no Rio da Prata.
var spanishMonths = map[string]time.Month{
	"enero":      time.January,
	"febrero":    time.February,
	"marzo":      time.March,
	"abril":      time.April,
	"mayo":       time.May,
	"junio":      time.June,
	"julio":      time.July,
	"agosto":     time.August,
	"septiembre": time.September,
	"setiembre":  time.September,
	"octubre":    time.October,
	"noviembre":  time.November,
	"diciembre":  time.December,
}

var (
	datePattern      = regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`)
	monthNamePattern = regexp.MustCompile(`mes de ([a-záéíóú]+)`)
)

// keywordRule associa um conjunto de palavras-chave a um valor. As regras de
// cada campo são avaliadas em ordem: a primeira que casa vence.
type keywordRule struct {
	keywords []string
	value    string
}

var formatRules = []keywordRule{
	{keywords: []string{"pdf"}, value: domain.FormatPDF},
	{keywords: []string{"excel", "xlsx", "planilla", "hoja de calculo"}, value: domain.FormatExcel},
	{keywords: []string{"pantalla"}, value: domain.FormatScreen},
}

var groupByRules = []keywordRule{
	{keywords: []string{"producto"}, value: domain.GroupByProduct},
	{keywords: []string{"cliente", "usuario"}, value: domain.GroupByCustomer},
	{keywords: []string{"categoria", "categoría"}, value: domain.GroupByCategory},
	{keywords: []string{"mes", "mensual"}, value: domain.GroupByMonth},
}

var countFlagPhrases = []string{
	"cantidad de compras",
	"numero de facturas",
	"número de facturas",
	"cuantas compras",
	"cuántas compras",
}

var dateFlagPhrases = []string{
	"primera compra",
	"ultima compra",
	"última compra",
	"rango de fechas",
	"fechas de compra",
}

var chronologicalPhrases = []string{
	"orden cronologico",
	"orden cronológico",
	"por fecha",
}

// ParsePrompt extrai um pedido estruturado de relatório de um texto livre em
// espanhol. Nunca falha: todo campo sem sinal no texto recebe um default
// documentado (agrupamento mensal, formato pantalla, últimos 30 dias).
// formatOverride, quando não vazio, vence qualquer palavra-chave do texto.
func ParsePrompt(prompt, formatOverride string, now time.Time) domain.ParsedPrompt {
	text := strings.ToLower(strings.TrimSpace(prompt))

	start, end := resolveDates(text, now)

	format := resolveKeyword(text, formatRules, domain.FormatScreen)
	if formatOverride != "" {
		format = normalizeFormat(formatOverride)
	}

	groupBy := resolveKeyword(text, groupByRules, domain.GroupByMonth)

	parsed := domain.ParsedPrompt{
		Prompt:        prompt,
		GroupBy:       groupBy,
		Format:        format,
		StartDate:     start,
		EndDate:       end,
		IncludeCounts: containsAny(text, countFlagPhrases),
		IncludeDates:  containsAny(text, dateFlagPhrases),
	}
	parsed.Chronological = groupBy == domain.GroupByMonth || containsAny(text, chronologicalPhrases)

	return parsed
}

// resolveDates aplica as regras de data em ordem de precedência: par de
// datas explícitas, depois "mes de <nome>", por fim os 30 dias anteriores.
func resolveDates(text string, now time.Time) (time.Time, time.Time) {
	tokens := datePattern.FindAllString(text, 2)
	if len(tokens) == 2 {
		start, okStart := parseDateToken(tokens[0])
		end, okEnd := parseDateToken(tokens[1])
		if okStart && okEnd {
			return start, end
		}
	}

	if match := monthNamePattern.FindStringSubmatch(text); len(match) == 2 {
		if month, ok := spanishMonths[match[1]]; ok {
			start := time.Date(now.Year(), month, 1, 0, 0, 0, 0, time.UTC)
			end := start.AddDate(0, 1, -1)
			return start, end
		}
	}

	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return end.AddDate(0, 0, -30), end
}

// parseDateToken interpreta "dd/mm/aaaa" ou "dd-mm-aa". Anos de dois
// dígitos são assumidos como 2000+.
func parseDateToken(token string) (time.Time, bool) {
	parts := strings.FieldsFunc(token, func(r rune) bool {
		return r == '/' || r == '-'
	})
	if len(parts) != 3 {
		return time.Time{}, false
	}

	day, errDay := strconv.Atoi(parts[0])
	month, errMonth := strconv.Atoi(parts[1])
	year, errYear := strconv.Atoi(parts[2])
	if errDay != nil || errMonth != nil || errYear != nil {
		return time.Time{}, false
	}
	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

func resolveKeyword(text string, rules []keywordRule, fallback string) string {
	for _, rule := range rules {
		for _, keyword := range rule.keywords {
			if strings.Contains(text, keyword) {
				return rule.value
			}
		}
	}
	return fallback
}

func normalizeFormat(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "pdf":
		return domain.FormatPDF
	case "excel", "xlsx":
		return domain.FormatExcel
	default:
		return domain.FormatScreen
	}
}

func containsAny(text string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}
