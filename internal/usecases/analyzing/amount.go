package analyzing

import (
	"github.com/shopspring/decimal"
)

var (
	minorUnitThreshold = decimal.NewFromInt(1000)
	minorUnitDivisor   = decimal.NewFromInt(100)
)

// NormalizeAmount converte representações heterogêneas de valores monetários
// (inteiros em centavos ou decimais em unidades maiores) para um decimal
// canônico não-negativo. Entradas nulas ou não numéricas viram zero: isto é
// limpeza de dados, não validação.
//
// Heurística: valores acima de 1000 são assumidos como centavos e divididos
// por 100. Totais legítimos acima de 1000 em unidades maiores saem com a
// escala errada; risco de qualidade de dados conhecido, mantido por
// compatibilidade com anos de drift de formato nas faturas.
func NormalizeAmount(value interface{}) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}

	var amount decimal.Decimal
	switch v := value.(type) {
	case decimal.Decimal:
		amount = v
	case float64:
		amount = decimal.NewFromFloat(v)
	case float32:
		amount = decimal.NewFromFloat32(v)
	case int:
		amount = decimal.NewFromInt(int64(v))
	case int64:
		amount = decimal.NewFromInt(v)
	case string:
		parsed, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero
		}
		amount = parsed
	default:
		return decimal.Zero
	}

	if amount.IsNegative() {
		return decimal.Zero
	}

	if amount.GreaterThan(minorUnitThreshold) {
		return amount.Div(minorUnitDivisor)
	}

	return amount
}
