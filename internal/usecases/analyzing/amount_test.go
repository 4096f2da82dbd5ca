package analyzing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{
			name:     "Valor acima de 1000 é tratado como centavos",
			input:    float64(150000),
			expected: "1500",
		},
		{
			name:     "Valor abaixo do limiar permanece em unidades maiores",
			input:    float64(150),
			expected: "150",
		},
		{
			name:     "Exatamente 1000 não é dividido",
			input:    int64(1000),
			expected: "1000",
		},
		{
			name:     "Inteiro em centavos",
			input:    int(2550),
			expected: "25.5",
		},
		{
			name:     "String numérica é aceita",
			input:    "430.75",
			expected: "430.75",
		},
		{
			name:     "String não numérica vira zero",
			input:    "abc",
			expected: "0",
		},
		{
			name:     "Nulo vira zero",
			input:    nil,
			expected: "0",
		},
		{
			name:     "Negativo vira zero",
			input:    float64(-42.5),
			expected: "0",
		},
		{
			name:     "Tipo não suportado vira zero",
			input:    []string{"x"},
			expected: "0",
		},
		{
			name:     "Decimal já canônico passa direto",
			input:    decimal.RequireFromString("999.99"),
			expected: "999.99",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeAmount(tt.input)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)),
				"esperado %s, obtido %s", tt.expected, got.String())
		})
	}
}

func TestNormalizeAmountIdempotente(t *testing.T) {
	// Um valor já normalizado abaixo do limiar não muda em nova passada.
	once := NormalizeAmount(float64(125000))
	twice := NormalizeAmount(once)
	assert.True(t, once.Equal(twice))
}
