package analyzing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/commerce-insights-api/internal/domain"
)

func invoiceWithData(total string, data map[string]interface{}) *domain.Invoice {
	return &domain.Invoice{
		InvoiceID:   "INV-001",
		AmountTotal: decimal.RequireFromString(total),
		Data:        data,
	}
}

func catalogFixture() map[int]*domain.Product {
	electronics := &domain.Category{ID: 1, Name: "Electrónica"}
	return map[int]*domain.Product{
		10: {
			ID:       10,
			Name:     "Auriculares",
			Price:    decimal.RequireFromString("45.00"),
			Category: electronics,
		},
		11: {
			ID:    11,
			Name:  "Lámpara",
			Price: decimal.RequireFromString("30.00"),
		},
	}
}

func TestExpandInvoiceComItensDeCarrinho(t *testing.T) {
	invoice := invoiceWithData("120.00", map[string]interface{}{
		"metadata": map[string]interface{}{
			"items": `[{"product_id":10,"quantity":2},{"product_id":11,"quantity":1}]`,
		},
		"lines": map[string]interface{}{
			"data": []interface{}{
				map[string]interface{}{"amount_total": float64(9000)},
				map[string]interface{}{"amount_total": float64(3000)},
			},
		},
	})

	lines := ExpandInvoice(invoice, catalogFixture())

	assert.Len(t, lines, 2)

	assert.Equal(t, "Auriculares", lines[0].ProductLabel)
	assert.Equal(t, "Electrónica", lines[0].CategoryLabel)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.True(t, lines[0].Amount.Equal(decimal.RequireFromString("90")))

	// Produto sem categoria no catálogo cai no sentinela.
	assert.Equal(t, "Lámpara", lines[1].ProductLabel)
	assert.Equal(t, domain.LabelUncategorized, lines[1].CategoryLabel)
	assert.True(t, lines[1].Amount.Equal(decimal.RequireFromString("30")))
}

func TestExpandInvoiceItemSemLinhaBrutaUsaPrecoDoCatalogo(t *testing.T) {
	// Dois itens de carrinho, uma única linha bruta: o excedente é
	// resolvido por preço de catálogo vezes quantidade.
	invoice := invoiceWithData("165.00", map[string]interface{}{
		"metadata": map[string]interface{}{
			"items": `[{"product_id":10,"quantity":1},{"product_id":11,"quantity":4}]`,
		},
		"lines": map[string]interface{}{
			"data": []interface{}{
				map[string]interface{}{"amount_total": float64(4500)},
			},
		},
	})

	lines := ExpandInvoice(invoice, catalogFixture())

	assert.Len(t, lines, 2)
	assert.True(t, lines[0].Amount.Equal(decimal.RequireFromString("45")))
	assert.True(t, lines[1].Amount.Equal(decimal.RequireFromString("120")), "4 x 30.00 do catálogo")
}

func TestExpandInvoiceSemCarrinhoUsaLinhasBrutas(t *testing.T) {
	invoice := invoiceWithData("80.00", map[string]interface{}{
		"lines": map[string]interface{}{
			"data": []interface{}{
				map[string]interface{}{
					"description":  "Taza artesanal",
					"category":     "Hogar",
					"quantity":     float64(2),
					"amount_total": float64(5000),
				},
				map[string]interface{}{
					"price": map[string]interface{}{
						"product_data": map[string]interface{}{"name": "Posavasos"},
					},
					"amount": float64(30),
				},
			},
		},
	})

	lines := ExpandInvoice(invoice, nil)

	assert.Len(t, lines, 2)
	assert.Equal(t, "Taza artesanal", lines[0].ProductLabel)
	assert.Equal(t, "Hogar", lines[0].CategoryLabel)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.True(t, lines[0].Amount.Equal(decimal.RequireFromString("50")))

	assert.Equal(t, "Posavasos", lines[1].ProductLabel)
	assert.Equal(t, domain.LabelUncategorized, lines[1].CategoryLabel)
	// Quantidade ausente assume 1.
	assert.Equal(t, 1, lines[1].Quantity)
	assert.True(t, lines[1].Amount.Equal(decimal.RequireFromString("30")))
}

func TestRawLineAmountZerosCedemAVezAoProximoCampo(t *testing.T) {
	tests := []struct {
		name     string
		line     map[string]interface{}
		expected interface{}
	}{
		{
			name:     "total zerado cai no amount",
			line:     map[string]interface{}{"amount_total": float64(0), "amount": float64(500)},
			expected: float64(500),
		},
		{
			name:     "total e subtotal zerados caem no amount",
			line:     map[string]interface{}{"amount_total": float64(0), "amount_subtotal": 0, "amount": float64(30)},
			expected: float64(30),
		},
		{
			name:     "string vazia cai no subtotal",
			line:     map[string]interface{}{"amount_total": "", "amount_subtotal": float64(1200)},
			expected: float64(1200),
		},
		{
			name:     "string com zero segue valendo",
			line:     map[string]interface{}{"amount_total": "0", "amount": float64(999)},
			expected: "0",
		},
		{
			name:     "tudo zerado devolve nil",
			line:     map[string]interface{}{"amount_total": float64(0), "amount": 0},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, rawLineAmount(tt.line))
		})
	}
}

func TestExpandInvoiceLinhaComTotalZeradoUsaAmount(t *testing.T) {
	invoice := invoiceWithData("25.00", map[string]interface{}{
		"lines": map[string]interface{}{
			"data": []interface{}{
				map[string]interface{}{
					"description":  "Cupón aplicado",
					"amount_total": float64(0),
					"amount":       float64(2500),
				},
			},
		},
	})

	lines := ExpandInvoice(invoice, nil)

	assert.Len(t, lines, 1)
	assert.True(t, lines[0].Amount.Equal(decimal.RequireFromString("25")), "2500 centavos normalizados")
}

func TestExpandInvoicePayloadVazioViraVentaGeneral(t *testing.T) {
	tests := []struct {
		name string
		data map[string]interface{}
	}{
		{name: "Data nulo", data: nil},
		{name: "Data sem lines nem metadata", data: map[string]interface{}{"foo": "bar"}},
		{
			name: "metadata.items malformado é ignorado em silêncio",
			data: map[string]interface{}{
				"metadata": map[string]interface{}{"items": "{not json"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoice := invoiceWithData("250.00", tt.data)
			lines := ExpandInvoice(invoice, nil)

			assert.Len(t, lines, 1)
			assert.Equal(t, domain.LabelGeneralSale, lines[0].ProductLabel)
			assert.Equal(t, domain.LabelUncategorized, lines[0].CategoryLabel)
			assert.Equal(t, 1, lines[0].Quantity)
			assert.True(t, lines[0].Amount.Equal(invoice.AmountTotal))
		})
	}
}

func TestCollectProductIDs(t *testing.T) {
	first := invoiceWithData("10.00", map[string]interface{}{
		"metadata": map[string]interface{}{
			"items": `[{"product_id":10,"quantity":1},{"product_id":11,"quantity":1}]`,
		},
	})
	second := invoiceWithData("20.00", map[string]interface{}{
		"metadata": map[string]interface{}{
			"items": `[{"product_id":10,"quantity":3},{"product_id":0,"quantity":1}]`,
		},
	})
	third := invoiceWithData("30.00", nil)

	ids := CollectProductIDs([]*domain.Invoice{first, second, third})

	// Deduplicado, sem ids zerados, na ordem de primeira aparição.
	assert.Equal(t, []int{10, 11}, ids)
}
