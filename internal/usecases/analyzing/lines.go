package analyzing

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/vfg2006/commerce-insights-api/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// LineEntry é um item do carrinho extraído de metadata.items, pareado
// posicionalmente com a linha bruta correspondente de lines.data.
type LineEntry struct {
	ProductID int
	Quantity  int
	// Amount é nil quando a linha bruta pareada não existe: o valor é
	// resolvido depois via preço do catálogo ou linha de fallback.
	Amount   *decimal.Decimal
	Fallback map[string]interface{}
}

// ExpandedLine é uma linha de fatura totalmente resolvida contra o catálogo.
type ExpandedLine struct {
	ProductID     int
	ProductLabel  string
	CategoryLabel string
	Quantity      int
	Amount        decimal.Decimal
}

// ExtractLineItems lê o payload estruturado da fatura e devolve os itens do
// carrinho (metadata.items) e as linhas brutas (lines.data). Payloads
// malformados nunca geram erro: campos ausentes viram listas vazias.
func ExtractLineItems(invoice *domain.Invoice) ([]LineEntry, []map[string]interface{}) {
	rawLines := extractRawLines(invoice)
	cartItems := extractCartItems(invoice)

	items := make([]LineEntry, 0, len(cartItems))
	for index, item := range cartItems {
		entry := LineEntry{
			ProductID: toInt(item["product_id"]),
			Quantity:  toInt(item["quantity"]),
		}
		// Pareamento posicional limitado pela lista mais curta: itens
		// excedentes seguem sem valor e caem no caminho de fallback.
		if index < len(rawLines) {
			amount := NormalizeAmount(rawLineAmount(rawLines[index]))
			entry.Amount = &amount
			entry.Fallback = rawLines[index]
		}
		items = append(items, entry)
	}

	return items, rawLines
}

// ResolveLines aplica as três camadas de extração da fatura:
//  1. itens do carrinho pareados com linhas brutas, resolvidos pelo catálogo;
//  2. sem itens de carrinho, cada linha bruta vira uma entrada própria;
//  3. sem nada, uma única entrada "Venta general" cobrindo o total da fatura.
func ResolveLines(
	invoice *domain.Invoice,
	items []LineEntry,
	rawLines []map[string]interface{},
	products map[int]*domain.Product,
) []ExpandedLine {
	if len(items) == 0 && len(rawLines) > 0 {
		expanded := make([]ExpandedLine, 0, len(rawLines))
		for _, line := range rawLines {
			expanded = append(expanded, resolveRawLine(line))
		}
		return expanded
	}

	if len(items) == 0 {
		return []ExpandedLine{{
			ProductLabel:  domain.LabelGeneralSale,
			CategoryLabel: domain.LabelUncategorized,
			Quantity:      1,
			Amount:        invoice.AmountTotal,
		}}
	}

	expanded := make([]ExpandedLine, 0, len(items))
	for index, item := range items {
		fallback := item.Fallback
		if fallback == nil && index < len(rawLines) {
			fallback = rawLines[index]
		}
		expanded = append(expanded, resolveCartItem(item, fallback, products))
	}
	return expanded
}

// ExpandInvoice é o atalho extração+resolução usado pelos agregadores.
func ExpandInvoice(invoice *domain.Invoice, products map[int]*domain.Product) []ExpandedLine {
	items, rawLines := ExtractLineItems(invoice)
	return ResolveLines(invoice, items, rawLines, products)
}

// CollectProductIDs junta os ids de produto referenciados pelos payloads,
// para montar o índice do catálogo em uma única consulta.
func CollectProductIDs(invoices []*domain.Invoice) []int {
	seen := make(map[int]struct{})
	ids := make([]int, 0)
	for _, invoice := range invoices {
		items, _ := ExtractLineItems(invoice)
		for _, item := range items {
			if item.ProductID == 0 {
				continue
			}
			if _, ok := seen[item.ProductID]; !ok {
				seen[item.ProductID] = struct{}{}
				ids = append(ids, item.ProductID)
			}
		}
	}
	return ids
}

func resolveCartItem(item LineEntry, fallback map[string]interface{}, products map[int]*domain.Product) ExpandedLine {
	line := ExpandedLine{
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
	}

	product := products[item.ProductID]
	if product != nil {
		line.ProductLabel = product.Name
		line.CategoryLabel = product.CategoryLabel()
		if item.Amount != nil {
			line.Amount = *item.Amount
		} else {
			line.Amount = product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		}
		return line
	}

	line.ProductLabel = rawLineDescription(fallback, domain.LabelUnlinkedProduct)
	line.CategoryLabel = rawLineCategory(fallback)
	if item.Amount != nil {
		line.Amount = *item.Amount
	} else if fallback != nil {
		line.Amount = NormalizeAmount(rawLineAmount(fallback))
	}
	return line
}

func resolveRawLine(line map[string]interface{}) ExpandedLine {
	quantity := toInt(line["quantity"])
	if quantity == 0 {
		quantity = 1
	}

	return ExpandedLine{
		ProductLabel:  rawLineDescription(line, domain.LabelUnnamedProduct),
		CategoryLabel: rawLineCategory(line),
		Quantity:      quantity,
		Amount:        NormalizeAmount(rawLineAmount(line)),
	}
}

func extractRawLines(invoice *domain.Invoice) []map[string]interface{} {
	if invoice.Data == nil {
		return nil
	}

	linesField, ok := invoice.Data["lines"].(map[string]interface{})
	if !ok {
		return nil
	}

	data, ok := linesField["data"].([]interface{})
	if !ok {
		return nil
	}

	rawLines := make([]map[string]interface{}, 0, len(data))
	for _, entry := range data {
		if line, ok := entry.(map[string]interface{}); ok {
			rawLines = append(rawLines, line)
		}
	}
	return rawLines
}

func extractCartItems(invoice *domain.Invoice) []map[string]interface{} {
	if invoice.Data == nil {
		return nil
	}

	metadata, ok := invoice.Data["metadata"].(map[string]interface{})
	if !ok {
		return nil
	}

	// metadata.items chega como string JSON (limitação do gateway de
	// pagamento, que só aceita pares chave/valor string em metadata).
	itemsPayload, ok := metadata["items"].(string)
	if !ok || itemsPayload == "" {
		return nil
	}

	var cartItems []map[string]interface{}
	if err := json.Unmarshal([]byte(itemsPayload), &cartItems); err != nil {
		return nil
	}
	return cartItems
}

// rawLineAmount devolve o primeiro campo de valor aproveitável na linha
// bruta, preferindo o total ao subtotal e ao valor simples. Zeros numéricos
// e strings vazias cedem a vez ao próximo campo: gateways preenchem
// amount_total com 0 em linhas de desconto e deixam o valor real em amount.
func rawLineAmount(line map[string]interface{}) interface{} {
	if line == nil {
		return nil
	}
	for _, key := range []string{"amount_total", "amount_subtotal", "amount"} {
		value, ok := line[key]
		if !ok || value == nil || isZeroAmount(value) {
			continue
		}
		return value
	}
	return nil
}

func isZeroAmount(value interface{}) bool {
	switch v := value.(type) {
	case float64:
		return v == 0
	case float32:
		return v == 0
	case int:
		return v == 0
	case int64:
		return v == 0
	case string:
		return v == ""
	default:
		return false
	}
}

func rawLineDescription(line map[string]interface{}, fallback string) string {
	if line == nil {
		return fallback
	}

	if description, ok := line["description"].(string); ok && description != "" {
		return description
	}

	// Formato alternativo: lines.data[].price.product_data.name
	if price, ok := line["price"].(map[string]interface{}); ok {
		if productData, ok := price["product_data"].(map[string]interface{}); ok {
			if name, ok := productData["name"].(string); ok && name != "" {
				return name
			}
		}
	}

	return fallback
}

func rawLineCategory(line map[string]interface{}) string {
	if line == nil {
		return domain.LabelUncategorized
	}
	if category, ok := line["category"].(string); ok && category != "" {
		return category
	}
	return domain.LabelUncategorized
}

func toInt(value interface{}) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		parsed, err := decimal.NewFromString(v)
		if err != nil {
			return 0
		}
		return int(parsed.IntPart())
	default:
		return 0
	}
}
