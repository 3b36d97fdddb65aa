package metadata

import "github.com/kirillkom/fincadocs/internal/core/domain"

var facturaSpec = typeSpec{
	docType: domain.TypeFactura,
	intro:   "Eres un asistente que extrae datos de facturas emitidas a comunidades de propietarios.",
	keys: []promptKey{
		{"provider_name", "razón social del emisor"},
		{"client_name", "nombre del cliente o comunidad"},
		{"amount", "importe total con impuestos (número)"},
		{"invoice_date", "fecha de emisión (YYYY-MM-DD)"},
		{"invoice_number", "número de factura"},
		{"provider_cif", "CIF/NIF del emisor"},
		{"client_cif", "CIF/NIF del cliente"},
		{"provider_address", "dirección del emisor"},
		{"client_address", "dirección del cliente"},
		{"subtotal", "base imponible (número)"},
		{"tax_rate", "porcentaje de IVA (número)"},
		{"tax_amount", "cuota de IVA (número)"},
		{"currency", "código de moneda, p. ej. EUR"},
		{"due_date", "fecha de vencimiento (YYYY-MM-DD)"},
		{"payment_method", "forma de pago"},
		{"bank_account", "IBAN de cobro"},
		{"concept", "concepto facturado"},
		{"service_period_start", "inicio del periodo facturado (YYYY-MM-DD)"},
		{"service_period_end", "fin del periodo facturado (YYYY-MM-DD)"},
		{"items", `lista de líneas [{"description","quantity","unit_price","amount"}]`},
		{"items_count", "número de líneas"},
		{"category", "categoría del gasto, p. ej. limpieza, mantenimiento, suministros"},
		{"notes", "observaciones"},
	},
	aliases: map[string]string{
		"proveedor":      "provider_name",
		"emisor":         "provider_name",
		"cliente":        "client_name",
		"total":          "amount",
		"importe":        "amount",
		"fecha":          "invoice_date",
		"fecha_factura":  "invoice_date",
		"numero_factura": "invoice_number",
		"base_imponible": "subtotal",
		"iva":            "tax_amount",
		"iban":           "bank_account",
		"lineas":         "items",
	},
	convert: convertFactura,
}

func convertFactura(raw map[string]any) domain.ExtractedFields {
	return &domain.FacturaFields{
		ProviderName:       String(raw["provider_name"], shortText),
		ClientName:         String(raw["client_name"], shortText),
		Amount:             Number(raw["amount"]),
		InvoiceDate:        Date(raw["invoice_date"]),
		InvoiceNumber:      String(raw["invoice_number"], 100),
		ProviderCIF:        Upper(raw["provider_cif"], 20),
		ClientCIF:          Upper(raw["client_cif"], 20),
		ProviderAddress:    String(raw["provider_address"], 500),
		ClientAddress:      String(raw["client_address"], 500),
		Subtotal:           Number(raw["subtotal"]),
		TaxRate:            Number(raw["tax_rate"]),
		TaxAmount:          Number(raw["tax_amount"]),
		Currency:           Upper(raw["currency"], 3),
		DueDate:            Date(raw["due_date"]),
		PaymentMethod:      String(raw["payment_method"], 100),
		BankAccount:        Upper(raw["bank_account"], 40),
		Concept:            String(raw["concept"], 1000),
		ServicePeriodStart: Date(raw["service_period_start"]),
		ServicePeriodEnd:   Date(raw["service_period_end"]),
		Items:              Items(raw["items"]),
		ItemsCount:         Count(raw["items_count"]),
		Category:           Keyword(raw["category"]),
		Notes:              String(raw["notes"], 2000),
	}
}
