package metadata

import "github.com/kirillkom/fincadocs/internal/core/domain"

var presupuestoSpec = typeSpec{
	docType: domain.TypePresupuesto,
	intro:   "Eres un asistente que extrae datos de presupuestos de proveedores para comunidades de propietarios.",
	keys: []promptKey{
		{"provider_name", "empresa que presupuesta"},
		{"client_name", "cliente o comunidad"},
		{"budget_date", "fecha del presupuesto (YYYY-MM-DD)"},
		{"total_amount", "importe total con impuestos (número)"},
		{"budget_number", "número de presupuesto"},
		{"valid_until", "validez hasta (YYYY-MM-DD)"},
		{"provider_cif", "CIF/NIF del proveedor"},
		{"subtotal", "base imponible (número)"},
		{"tax_rate", "porcentaje de IVA (número)"},
		{"tax_amount", "cuota de IVA (número)"},
		{"currency", "código de moneda"},
		{"description", "descripción de los trabajos"},
		{"items", `lista de partidas [{"description","quantity","unit_price","amount"}]`},
		{"items_count", "número de partidas"},
		{"execution_time", "plazo de ejecución"},
		{"payment_terms", "condiciones de pago"},
		{"warranty", "garantía"},
		{"contact_phone", "teléfono de contacto"},
		{"contact_email", "email de contacto"},
		{"notes", "observaciones"},
	},
	aliases: map[string]string{
		"proveedor":          "provider_name",
		"cliente":            "client_name",
		"fecha":              "budget_date",
		"total":              "total_amount",
		"importe":            "total_amount",
		"numero_presupuesto": "budget_number",
		"validez":            "valid_until",
		"partidas":           "items",
		"plazo":              "execution_time",
		"garantia":           "warranty",
	},
	convert: convertPresupuesto,
}

func convertPresupuesto(raw map[string]any) domain.ExtractedFields {
	return &domain.PresupuestoFields{
		ProviderName:  String(raw["provider_name"], shortText),
		ClientName:    String(raw["client_name"], shortText),
		BudgetDate:    Date(raw["budget_date"]),
		TotalAmount:   Number(raw["total_amount"]),
		BudgetNumber:  String(raw["budget_number"], 100),
		ValidUntil:    Date(raw["valid_until"]),
		ProviderCIF:   Upper(raw["provider_cif"], 20),
		Subtotal:      Number(raw["subtotal"]),
		TaxRate:       Number(raw["tax_rate"]),
		TaxAmount:     Number(raw["tax_amount"]),
		Currency:      Upper(raw["currency"], 3),
		Description:   String(raw["description"], longText),
		Items:         Items(raw["items"]),
		ItemsCount:    Count(raw["items_count"]),
		ExecutionTime: String(raw["execution_time"], 200),
		PaymentTerms:  String(raw["payment_terms"], 500),
		Warranty:      String(raw["warranty"], 500),
		ContactPhone:  String(raw["contact_phone"], 30),
		ContactEmail:  String(raw["contact_email"], 200),
		Notes:         String(raw["notes"], 2000),
	}
}
