package metadata

import "github.com/kirillkom/fincadocs/internal/core/domain"

var albaranSpec = typeSpec{
	docType: domain.TypeAlbaran,
	intro:   "Eres un asistente que extrae datos de albaranes de entrega de material a una comunidad.",
	keys: []promptKey{
		{"supplier_name", "proveedor que entrega"},
		{"delivery_date", "fecha de entrega (YYYY-MM-DD)"},
		{"delivery_note_number", "número de albarán"},
		{"customer_name", "cliente"},
		{"order_number", "número de pedido"},
		{"delivery_address", "dirección de entrega"},
		{"carrier", "transportista"},
		{"received_by", "persona que recibe"},
		{"signature_present", "true/false si consta firma de recepción"},
		{"items", `lista de líneas [{"description","quantity","unit_price","amount"}]`},
		{"items_count", "número de líneas"},
		{"total_packages", "número de bultos"},
		{"total_amount", "importe total (número)"},
		{"currency", "código de moneda"},
		{"related_invoice_number", "número de factura relacionada"},
		{"observations", "observaciones"},
	},
	aliases: map[string]string{
		"proveedor":      "supplier_name",
		"fecha_entrega":  "delivery_date",
		"numero_albaran": "delivery_note_number",
		"cliente":        "customer_name",
		"pedido":         "order_number",
		"transportista":  "carrier",
		"bultos":         "total_packages",
		"firma":          "signature_present",
		"observaciones":  "observations",
	},
	convert: convertAlbaran,
}

func convertAlbaran(raw map[string]any) domain.ExtractedFields {
	return &domain.AlbaranFields{
		SupplierName:         String(raw["supplier_name"], shortText),
		DeliveryDate:         Date(raw["delivery_date"]),
		DeliveryNoteNumber:   String(raw["delivery_note_number"], 100),
		CustomerName:         String(raw["customer_name"], shortText),
		OrderNumber:          String(raw["order_number"], 100),
		DeliveryAddress:      String(raw["delivery_address"], 500),
		Carrier:              String(raw["carrier"], 200),
		ReceivedBy:           String(raw["received_by"], 200),
		SignaturePresent:     Bool(raw["signature_present"]),
		Items:                Items(raw["items"]),
		ItemsCount:           Count(raw["items_count"]),
		TotalPackages:        Count(raw["total_packages"]),
		TotalAmount:          Number(raw["total_amount"]),
		Currency:             Upper(raw["currency"], 3),
		RelatedInvoiceNumber: String(raw["related_invoice_number"], 100),
		Observations:         String(raw["observations"], 2000),
	}
}
