package metadata

import "github.com/kirillkom/fincadocs/internal/core/domain"

var contratoSpec = typeSpec{
	docType: domain.TypeContrato,
	intro:   "Eres un asistente jurídico que extrae los datos clave de contratos de servicios o suministros de una comunidad de propietarios.",
	keys: []promptKey{
		{"tipo_contrato", "tipo de contrato, p. ej. mantenimiento, limpieza, suministro"},
		{"parte_a", "primera parte contratante"},
		{"parte_b", "segunda parte contratante"},
		{"fecha_inicio", "fecha de inicio (YYYY-MM-DD)"},
		{"titulo", "título del contrato"},
		{"fecha_fin", "fecha de fin (YYYY-MM-DD)"},
		{"fecha_firma", "fecha de firma (YYYY-MM-DD)"},
		{"objeto", "objeto del contrato"},
		{"importe", "importe (número)"},
		{"moneda", "código de moneda"},
		{"duracion_meses", "duración en meses (número)"},
		{"renovacion_automatica", "true/false"},
		{"preaviso_dias", "días de preaviso (número)"},
		{"forma_pago", "forma de pago"},
		{"periodicidad_pago", `"mensual", "trimestral", "semestral", "anual" o "unico"`},
		{"cif_parte_a", "CIF/NIF de la parte A"},
		{"cif_parte_b", "CIF/NIF de la parte B"},
		{"penalizaciones", "objeto {concepto: penalización}"},
		{"garantias", "garantías"},
		{"jurisdiccion", "jurisdicción o tribunales competentes"},
		{"firmantes", "lista de firmantes"},
		{"clausulas_principales", "lista de cláusulas principales"},
		{"resumen", "resumen del contrato"},
	},
	aliases: map[string]string{
		"tipo":         "tipo_contrato",
		"parte-a":      "parte_a",
		"parte-b":      "parte_b",
		"fecha-inicio": "fecha_inicio",
		"fecha-fin":    "fecha_fin",
		"fecha-firma":  "fecha_firma",
		"renovacion":   "renovacion_automatica",
		"clausulas":    "clausulas_principales",
		"periodicidad": "periodicidad_pago",
	},
	convert: convertContrato,
}

func convertContrato(raw map[string]any) domain.ExtractedFields {
	return &domain.ContratoFields{
		TipoContrato:         String(raw["tipo_contrato"], 100),
		ParteA:               String(raw["parte_a"], shortText),
		ParteB:               String(raw["parte_b"], shortText),
		FechaInicio:          Date(raw["fecha_inicio"]),
		Titulo:               String(raw["titulo"], shortText),
		FechaFin:             Date(raw["fecha_fin"]),
		FechaFirma:           Date(raw["fecha_firma"]),
		Objeto:               String(raw["objeto"], 2000),
		Importe:              Number(raw["importe"]),
		Moneda:               Upper(raw["moneda"], 3),
		DuracionMeses:        Number(raw["duracion_meses"]),
		RenovacionAutomatica: Bool(raw["renovacion_automatica"]),
		PreavisoDias:         Count(raw["preaviso_dias"]),
		FormaPago:            String(raw["forma_pago"], 200),
		PeriodicidadPago:     Keyword(raw["periodicidad_pago"]),
		CIFParteA:            Upper(raw["cif_parte_a"], 20),
		CIFParteB:            Upper(raw["cif_parte_b"], 20),
		Penalizaciones:       Object(raw["penalizaciones"]),
		Garantias:            String(raw["garantias"], 1000),
		Jurisdiccion:         String(raw["jurisdiccion"], 200),
		Firmantes:            StringList(raw["firmantes"], maxList),
		ClausulasPrincipales: StringList(raw["clausulas_principales"], maxList),
		Resumen:              String(raw["resumen"], longText),
	}
}
