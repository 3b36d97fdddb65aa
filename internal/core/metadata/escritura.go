package metadata

import "github.com/kirillkom/fincadocs/internal/core/domain"

var escrituraSpec = typeSpec{
	docType: domain.TypeEscritura,
	intro:   "Eres un asistente notarial que extrae los datos de escrituras públicas sobre inmuebles en España.",
	keys: []promptKey{
		{"notario", "nombre del notario"},
		{"fecha_escritura", "fecha de otorgamiento (YYYY-MM-DD)"},
		{"tipo_escritura", "tipo, p. ej. compraventa, división horizontal, hipoteca"},
		{"otorgantes", "lista de otorgantes"},
		{"numero_protocolo", "número de protocolo"},
		{"inmueble_direccion", "dirección del inmueble"},
		{"referencia_catastral", "referencia catastral"},
		{"registro_propiedad", "registro de la propiedad"},
		{"finca_registral", "número de finca registral"},
		{"fecha_inscripcion", "fecha de inscripción registral (YYYY-MM-DD)"},
		{"superficie_m2", "superficie en m2 (número)"},
		{"valor", "valor o precio (número)"},
		{"moneda", "código de moneda"},
		{"coeficiente_participacion", "coeficiente de participación en porcentaje (número)"},
		{"cargas", "cargas y gravámenes"},
		{"municipio", "municipio"},
		{"provincia", "provincia"},
		{"resumen", "resumen de la escritura"},
	},
	aliases: map[string]string{
		"notary":      "notario",
		"fecha":       "fecha_escritura",
		"tipo":        "tipo_escritura",
		"protocolo":   "numero_protocolo",
		"direccion":   "inmueble_direccion",
		"catastro":    "referencia_catastral",
		"superficie":  "superficie_m2",
		"precio":      "valor",
		"coeficiente": "coeficiente_participacion",
	},
	convert: convertEscritura,
}

func convertEscritura(raw map[string]any) domain.ExtractedFields {
	return &domain.EscrituraFields{
		Notario:                  String(raw["notario"], 200),
		FechaEscritura:           Date(raw["fecha_escritura"]),
		TipoEscritura:            String(raw["tipo_escritura"], 200),
		Otorgantes:               StringList(raw["otorgantes"], maxList),
		NumeroProtocolo:          String(raw["numero_protocolo"], 50),
		InmuebleDireccion:        String(raw["inmueble_direccion"], 500),
		ReferenciaCatastral:      Upper(raw["referencia_catastral"], 20),
		RegistroPropiedad:        String(raw["registro_propiedad"], 200),
		FincaRegistral:           String(raw["finca_registral"], 50),
		FechaInscripcion:         Date(raw["fecha_inscripcion"]),
		SuperficieM2:             Number(raw["superficie_m2"]),
		Valor:                    Number(raw["valor"]),
		Moneda:                   Upper(raw["moneda"], 3),
		CoeficienteParticipacion: Number(raw["coeficiente_participacion"]),
		Cargas:                   String(raw["cargas"], 2000),
		Municipio:                String(raw["municipio"], 100),
		Provincia:                String(raw["provincia"], 100),
		Resumen:                  String(raw["resumen"], longText),
	}
}
