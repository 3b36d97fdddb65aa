package metadata

import "github.com/kirillkom/fincadocs/internal/core/domain"

var comunicadoTopics = []string{"mantenimiento", "limpieza", "seguridad", "obras", "junta", "normativa"}

var comunicadoSpec = typeSpec{
	docType: domain.TypeComunicado,
	intro:   "Eres un asistente que analiza comunicados y circulares dirigidos a los vecinos de una comunidad.",
	keys: append([]promptKey{
		{"document_date", "fecha del comunicado (YYYY-MM-DD)"},
		{"subject", "asunto"},
		{"summary", "resumen del contenido"},
		{"sender", "remitente"},
		{"recipient", "destinatarios"},
		{"community_name", "nombre de la comunidad"},
		{"urgency", `"baja", "media", "alta" o "urgente"`},
		{"category", "categoría"},
		{"action_required", "true/false si se pide hacer algo a los vecinos"},
		{"deadline", "fecha límite (YYYY-MM-DD)"},
		{"event_date", "fecha del evento anunciado (YYYY-MM-DD)"},
		{"location", "lugar"},
		{"contact_person", "persona de contacto"},
		{"contact_phone", "teléfono de contacto"},
		{"contact_email", "email de contacto"},
		{"reference_number", "referencia"},
		{"affected_areas", "lista de zonas afectadas"},
	}, topicKeys(comunicadoTopics...)...),
	aliases: mergeAliases(topicAliases(comunicadoTopics...), map[string]string{
		"fecha":        "document_date",
		"asunto":       "subject",
		"resumen":      "summary",
		"remitente":    "sender",
		"destinatario": "recipient",
		"urgencia":     "urgency",
		"fecha_limite": "deadline",
	}),
	convert: convertComunicado,
}

func convertComunicado(raw map[string]any) domain.ExtractedFields {
	return &domain.ComunicadoFields{
		DocumentDate:       Date(raw["document_date"]),
		Subject:            String(raw["subject"], shortText),
		Summary:            String(raw["summary"], longText),
		Sender:             String(raw["sender"], 200),
		Recipient:          String(raw["recipient"], 200),
		CommunityName:      String(raw["community_name"], shortText),
		Urgency:            Keyword(raw["urgency"]),
		Category:           Keyword(raw["category"]),
		ActionRequired:     Bool(raw["action_required"]),
		Deadline:           Date(raw["deadline"]),
		EventDate:          Date(raw["event_date"]),
		Location:           String(raw["location"], shortText),
		ContactPerson:      String(raw["contact_person"], 200),
		ContactPhone:       String(raw["contact_phone"], 30),
		ContactEmail:       String(raw["contact_email"], 200),
		ReferenceNumber:    String(raw["reference_number"], 100),
		AffectedAreas:      StringList(raw["affected_areas"], maxList),
		TopicMantenimiento: Bool(raw["topic_mantenimiento"]),
		TopicLimpieza:      Bool(raw["topic_limpieza"]),
		TopicSeguridad:     Bool(raw["topic_seguridad"]),
		TopicObras:         Bool(raw["topic_obras"]),
		TopicJunta:         Bool(raw["topic_junta"]),
		TopicNormativa:     Bool(raw["topic_normativa"]),
	}
}
