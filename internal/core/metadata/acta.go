package metadata

import "github.com/kirillkom/fincadocs/internal/core/domain"

var actaTopics = []string{
	"presupuesto", "mantenimiento", "administracion", "piscina", "jardin", "limpieza", "balance",
	"paqueteria", "energia", "normativa", "proveedor", "dinero", "ascensor", "incendios", "porteria",
}

var actaSpec = typeSpec{
	docType: domain.TypeActa,
	intro:   "Eres un asistente que analiza actas de juntas de comunidades de propietarios en España.",
	keys: append([]promptKey{
		{"document_date", "fecha de la junta (YYYY-MM-DD)"},
		{"president_in", "nombre del presidente"},
		{"administrator", "nombre del administrador de fincas"},
		{"summary", "resumen de lo tratado en al menos dos frases"},
		{"community_name", "nombre de la comunidad"},
		{"meeting_type", `"ordinaria" o "extraordinaria"`},
		{"location", "lugar de celebración"},
		{"start_time", "hora de inicio HH:MM"},
		{"end_time", "hora de fin HH:MM"},
		{"secretary", "nombre del secretario"},
		{"attendees_count", "número de propietarios presentes"},
		{"represented_count", "número de propietarios representados"},
		{"quorum_reached", "true/false"},
		{"agenda_items", "lista de puntos del orden del día"},
		{"agreements", "lista de acuerdos adoptados"},
		{"decisions", "lista de decisiones o votaciones"},
		{"next_meeting_date", "fecha de la próxima junta (YYYY-MM-DD)"},
	}, topicKeys(actaTopics...)...),
	aliases: mergeAliases(topicAliases(actaTopics...), map[string]string{
		"fecha":         "document_date",
		"presidente":    "president_in",
		"president":     "president_in",
		"administrador": "administrator",
		"resumen":       "summary",
		"comunidad":     "community_name",
		"tipo_junta":    "meeting_type",
		"secretario":    "secretary",
		"orden_del_dia": "agenda_items",
		"acuerdos":      "agreements",
		"proxima_junta": "next_meeting_date",
	}),
	convert: convertActa,
}

func convertActa(raw map[string]any) domain.ExtractedFields {
	return &domain.ActaFields{
		DocumentDate:        Date(raw["document_date"]),
		PresidentIn:         String(raw["president_in"], shortText),
		Administrator:       String(raw["administrator"], shortText),
		Summary:             String(raw["summary"], longText),
		CommunityName:       String(raw["community_name"], shortText),
		MeetingType:         Keyword(raw["meeting_type"]),
		Location:            String(raw["location"], shortText),
		StartTime:           String(raw["start_time"], 5),
		EndTime:             String(raw["end_time"], 5),
		Secretary:           String(raw["secretary"], shortText),
		AttendeesCount:      Count(raw["attendees_count"]),
		RepresentedCount:    Count(raw["represented_count"]),
		QuorumReached:       Bool(raw["quorum_reached"]),
		AgendaItems:         StringList(raw["agenda_items"], maxList),
		Agreements:          StringList(raw["agreements"], maxList),
		Decisions:           StringList(raw["decisions"], maxList),
		NextMeetingDate:     Date(raw["next_meeting_date"]),
		TopicPresupuesto:    Bool(raw["topic_presupuesto"]),
		TopicMantenimiento:  Bool(raw["topic_mantenimiento"]),
		TopicAdministracion: Bool(raw["topic_administracion"]),
		TopicPiscina:        Bool(raw["topic_piscina"]),
		TopicJardin:         Bool(raw["topic_jardin"]),
		TopicLimpieza:       Bool(raw["topic_limpieza"]),
		TopicBalance:        Bool(raw["topic_balance"]),
		TopicPaqueteria:     Bool(raw["topic_paqueteria"]),
		TopicEnergia:        Bool(raw["topic_energia"]),
		TopicNormativa:      Bool(raw["topic_normativa"]),
		TopicProveedor:      Bool(raw["topic_proveedor"]),
		TopicDinero:         Bool(raw["topic_dinero"]),
		TopicAscensor:       Bool(raw["topic_ascensor"]),
		TopicIncendios:      Bool(raw["topic_incendios"]),
		TopicPorteria:       Bool(raw["topic_porteria"]),
	}
}
