package domain

// ActaFields are the fields of community meeting minutes.
type ActaFields struct {
	DocumentDate     *string  `json:"document_date,omitempty"`
	PresidentIn      *string  `json:"president_in,omitempty"`
	Administrator    *string  `json:"administrator,omitempty"`
	Summary          *string  `json:"summary,omitempty"`
	CommunityName    *string  `json:"community_name,omitempty"`
	MeetingType      *string  `json:"meeting_type,omitempty"`
	Location         *string  `json:"location,omitempty"`
	StartTime        *string  `json:"start_time,omitempty"`
	EndTime          *string  `json:"end_time,omitempty"`
	Secretary        *string  `json:"secretary,omitempty"`
	AttendeesCount   *float64 `json:"attendees_count,omitempty"`
	RepresentedCount *float64 `json:"represented_count,omitempty"`
	QuorumReached    *bool    `json:"quorum_reached,omitempty"`
	AgendaItems      []string `json:"agenda_items,omitempty"`
	Agreements       []string `json:"agreements,omitempty"`
	Decisions        []string `json:"decisions,omitempty"`
	NextMeetingDate  *string  `json:"next_meeting_date,omitempty"`

	TopicPresupuesto    *bool `json:"topic_presupuesto,omitempty"`
	TopicMantenimiento  *bool `json:"topic_mantenimiento,omitempty"`
	TopicAdministracion *bool `json:"topic_administracion,omitempty"`
	TopicPiscina        *bool `json:"topic_piscina,omitempty"`
	TopicJardin         *bool `json:"topic_jardin,omitempty"`
	TopicLimpieza       *bool `json:"topic_limpieza,omitempty"`
	TopicBalance        *bool `json:"topic_balance,omitempty"`
	TopicPaqueteria     *bool `json:"topic_paqueteria,omitempty"`
	TopicEnergia        *bool `json:"topic_energia,omitempty"`
	TopicNormativa      *bool `json:"topic_normativa,omitempty"`
	TopicProveedor      *bool `json:"topic_proveedor,omitempty"`
	TopicDinero         *bool `json:"topic_dinero,omitempty"`
	TopicAscensor       *bool `json:"topic_ascensor,omitempty"`
	TopicIncendios      *bool `json:"topic_incendios,omitempty"`
	TopicPorteria       *bool `json:"topic_porteria,omitempty"`
}

func (*ActaFields) DocumentType() DocumentType { return TypeActa }
func (f *ActaFields) Fields() map[string]any { return fieldMap(f) }
func (*ActaFields) sealed() {}

// FacturaFields are the fields of an invoice.
type FacturaFields struct {
	ProviderName       *string    `json:"provider_name,omitempty"`
	ClientName         *string    `json:"client_name,omitempty"`
	Amount             *float64   `json:"amount,omitempty"`
	InvoiceDate        *string    `json:"invoice_date,omitempty"`
	InvoiceNumber      *string    `json:"invoice_number,omitempty"`
	ProviderCIF        *string    `json:"provider_cif,omitempty"`
	ClientCIF          *string    `json:"client_cif,omitempty"`
	ProviderAddress    *string    `json:"provider_address,omitempty"`
	ClientAddress      *string    `json:"client_address,omitempty"`
	Subtotal           *float64   `json:"subtotal,omitempty"`
	TaxRate            *float64   `json:"tax_rate,omitempty"`
	TaxAmount          *float64   `json:"tax_amount,omitempty"`
	Currency           *string    `json:"currency,omitempty"`
	DueDate            *string    `json:"due_date,omitempty"`
	PaymentMethod      *string    `json:"payment_method,omitempty"`
	BankAccount        *string    `json:"bank_account,omitempty"`
	Concept            *string    `json:"concept,omitempty"`
	ServicePeriodStart *string    `json:"service_period_start,omitempty"`
	ServicePeriodEnd   *string    `json:"service_period_end,omitempty"`
	Items              []LineItem `json:"items,omitempty"`
	ItemsCount         *float64   `json:"items_count,omitempty"`
	Category           *string    `json:"category,omitempty"`
	Notes              *string    `json:"notes,omitempty"`
}

func (*FacturaFields) DocumentType() DocumentType { return TypeFactura }
func (f *FacturaFields) Fields() map[string]any { return fieldMap(f) }
func (*FacturaFields) sealed() {}

// ComunicadoFields are the fields of a notice to owners.
type ComunicadoFields struct {
	DocumentDate       *string  `json:"document_date,omitempty"`
	Subject            *string  `json:"subject,omitempty"`
	Summary            *string  `json:"summary,omitempty"`
	Sender             *string  `json:"sender,omitempty"`
	Recipient          *string  `json:"recipient,omitempty"`
	CommunityName      *string  `json:"community_name,omitempty"`
	Urgency            *string  `json:"urgency,omitempty"`
	Category           *string  `json:"category,omitempty"`
	ActionRequired     *bool    `json:"action_required,omitempty"`
	Deadline           *string  `json:"deadline,omitempty"`
	EventDate          *string  `json:"event_date,omitempty"`
	Location           *string  `json:"location,omitempty"`
	ContactPerson      *string  `json:"contact_person,omitempty"`
	ContactPhone       *string  `json:"contact_phone,omitempty"`
	ContactEmail       *string  `json:"contact_email,omitempty"`
	ReferenceNumber    *string  `json:"reference_number,omitempty"`
	AffectedAreas      []string `json:"affected_areas,omitempty"`
	TopicMantenimiento *bool    `json:"topic_mantenimiento,omitempty"`
	TopicLimpieza      *bool    `json:"topic_limpieza,omitempty"`
	TopicSeguridad     *bool    `json:"topic_seguridad,omitempty"`
	TopicObras         *bool    `json:"topic_obras,omitempty"`
	TopicJunta         *bool    `json:"topic_junta,omitempty"`
	TopicNormativa     *bool    `json:"topic_normativa,omitempty"`
}

func (*ComunicadoFields) DocumentType() DocumentType { return TypeComunicado }
func (f *ComunicadoFields) Fields() map[string]any { return fieldMap(f) }
func (*ComunicadoFields) sealed() {}

// ContratoFields are the fields of a service or supply contract.
type ContratoFields struct {
	TipoContrato         *string        `json:"tipo_contrato,omitempty"`
	ParteA               *string        `json:"parte_a,omitempty"`
	ParteB               *string        `json:"parte_b,omitempty"`
	FechaInicio          *string        `json:"fecha_inicio,omitempty"`
	Titulo               *string        `json:"titulo,omitempty"`
	FechaFin             *string        `json:"fecha_fin,omitempty"`
	FechaFirma           *string        `json:"fecha_firma,omitempty"`
	Objeto               *string        `json:"objeto,omitempty"`
	Importe              *float64       `json:"importe,omitempty"`
	Moneda               *string        `json:"moneda,omitempty"`
	DuracionMeses        *float64       `json:"duracion_meses,omitempty"`
	RenovacionAutomatica *bool          `json:"renovacion_automatica,omitempty"`
	PreavisoDias         *float64       `json:"preaviso_dias,omitempty"`
	FormaPago            *string        `json:"forma_pago,omitempty"`
	PeriodicidadPago     *string        `json:"periodicidad_pago,omitempty"`
	CIFParteA            *string        `json:"cif_parte_a,omitempty"`
	CIFParteB            *string        `json:"cif_parte_b,omitempty"`
	Penalizaciones       map[string]any `json:"penalizaciones,omitempty"`
	Garantias            *string        `json:"garantias,omitempty"`
	Jurisdiccion         *string        `json:"jurisdiccion,omitempty"`
	Firmantes            []string       `json:"firmantes,omitempty"`
	ClausulasPrincipales []string       `json:"clausulas_principales,omitempty"`
	Resumen              *string        `json:"resumen,omitempty"`
}

func (*ContratoFields) DocumentType() DocumentType { return TypeContrato }
func (f *ContratoFields) Fields() map[string]any { return fieldMap(f) }
func (*ContratoFields) sealed() {}

// EscrituraFields are the fields of a notarial deed.
type EscrituraFields struct {
	Notario                  *string  `json:"notario,omitempty"`
	FechaEscritura           *string  `json:"fecha_escritura,omitempty"`
	TipoEscritura            *string  `json:"tipo_escritura,omitempty"`
	Otorgantes               []string `json:"otorgantes,omitempty"`
	NumeroProtocolo          *string  `json:"numero_protocolo,omitempty"`
	InmuebleDireccion        *string  `json:"inmueble_direccion,omitempty"`
	ReferenciaCatastral      *string  `json:"referencia_catastral,omitempty"`
	RegistroPropiedad        *string  `json:"registro_propiedad,omitempty"`
	FincaRegistral           *string  `json:"finca_registral,omitempty"`
	FechaInscripcion         *string  `json:"fecha_inscripcion,omitempty"`
	SuperficieM2             *float64 `json:"superficie_m2,omitempty"`
	Valor                    *float64 `json:"valor,omitempty"`
	Moneda                   *string  `json:"moneda,omitempty"`
	CoeficienteParticipacion *float64 `json:"coeficiente_participacion,omitempty"`
	Cargas                   *string  `json:"cargas,omitempty"`
	Municipio                *string  `json:"municipio,omitempty"`
	Provincia                *string  `json:"provincia,omitempty"`
	Resumen                  *string  `json:"resumen,omitempty"`
}

func (*EscrituraFields) DocumentType() DocumentType { return TypeEscritura }
func (f *EscrituraFields) Fields() map[string]any { return fieldMap(f) }
func (*EscrituraFields) sealed() {}

// AlbaranFields are the fields of a delivery note.
type AlbaranFields struct {
	SupplierName         *string    `json:"supplier_name,omitempty"`
	DeliveryDate         *string    `json:"delivery_date,omitempty"`
	DeliveryNoteNumber   *string    `json:"delivery_note_number,omitempty"`
	CustomerName         *string    `json:"customer_name,omitempty"`
	OrderNumber          *string    `json:"order_number,omitempty"`
	DeliveryAddress      *string    `json:"delivery_address,omitempty"`
	Carrier              *string    `json:"carrier,omitempty"`
	ReceivedBy           *string    `json:"received_by,omitempty"`
	SignaturePresent     *bool      `json:"signature_present,omitempty"`
	Items                []LineItem `json:"items,omitempty"`
	ItemsCount           *float64   `json:"items_count,omitempty"`
	TotalPackages        *float64   `json:"total_packages,omitempty"`
	TotalAmount          *float64   `json:"total_amount,omitempty"`
	Currency             *string    `json:"currency,omitempty"`
	RelatedInvoiceNumber *string    `json:"related_invoice_number,omitempty"`
	Observations         *string    `json:"observations,omitempty"`
}

func (*AlbaranFields) DocumentType() DocumentType { return TypeAlbaran }
func (f *AlbaranFields) Fields() map[string]any { return fieldMap(f) }
func (*AlbaranFields) sealed() {}

// PresupuestoFields are the fields of a supplier budget or quote.
type PresupuestoFields struct {
	ProviderName  *string    `json:"provider_name,omitempty"`
	ClientName    *string    `json:"client_name,omitempty"`
	BudgetDate    *string    `json:"budget_date,omitempty"`
	TotalAmount   *float64   `json:"total_amount,omitempty"`
	BudgetNumber  *string    `json:"budget_number,omitempty"`
	ValidUntil    *string    `json:"valid_until,omitempty"`
	ProviderCIF   *string    `json:"provider_cif,omitempty"`
	Subtotal      *float64   `json:"subtotal,omitempty"`
	TaxRate       *float64   `json:"tax_rate,omitempty"`
	TaxAmount     *float64   `json:"tax_amount,omitempty"`
	Currency      *string    `json:"currency,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Items         []LineItem `json:"items,omitempty"`
	ItemsCount    *float64   `json:"items_count,omitempty"`
	ExecutionTime *string    `json:"execution_time,omitempty"`
	PaymentTerms  *string    `json:"payment_terms,omitempty"`
	Warranty      *string    `json:"warranty,omitempty"`
	ContactPhone  *string    `json:"contact_phone,omitempty"`
	ContactEmail  *string    `json:"contact_email,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

func (*PresupuestoFields) DocumentType() DocumentType { return TypePresupuesto }
func (f *PresupuestoFields) Fields() map[string]any { return fieldMap(f) }
func (*PresupuestoFields) sealed() {}
