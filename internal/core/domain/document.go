package domain

import "time"

type StageStatus string

const (
	StagePending    StageStatus = "pending"
	StageProcessing StageStatus = "processing"
	StageCompleted  StageStatus = "completed"
	StageFailed     StageStatus = "failed"
)

// ProcessingLevel is the depth of the pipeline requested for a document.
type ProcessingLevel int

const (
	LevelExtraction     ProcessingLevel = 1
	LevelClassification ProcessingLevel = 2
	LevelMetadata       ProcessingLevel = 3
	LevelSegmentation   ProcessingLevel = 4
)

func (l ProcessingLevel) Valid() bool {
	return l >= LevelExtraction && l <= LevelSegmentation
}

// Stage names one pipeline step; it is also the key of per-stage status fields.
type Stage string

const (
	StageExtraction     Stage = "extraction"
	StageClassification Stage = "classification"
	StageMetadata       Stage = "metadata"
	StageChunking       Stage = "chunking"
)

// StageForLevel maps a processing level to the stage that runs at it.
func StageForLevel(level ProcessingLevel) Stage {
	switch level {
	case LevelExtraction:
		return StageExtraction
	case LevelClassification:
		return StageClassification
	case LevelMetadata:
		return StageMetadata
	case LevelSegmentation:
		return StageChunking
	default:
		return ""
	}
}

type Document struct {
	ID              string          `json:"id"`
	TenantID        string          `json:"tenant_id"`
	Filename        string          `json:"filename"`
	SizeBytes       int64           `json:"size_bytes"`
	ContentHash     string          `json:"content_hash"`
	MimeType        string          `json:"mime_type"`
	StoragePath     string          `json:"storage_path"`
	ProcessingLevel ProcessingLevel `json:"processing_level"`

	ExtractionStatus     StageStatus `json:"extraction_status"`
	ClassificationStatus StageStatus `json:"classification_status"`
	MetadataStatus       StageStatus `json:"metadata_status"`
	ChunkingStatus       StageStatus `json:"chunking_status"`

	ExtractionMethod         ExtractionMethod     `json:"extraction_method,omitempty"`
	ExtractionConfidence     float64              `json:"extraction_confidence,omitempty"`
	PageCount                int                  `json:"page_count,omitempty"`
	DocumentType             DocumentType         `json:"document_type,omitempty"`
	ClassificationConfidence float64              `json:"classification_confidence,omitempty"`
	ClassificationMethod     ClassificationMethod `json:"classification_method,omitempty"`

	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StageStatus returns the status of the given stage.
func (d *Document) StageStatus(stage Stage) StageStatus {
	switch stage {
	case StageExtraction:
		return d.ExtractionStatus
	case StageClassification:
		return d.ClassificationStatus
	case StageMetadata:
		return d.MetadataStatus
	case StageChunking:
		return d.ChunkingStatus
	default:
		return ""
	}
}

// SetStageStatus mutates the status field of the given stage in place.
func (d *Document) SetStageStatus(stage Stage, status StageStatus) {
	switch stage {
	case StageExtraction:
		d.ExtractionStatus = status
	case StageClassification:
		d.ClassificationStatus = status
	case StageMetadata:
		d.MetadataStatus = status
	case StageChunking:
		d.ChunkingStatus = status
	}
}

// Chunk is one persisted segment of a document's extracted text.
type Chunk struct {
	DocumentID string `json:"document_id"`
	TenantID   string `json:"tenant_id"`
	Index      int    `json:"index"`
	Text       string `json:"text"`
}
