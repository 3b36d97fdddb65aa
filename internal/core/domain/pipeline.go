package domain

import "time"

// AIUsage aggregates model calls made during one pipeline run.
type AIUsage struct {
	Calls         int     `json:"calls"`
	PromptTokens  int     `json:"prompt_tokens"`
	OutputTokens  int     `json:"output_tokens"`
	EstimatedCost float64 `json:"estimated_cost"`
}

func (u *AIUsage) Add(other AIUsage) {
	u.Calls += other.Calls
	u.PromptTokens += other.PromptTokens
	u.OutputTokens += other.OutputTokens
	u.EstimatedCost += other.EstimatedCost
}

type StageTiming struct {
	Stage    Stage         `json:"stage"`
	Duration time.Duration `json:"duration"`
}

type PipelineResult struct {
	DocumentID     string          `json:"document_id"`
	TenantID       string          `json:"tenant_id"`
	RequestedLevel ProcessingLevel `json:"requested_level"`
	Success        bool            `json:"success"`
	CompletedSteps []Stage         `json:"completed_steps"`
	FailedSteps    []Stage         `json:"failed_steps,omitempty"`
	Error          string          `json:"error,omitempty"`

	Extraction     *ExtractionResult     `json:"extraction,omitempty"`
	Classification *ClassificationResult `json:"classification,omitempty"`
	Fields         ExtractedFields       `json:"-"`
	Validation     *ValidationResult     `json:"validation,omitempty"`
	ChunkCount     int                   `json:"chunk_count,omitempty"`

	Usage    AIUsage       `json:"usage"`
	Timings  []StageTiming `json:"timings"`
	Duration time.Duration `json:"duration"`
}

func (r *PipelineResult) completed(stage Stage) bool {
	for _, s := range r.CompletedSteps {
		if s == stage {
			return true
		}
	}
	return false
}

// Reached reports whether every stage up to level completed.
func (r *PipelineResult) Reached(level ProcessingLevel) bool {
	for l := LevelExtraction; l <= level; l++ {
		if !r.completed(StageForLevel(l)) {
			return false
		}
	}
	return true
}

// NewAIUsage records one model call priced at costPer1K per thousand tokens.
func NewAIUsage(promptTokens, outputTokens int, costPer1K float64) AIUsage {
	return AIUsage{
		Calls:         1,
		PromptTokens:  promptTokens,
		OutputTokens:  outputTokens,
		EstimatedCost: float64(promptTokens+outputTokens) / 1000 * costPer1K,
	}
}
