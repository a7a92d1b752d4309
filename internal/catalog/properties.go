package catalog

import "fmt"

type ReadOptimizationLevel string

const (
	ReadOptimizationNone     ReadOptimizationLevel = "NONE"
	ReadOptimizationModerate ReadOptimizationLevel = "MODERATE"
	ReadOptimizationMax      ReadOptimizationLevel = "MAX"
)

type SchemaEvolutionMode string

const (
	SchemaEvolutionManual   SchemaEvolutionMode = "MANUAL"
	SchemaEvolutionAuto     SchemaEvolutionMode = "AUTO"
	SchemaEvolutionDisabled SchemaEvolutionMode = "DISABLED"
)

type SchemaConsistencyType string

const (
	SchemaConsistencyNone     SchemaConsistencyType = "NONE"
	SchemaConsistencyCoerce   SchemaConsistencyType = "COERCE"
	SchemaConsistencyValidate SchemaConsistencyType = "VALIDATE"
)

var (
	ReadOptimizationLevels = []string{"NONE", "MODERATE", "MAX"}
	SchemaEvolutionModes   = []string{"MANUAL", "AUTO", "DISABLED"}
	SchemaConsistencyTypes = []string{"NONE", "COERCE", "VALIDATE"}
)

const (
	DefaultCompactionHashBucketCount          = 8
	DefaultRecordsPerCompactedFile            = 4_000_000
	DefaultAppendedFileCountCompactionTrigger = 1000
	DefaultAppendedDeltaCountTrigger          = 100
)

// TableProperties holds the compaction and schema settings of a table.  A
// nil field means the value was not supplied; stored tables always carry
// every field.
type TableProperties struct {
	ReadOptimizationLevel                *ReadOptimizationLevel `json:"read_optimization_level,omitempty"`
	DefaultCompactionHashBucketCount     *int                   `json:"default_compaction_hash_bucket_count,omitempty"`
	RecordsPerCompactedFile              *int                   `json:"records_per_compacted_file,omitempty"`
	AppendedRecordCountCompactionTrigger *int                   `json:"appended_record_count_compaction_trigger,omitempty"`
	AppendedFileCountCompactionTrigger   *int                   `json:"appended_file_count_compaction_trigger,omitempty"`
	AppendedDeltaCountCompactionTrigger  *int                   `json:"appended_delta_count_compaction_trigger,omitempty"`
	SchemaEvolutionMode                  *SchemaEvolutionMode   `json:"schema_evolution_mode,omitempty"`
	DefaultSchemaConsistencyType         *SchemaConsistencyType `json:"default_schema_consistency_type,omitempty"`
}

func ptr[T any](v T) *T {
	return &v
}

func DefaultTableProperties() TableProperties {
	return TableProperties{
		ReadOptimizationLevel:                ptr(ReadOptimizationMax),
		DefaultCompactionHashBucketCount:     ptr(DefaultCompactionHashBucketCount),
		RecordsPerCompactedFile:              ptr(DefaultRecordsPerCompactedFile),
		AppendedRecordCountCompactionTrigger: ptr(DefaultRecordsPerCompactedFile * DefaultCompactionHashBucketCount * 2),
		AppendedFileCountCompactionTrigger:   ptr(DefaultAppendedFileCountCompactionTrigger),
		AppendedDeltaCountCompactionTrigger:  ptr(DefaultAppendedDeltaCountTrigger),
		SchemaEvolutionMode:                  ptr(SchemaEvolutionAuto),
		DefaultSchemaConsistencyType:         ptr(SchemaConsistencyNone),
	}
}

func (p TableProperties) IsEmpty() bool {
	return p == TableProperties{}
}

// Merge returns a copy of p with every non-nil field of overrides applied.
func (p TableProperties) Merge(overrides TableProperties) TableProperties {
	merged := p
	if overrides.ReadOptimizationLevel != nil {
		merged.ReadOptimizationLevel = ptr(*overrides.ReadOptimizationLevel)
	}
	if overrides.DefaultCompactionHashBucketCount != nil {
		merged.DefaultCompactionHashBucketCount = ptr(*overrides.DefaultCompactionHashBucketCount)
	}
	if overrides.RecordsPerCompactedFile != nil {
		merged.RecordsPerCompactedFile = ptr(*overrides.RecordsPerCompactedFile)
	}
	if overrides.AppendedRecordCountCompactionTrigger != nil {
		merged.AppendedRecordCountCompactionTrigger = ptr(*overrides.AppendedRecordCountCompactionTrigger)
	}
	if overrides.AppendedFileCountCompactionTrigger != nil {
		merged.AppendedFileCountCompactionTrigger = ptr(*overrides.AppendedFileCountCompactionTrigger)
	}
	if overrides.AppendedDeltaCountCompactionTrigger != nil {
		merged.AppendedDeltaCountCompactionTrigger = ptr(*overrides.AppendedDeltaCountCompactionTrigger)
	}
	if overrides.SchemaEvolutionMode != nil {
		merged.SchemaEvolutionMode = ptr(*overrides.SchemaEvolutionMode)
	}
	if overrides.DefaultSchemaConsistencyType != nil {
		merged.DefaultSchemaConsistencyType = ptr(*overrides.DefaultSchemaConsistencyType)
	}
	return merged
}

func (p TableProperties) Validate() error {
	positive := map[string]*int{
		"default_compaction_hash_bucket_count":     p.DefaultCompactionHashBucketCount,
		"records_per_compacted_file":               p.RecordsPerCompactedFile,
		"appended_record_count_compaction_trigger": p.AppendedRecordCountCompactionTrigger,
		"appended_file_count_compaction_trigger":   p.AppendedFileCountCompactionTrigger,
		"appended_delta_count_compaction_trigger":  p.AppendedDeltaCountCompactionTrigger,
	}
	for name, value := range positive {
		if value != nil && *value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, *value)
		}
	}
	if p.ReadOptimizationLevel != nil && !oneOf(string(*p.ReadOptimizationLevel), ReadOptimizationLevels) {
		return fmt.Errorf("invalid read_optimization_level %q", *p.ReadOptimizationLevel)
	}
	if p.SchemaEvolutionMode != nil && !oneOf(string(*p.SchemaEvolutionMode), SchemaEvolutionModes) {
		return fmt.Errorf("invalid schema_evolution_mode %q", *p.SchemaEvolutionMode)
	}
	if p.DefaultSchemaConsistencyType != nil && !oneOf(string(*p.DefaultSchemaConsistencyType), SchemaConsistencyTypes) {
		return fmt.Errorf("invalid default_schema_consistency_type %q", *p.DefaultSchemaConsistencyType)
	}
	return nil
}

func oneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
