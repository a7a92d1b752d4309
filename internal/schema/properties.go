package schema

import (
	"strings"

	"github.com/IvanPartsunev/deltacat-cli/internal/catalog"
)

// PropertyOptions carries table property flags.  Nil means not supplied.
type PropertyOptions struct {
	ReadOptimizationLevel               *string
	DefaultCompactionHashBucketCount    *int
	RecordsPerCompactedFile             *int
	AppendedFileCountCompactionTrigger  *int
	AppendedDeltaCountCompactionTrigger *int
	SchemaEvolutionMode                 *string
	DefaultSchemaConsistencyType        *string
}

func (o PropertyOptions) Any() bool {
	return o != PropertyOptions{}
}

// Properties keeps only the supplied values that differ from the baseline,
// which is usually the catalog defaults or the current table properties.
// The appended record count trigger is derived from the records per file and
// bucket count when both are supplied.
func Properties(opts PropertyOptions, baseline catalog.TableProperties) catalog.TableProperties {
	base := catalog.DefaultTableProperties().Merge(baseline)
	properties := catalog.TableProperties{}

	if opts.ReadOptimizationLevel != nil {
		level := catalog.ReadOptimizationLevel(strings.ToUpper(*opts.ReadOptimizationLevel))
		if level != *base.ReadOptimizationLevel {
			properties.ReadOptimizationLevel = &level
		}
	}
	properties.DefaultCompactionHashBucketCount = changed(opts.DefaultCompactionHashBucketCount, base.DefaultCompactionHashBucketCount)
	properties.RecordsPerCompactedFile = changed(opts.RecordsPerCompactedFile, base.RecordsPerCompactedFile)
	properties.AppendedFileCountCompactionTrigger = changed(opts.AppendedFileCountCompactionTrigger, base.AppendedFileCountCompactionTrigger)
	properties.AppendedDeltaCountCompactionTrigger = changed(opts.AppendedDeltaCountCompactionTrigger, base.AppendedDeltaCountCompactionTrigger)

	if opts.RecordsPerCompactedFile != nil && opts.DefaultCompactionHashBucketCount != nil {
		trigger := *opts.RecordsPerCompactedFile * *opts.DefaultCompactionHashBucketCount * 2
		properties.AppendedRecordCountCompactionTrigger = changed(&trigger, base.AppendedRecordCountCompactionTrigger)
	}

	if opts.SchemaEvolutionMode != nil {
		mode := catalog.SchemaEvolutionMode(strings.ToUpper(*opts.SchemaEvolutionMode))
		if mode != *base.SchemaEvolutionMode {
			properties.SchemaEvolutionMode = &mode
		}
	}
	if opts.DefaultSchemaConsistencyType != nil {
		consistency := catalog.SchemaConsistencyType(strings.ToUpper(*opts.DefaultSchemaConsistencyType))
		if consistency != *base.DefaultSchemaConsistencyType {
			properties.DefaultSchemaConsistencyType = &consistency
		}
	}
	return properties
}

func changed(value *int, fallback *int) *int {
	if value == nil || *value == *fallback {
		return nil
	}
	v := *value
	return &v
}
