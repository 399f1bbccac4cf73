package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"project-manager/core/agol"
	"project-manager/core/utils"

	"go.uber.org/zap"
)

// PartialApplyError reports a failure mid-sequence. Steps listed in
// Committed have already mutated the remote store and are not rolled back;
// the caller must re-fetch current state before retrying.
type PartialApplyError struct {
	Step      string
	Committed []string
	Err       error
}

func (e *PartialApplyError) Error() string {
	if len(e.Committed) == 0 {
		return fmt.Sprintf("reconcile: step %s failed, nothing committed: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("reconcile: step %s failed after committing %s: %v",
		e.Step, strings.Join(e.Committed, ", "), e.Err)
}

func (e *PartialApplyError) Unwrap() error {
	return e.Err
}

// IsPartialApply returns true if the error left the remote store in a
// possibly partially-reconciled state.
func IsPartialApply(err error) bool {
	var partial *PartialApplyError
	return errors.As(err, &partial)
}

// Engine reconciles edited domain tables against the remote store through
// the feature service client.
type Engine struct {
	client agol.Client
	logger *zap.Logger
}

// NewEngine creates a reconciliation engine.
func NewEngine(client agol.Client, logger *zap.Logger) *Engine {
	return &Engine{client: client, logger: logger}
}

// FetchCurrent queries the remote domain value records for one field.
func (e *Engine) FetchCurrent(ctx context.Context, layerURL, fieldName string) ([]DomainValue, error) {
	result, err := e.client.Query(ctx, layerURL, agol.QueryOptions{
		Where:        fmt.Sprintf("field_name='%s'", EscapeLiteral(fieldName)),
		OmitGeometry: true,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch current domain values for %s: %w", fieldName, err)
	}

	records := make([]DomainValue, 0, len(result.Features))
	for _, feature := range result.Features {
		records = append(records, DomainValueFromAttributes(feature.Attributes))
	}
	return records, nil
}

// FetchFieldConfig queries the configuration record for one field. Returns
// nil without error when no config row exists (or no config table is
// configured); the schema is optional.
func (e *Engine) FetchFieldConfig(ctx context.Context, configURL, fieldName string) (*FieldConfig, error) {
	if configURL == "" {
		return nil, nil
	}

	result, err := e.client.Query(ctx, configURL, agol.QueryOptions{
		Where:        fmt.Sprintf("field_name='%s'", EscapeLiteral(fieldName)),
		OmitGeometry: true,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch field config for %s: %w", fieldName, err)
	}
	if len(result.Features) == 0 {
		return nil, nil
	}

	cfg := FieldConfigFromAttributes(result.Features[0].Attributes)
	return &cfg, nil
}

// Reconcile re-fetches current records, diffs them against the edited table
// and applies the plan: adds, then updates, then the delete, then the field
// configuration, each as a separate remote call. With opts.DryRun or without
// opts.Confirmed only the plan is returned.
func (e *Engine) Reconcile(ctx context.Context, layerURL, configURL, fieldName string, edited []DomainValue, cfg *FieldConfig, opts Options) (*Result, error) {
	// Always diff against a fresh snapshot, never a stale page load.
	current, err := e.FetchCurrent(ctx, layerURL, fieldName)
	if err != nil {
		return nil, err
	}

	plan := BuildPlan(fieldName, current, edited)
	result := &Result{Plan: plan}

	e.logger.Info("Domain reconciliation planned",
		zap.String("field", fieldName),
		zap.Int("adds", plan.Summary.Adds),
		zap.Int("updates", plan.Summary.Updates),
		zap.Int("deletes", plan.Summary.Deletes),
	)

	if opts.DryRun || !opts.Confirmed {
		return result, nil
	}

	var committed []string
	fail := func(step string, err error) error {
		return &PartialApplyError{Step: step, Committed: committed, Err: err}
	}

	if len(plan.Adds) > 0 {
		results, err := e.client.AddFeatures(ctx, layerURL, toFeatures(plan.Adds))
		if err != nil {
			return result, fail("add", err)
		}
		result.AddResults = results
		if failed := agol.FirstError(results); failed != nil {
			return result, fail("add", editResultError(failed))
		}
		committed = append(committed, "add")
	}

	if len(plan.Updates) > 0 {
		results, err := e.client.UpdateFeatures(ctx, layerURL, toFeatures(plan.Updates))
		if err != nil {
			return result, fail("update", err)
		}
		result.UpdateResults = results
		if failed := agol.FirstError(results); failed != nil {
			return result, fail("update", editResultError(failed))
		}
		committed = append(committed, "update")
	}

	if plan.DeleteWhere != "" {
		results, err := e.client.DeleteFeatures(ctx, layerURL, plan.DeleteWhere)
		if err != nil {
			return result, fail("delete", err)
		}
		result.DeleteResults = results
		if failed := agol.FirstError(results); failed != nil {
			return result, fail("delete", editResultError(failed))
		}
		committed = append(committed, "delete")
	}

	result.Applied = true

	if cfg != nil && configURL != "" {
		if err := e.saveFieldConfig(ctx, configURL, fieldName, *cfg); err != nil {
			return result, fail("field-config", err)
		}
		result.ConfigSaved = true
	}

	e.logger.Info("Domain reconciliation applied",
		zap.String("field", fieldName),
		zap.Strings("steps", committed),
		zap.Bool("config_saved", result.ConfigSaved),
	)
	return result, nil
}

// saveFieldConfig updates the existing config row in place when one exists,
// otherwise adds a new one. Unmanaged attributes of an existing row survive
// because only the managed fields travel in the update.
func (e *Engine) saveFieldConfig(ctx context.Context, configURL, fieldName string, cfg FieldConfig) error {
	existing, err := e.FetchFieldConfig(ctx, configURL, fieldName)
	if err != nil {
		return err
	}

	cfg.FieldName = fieldName
	if existing != nil {
		cfg.ObjectID = existing.ObjectID
		results, err := e.client.UpdateFeatures(ctx, configURL, []agol.Feature{cfg.Feature()})
		if err != nil {
			return err
		}
		if failed := agol.FirstError(results); failed != nil {
			return editResultError(failed)
		}
		return nil
	}

	cfg.ObjectID = nil
	results, err := e.client.AddFeatures(ctx, configURL, []agol.Feature{cfg.Feature()})
	if err != nil {
		return err
	}
	if failed := agol.FirstError(results); failed != nil {
		return editResultError(failed)
	}
	return nil
}

func toFeatures(records []DomainValue) []agol.Feature {
	features := make([]agol.Feature, len(records))
	for i, record := range records {
		features[i] = record.Feature()
	}
	return features
}

func editResultError(result *agol.EditResult) error {
	if result.Error != nil {
		return fmt.Errorf("record rejected: %d %s", result.Error.Code, result.Error.Description)
	}
	return fmt.Errorf("record rejected without detail")
}

// DomainValueFromAttributes maps untyped feature attributes to a typed
// record. The domain value key is string-normalized here and nowhere else.
func DomainValueFromAttributes(attrs map[string]any) DomainValue {
	record := DomainValue{
		FieldName: utils.ToString(attrs["field_name"]),
		Value:     utils.ToString(attrs["domain_value"]),
		Label:     utils.ToString(attrs["domain_label"]),
		Active:    utils.ToInt(attrs["active"]),
		Email:     utils.ToString(attrs["email"]),
	}
	if raw, ok := attrs[ObjectIDField]; ok && raw != nil {
		id := utils.ToInt64(raw)
		record.ObjectID = &id
	}
	return record
}

func FieldConfigFromAttributes(attrs map[string]any) FieldConfig {
	cfg := FieldConfig{
		FieldName:  utils.ToString(attrs["field_name"]),
		IsDropdown: utils.ToBool(attrs["is_dropdown"]),
		InputType:  InputType(utils.ToString(attrs["input_type"])),
		MaxLen:     utils.ToInt(attrs["max_len"]),
		Required:   utils.ToBool(attrs["required"]),
	}
	if !cfg.InputType.Valid() {
		cfg.InputType = InputText
	}
	if raw, ok := attrs[ObjectIDField]; ok && raw != nil {
		id := utils.ToInt64(raw)
		cfg.ObjectID = &id
	}
	return cfg
}
