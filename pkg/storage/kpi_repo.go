package storage

import "fmt"

const (
	kpiConfigDir   = "kpi_configs"
	kpiResultDir   = "kpi_results"
	kpiEvidenceDir = "kpi_evidence"
)

// KPIRepo persists KPI configuration, computed outcomes, and
// drill-down evidence documents under their respective directories.
// It is deliberately untyped (json-shaped any in/out) since the three
// documents it stores — config, outcome, evidence — have unrelated
// shapes and callers already hold the concrete type to marshal.
type KPIRepo struct {
	store *Store
}

// NewKPIRepo wraps store for KPI artifact persistence.
func NewKPIRepo(store *Store) *KPIRepo {
	return &KPIRepo{store: store}
}

// SaveConfig writes a KPI's configuration to
// kpi_configs/kpi_config_<kpiID>.json.
func (r *KPIRepo) SaveConfig(kpiID string, config any) error {
	return r.store.Save(kpiConfigDir, fmt.Sprintf("kpi_config_%s.json", kpiID), config)
}

// LoadConfig reads a KPI's configuration, returning
// apperrors.ErrNotFound if absent.
func (r *KPIRepo) LoadConfig(kpiID string, out any) error {
	return r.store.Load(kpiConfigDir, fmt.Sprintf("kpi_config_%s.json", kpiID), out)
}

// SaveResult writes a computed KPI outcome to
// kpi_results/kpi_result_<kpiID>_<timestamp>.json.
func (r *KPIRepo) SaveResult(kpiID, timestamp string, result any) error {
	return r.store.Save(kpiResultDir, fmt.Sprintf("kpi_result_%s_%s.json", kpiID, timestamp), result)
}

// SaveEvidence writes a KPI's drill-down evidence to
// kpi_evidence/kpi_evidence_<kpiID>_<timestamp>.json.
func (r *KPIRepo) SaveEvidence(kpiID, timestamp string, evidence any) error {
	return r.store.Save(kpiEvidenceDir, fmt.Sprintf("kpi_evidence_%s_%s.json", kpiID, timestamp), evidence)
}

// ListConfigs returns every stored KPI config's file name.
func (r *KPIRepo) ListConfigs() ([]string, error) {
	return r.store.List(kpiConfigDir)
}

// ListResults returns every stored KPI result's file name.
func (r *KPIRepo) ListResults() ([]string, error) {
	return r.store.List(kpiResultDir)
}
