package config

import "fmt"

// Validate checks required fields and structural invariants that
// cannot be caught at parse time: at most one transport section, valid
// role, and well-formed cadences on every configured operation.
func Validate(cfg *Config) error {
	if cfg.Global.Cluster == "" {
		return fmt.Errorf("config: global.cluster is required")
	}
	switch cfg.Global.Role {
	case RoleNode, RoleMaster:
	default:
		return fmt.Errorf("config: global.role must be %q or %q, got %q", RoleNode, RoleMaster, cfg.Global.Role)
	}

	if cfg.HasKafka() && cfg.HasDirectory() {
		return fmt.Errorf("config: at most one of [kafka] or [directory] may be present")
	}
	if cfg.HasDirectory() && cfg.Directory.DataDirectory == "" {
		return fmt.Errorf("config: directory.data-directory is required when [directory] is present")
	}

	if cfg.Sample != nil {
		if err := ValidateCadence(cfg.Sample.Cadence); err != nil {
			return fmt.Errorf("config: sample.cadence: %w", err)
		}
	}
	if cfg.Sysinfo != nil {
		if err := ValidateCadence(cfg.Sysinfo.Cadence); err != nil {
			return fmt.Errorf("config: sysinfo.cadence: %w", err)
		}
	}
	if cfg.Jobs != nil {
		if err := ValidateCadence(cfg.Jobs.Cadence); err != nil {
			return fmt.Errorf("config: jobs.cadence: %w", err)
		}
		if cfg.Jobs.BatchSize < 0 {
			return fmt.Errorf("config: jobs.batch-size must be non-negative")
		}
	}
	if cfg.Cluster != nil {
		if err := ValidateCadence(cfg.Cluster.Cadence); err != nil {
			return fmt.Errorf("config: cluster.cadence: %w", err)
		}
	}
	return nil
}
