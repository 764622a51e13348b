package webtemplate

// ExecContext carries the privileges a lifecycle call runs with. Callers
// build it per request (from config, CLI flags or a patch runner) and pass
// it in explicitly.
type ExecContext struct {
	// DeveloperMode allows standard templates and enables syncing them
	// with the module tree.
	DeveloperMode bool
	// InPatch marks a data patch or import; it allows standard templates
	// without syncing files.
	InPatch bool
}

// CanEditStandard reports whether standard templates may be saved.
func (ec ExecContext) CanEditStandard() bool {
	return ec.DeveloperMode || ec.InPatch
}
